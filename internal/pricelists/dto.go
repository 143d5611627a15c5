package pricelists

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chemtrade/chemtrade-backend/pkg/enums"
)

// SubmitChangeInput proposes a price for one list entry. The change only
// lands after the approval workflow accepts it.
type SubmitChangeInput struct {
	Kind         enums.PriceListKind
	ProductName  string
	Spec         string
	CustomerName string
	NewPrice     decimal.Decimal
	EffectiveAt  *time.Time
	Remark       string
	Actor        string
}

// changePayload is the JSON body stored in the approval request's new value.
// The record id is allocated at submit time so brand-new entries have a
// stable subject reference before they exist.
type changePayload struct {
	RecordID     uuid.UUID           `json:"record_id"`
	Kind         enums.PriceListKind `json:"kind"`
	ProductName  string              `json:"product_name"`
	Spec         string              `json:"spec,omitempty"`
	CustomerName string              `json:"customer_name,omitempty"`
	Price        decimal.Decimal     `json:"price"`
	EffectiveAt  time.Time           `json:"effective_at"`
}

// RecordFilters narrows price record listings.
type RecordFilters struct {
	Kind  enums.PriceListKind
	Query string
}

// RecordSummary is a price record row in list responses.
type RecordSummary struct {
	ID           uuid.UUID           `json:"id"`
	Kind         enums.PriceListKind `json:"kind"`
	ProductName  string              `json:"product_name"`
	Spec         string              `json:"spec,omitempty"`
	CustomerName string              `json:"customer_name,omitempty"`
	Price        decimal.Decimal     `json:"price"`
	EffectiveAt  time.Time           `json:"effective_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// RecordList is a cursor page of price records.
type RecordList struct {
	Records    []RecordSummary `json:"records"`
	NextCursor string          `json:"next_cursor,omitempty"`
}
