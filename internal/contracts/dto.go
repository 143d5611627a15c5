package contracts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chemtrade/chemtrade-backend/pkg/enums"
)

// CreateContractInput carries the fields for a new framework agreement.
type CreateContractInput struct {
	Code          string
	CustomerName  string
	ProductName   string
	Spec          string
	TotalQuantity decimal.Decimal
	UnitPrice     decimal.Decimal
	ShipStart     *time.Time
	ShipEnd       *time.Time
	Actor         string
}

// UpdateContractInput edits an active contract. Nil fields stay unchanged.
type UpdateContractInput struct {
	ContractID    uuid.UUID
	CustomerName  *string
	ProductName   *string
	Spec          *string
	TotalQuantity *decimal.Decimal
	UnitPrice     *decimal.Decimal
	ShipStart     *time.Time
	ShipEnd       *time.Time
	Actor         string
}

// GenerateOrderInput produces one order off a contract. A zero quantity
// defaults to the contract's remaining total.
type GenerateOrderInput struct {
	ContractID  uuid.UUID
	OrderNumber string
	Quantity    decimal.Decimal
	ShipDate    *time.Time
	Actor       string
}

// ContractFilters narrows contract listings.
type ContractFilters struct {
	Statuses []enums.ContractStatus
	Query    string
}

// ContractSummary is a contract row in list responses.
type ContractSummary struct {
	ID            uuid.UUID            `json:"id"`
	Code          string               `json:"code"`
	CustomerName  string               `json:"customer_name"`
	ProductName   string               `json:"product_name"`
	Spec          string               `json:"spec,omitempty"`
	TotalQuantity decimal.Decimal      `json:"total_quantity"`
	UnitPrice     decimal.Decimal      `json:"unit_price"`
	ShipStart     *time.Time           `json:"ship_start,omitempty"`
	ShipEnd       *time.Time           `json:"ship_end,omitempty"`
	Status        enums.ContractStatus `json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
}

// ContractList is a cursor page of contracts.
type ContractList struct {
	Contracts  []ContractSummary `json:"contracts"`
	NextCursor string            `json:"next_cursor,omitempty"`
}
