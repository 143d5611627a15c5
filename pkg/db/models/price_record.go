package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chemtrade/chemtrade-backend/pkg/enums"
)

// PriceRecord is one row of a managed price list. CustomerName is set only
// for customer-sale prices.
type PriceRecord struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Kind         enums.PriceListKind `gorm:"column:kind;type:text;not null;uniqueIndex:uq_price_records_key"`
	ProductName  string              `gorm:"column:product_name;not null;uniqueIndex:uq_price_records_key"`
	Spec         string              `gorm:"column:spec;uniqueIndex:uq_price_records_key"`
	CustomerName string              `gorm:"column:customer_name;uniqueIndex:uq_price_records_key"`
	Price        decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	EffectiveAt  time.Time           `gorm:"column:effective_at;not null"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
