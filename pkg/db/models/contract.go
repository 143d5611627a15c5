package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chemtrade/chemtrade-backend/pkg/enums"
)

// Contract is the framework agreement orders are generated from.
type Contract struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code          string               `gorm:"column:code;not null;uniqueIndex"`
	CustomerName  string               `gorm:"column:customer_name;not null"`
	ProductName   string               `gorm:"column:product_name;not null"`
	Spec          string               `gorm:"column:spec"`
	TotalQuantity decimal.Decimal      `gorm:"column:total_quantity;type:numeric(12,3);not null"`
	UnitPrice     decimal.Decimal      `gorm:"column:unit_price;type:numeric(12,2);not null;default:0"`
	ShipStart     *time.Time           `gorm:"column:ship_start"`
	ShipEnd       *time.Time           `gorm:"column:ship_end"`
	Status        enums.ContractStatus `gorm:"column:status;type:text;not null;default:'active'"`
	CreatedBy     string               `gorm:"column:created_by;not null"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
