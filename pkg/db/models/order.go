package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chemtrade/chemtrade-backend/pkg/enums"
)

// Order is a customer commitment to ship a quantity of a product, tracked
// through audit, dispatch, delivery and exception handling.
type Order struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber  string            `gorm:"column:order_number;not null;uniqueIndex"`
	ContractID   *uuid.UUID        `gorm:"column:contract_id;type:uuid"`
	CustomerName string            `gorm:"column:customer_name;not null"`
	ProductName  string            `gorm:"column:product_name;not null"`
	Spec         string            `gorm:"column:spec"`
	Quantity     decimal.Decimal   `gorm:"column:quantity;type:numeric(12,3);not null"`
	UnitPrice    decimal.Decimal   `gorm:"column:unit_price;type:numeric(12,2);not null;default:0"`
	ShipDate     *time.Time        `gorm:"column:ship_date"`
	Status       enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending_audit'"`

	// ReturnReason and ExchangeReason hold the shared reason for the matching
	// ledger partition; reconcile stamps them onto every record of that type.
	ReturnReason   *string `gorm:"column:return_reason"`
	ExchangeReason *string `gorm:"column:exchange_reason"`

	// Version increments on every write to the aggregate; reconcile callers
	// pass the version their draft was opened against.
	Version int64 `gorm:"column:version;not null;default:0"`

	Vehicles []VehicleRecord     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	History  []OrderHistoryEntry `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderHistoryEntry is one append-only audit line on an order. Reads return
// entries most-recent-first.
type OrderHistoryEntry struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	Action    string    `gorm:"column:action;not null"`
	Actor     string    `gorm:"column:actor;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
