package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chemtrade/chemtrade-backend/pkg/enums"
)

// VehicleRecord is one truck's planned-and-actual movement against an order.
// A plate may appear in several typed records of the same order; the record id
// is the identity within the ledger.
type VehicleRecord struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	Plate        string              `gorm:"column:plate;not null"`
	DriverName   string              `gorm:"column:driver_name;not null"`
	DriverPhone  string              `gorm:"column:driver_phone"`
	MovementType enums.MovementType  `gorm:"column:movement_type;type:text;not null"`
	Status       enums.VehicleStatus `gorm:"column:status;type:text;not null;default:'pending_entry'"`

	// LoadWeight is the planned outbound tonnage (normal movement);
	// ReturnWeight is the planned inbound tonnage (return/exchange).
	// Exactly one is set, depending on MovementType.
	LoadWeight   *decimal.Decimal `gorm:"column:load_weight;type:numeric(12,3)"`
	ReturnWeight *decimal.Decimal `gorm:"column:return_weight;type:numeric(12,3)"`

	EntryTime       *time.Time       `gorm:"column:entry_time"`
	Weighing1Time   *time.Time       `gorm:"column:weighing1_time"`
	Weighing1Weight *decimal.Decimal `gorm:"column:weighing1_weight;type:numeric(12,3)"`
	Weighing2Time   *time.Time       `gorm:"column:weighing2_time"`
	Weighing2Weight *decimal.Decimal `gorm:"column:weighing2_weight;type:numeric(12,3)"`
	ExitTime        *time.Time       `gorm:"column:exit_time"`

	// ActualOutWeight = |weighing2 - weighing1|, set once both weighings exist.
	ActualOutWeight *decimal.Decimal `gorm:"column:actual_out_weight;type:numeric(12,3)"`

	ReturnReason   *string `gorm:"column:return_reason"`
	ExchangeReason *string `gorm:"column:exchange_reason"`

	// Seq preserves the console's list order within a ledger partition.
	Seq int `gorm:"column:seq;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
