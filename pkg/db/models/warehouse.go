package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Warehouse is read-only master data from the dispatch core's perspective.
type Warehouse struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code      string          `gorm:"column:code;not null;uniqueIndex"`
	Name      string          `gorm:"column:name;not null"`
	Address   string          `gorm:"column:address"`
	Manager   string          `gorm:"column:manager"`
	Zones     []WarehouseZone `gorm:"foreignKey:WarehouseID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// WarehouseZone subdivides a warehouse into storage areas.
type WarehouseZone struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WarehouseID uuid.UUID      `gorm:"column:warehouse_id;type:uuid;not null;index"`
	Code        string         `gorm:"column:code;not null"`
	Name        string         `gorm:"column:name;not null"`
	Lots        []InventoryLot `gorm:"foreignKey:ZoneID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// InventoryLot tracks lot-level stock within a zone.
type InventoryLot struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ZoneID      uuid.UUID       `gorm:"column:zone_id;type:uuid;not null;index"`
	LotNumber   string          `gorm:"column:lot_number;not null"`
	ProductName string          `gorm:"column:product_name;not null"`
	Spec        string          `gorm:"column:spec"`
	Quantity    decimal.Decimal `gorm:"column:quantity;type:numeric(12,3);not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
