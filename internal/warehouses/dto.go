package warehouses

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateWarehouseInput seeds a warehouse together with its zones.
type CreateWarehouseInput struct {
	Code    string
	Name    string
	Address string
	Manager string
	Zones   []CreateZoneInput
	Actor   string
}

// CreateZoneInput is one storage area inside a new warehouse.
type CreateZoneInput struct {
	Code string
	Name string
}

// WarehouseFilters narrows warehouse listings.
type WarehouseFilters struct {
	Query string
}

// WarehouseSummary is a warehouse row in list responses.
type WarehouseSummary struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Manager   string    `json:"manager,omitempty"`
	ZoneCount int       `json:"zone_count"`
	CreatedAt time.Time `json:"created_at"`
}

// WarehouseList is a cursor page of warehouses.
type WarehouseList struct {
	Warehouses []WarehouseSummary `json:"warehouses"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

// ProductStock aggregates lot quantities for one product across lots.
type ProductStock struct {
	ProductName string          `json:"product_name"`
	Spec        string          `json:"spec,omitempty"`
	Total       decimal.Decimal `json:"total"`
	Lots        []LotStock      `json:"lots"`
}

// LotStock is one lot's contribution to a product stock view.
type LotStock struct {
	LotID     uuid.UUID       `json:"lot_id"`
	ZoneID    uuid.UUID       `json:"zone_id"`
	LotNumber string          `json:"lot_number"`
	Quantity  decimal.Decimal `json:"quantity"`
}
