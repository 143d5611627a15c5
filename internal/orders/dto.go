package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chemtrade/chemtrade-backend/pkg/enums"
)

// OrderFilters describe the inputs supported by the order list.
type OrderFilters struct {
	Statuses []enums.OrderStatus
	Query    string
	DateFrom *time.Time
	DateTo   *time.Time
}

// OrderSummary exposes the fields returned in list views.
type OrderSummary struct {
	ID           uuid.UUID         `json:"id"`
	OrderNumber  string            `json:"order_number"`
	CustomerName string            `json:"customer_name"`
	ProductName  string            `json:"product_name"`
	Spec         string            `json:"spec,omitempty"`
	Quantity     decimal.Decimal   `json:"quantity"`
	UnitPrice    decimal.Decimal   `json:"unit_price"`
	Status       enums.OrderStatus `json:"status"`
	ShipDate     *time.Time        `json:"ship_date,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// CreateOrderInput captures a manually entered order. Both entry points are
// supported: the audited path starts at pending_audit, the legacy no-audit
// path starts directly at unassigned.
type CreateOrderInput struct {
	OrderNumber  string
	ContractID   *uuid.UUID
	CustomerName string
	ProductName  string
	Spec         string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	ShipDate     *time.Time
	SkipAudit    bool
	Actor        string
}

// MarkCompletedInput is the explicit operator confirmation of delivery.
type MarkCompletedInput struct {
	OrderID uuid.UUID
	Actor   string
}
