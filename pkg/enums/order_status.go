package enums

import "fmt"

// OrderStatus tracks the lifecycle of a sales order.
type OrderStatus string

const (
	OrderStatusPendingAudit  OrderStatus = "pending_audit"
	OrderStatusPriceApproval OrderStatus = "price_approval"
	OrderStatusUnassigned    OrderStatus = "unassigned"
	OrderStatusReadyToShip   OrderStatus = "ready_to_ship"
	OrderStatusShipping      OrderStatus = "shipping"
	OrderStatusReturning     OrderStatus = "returning"
	OrderStatusExchanging    OrderStatus = "exchanging"
	OrderStatusCompleted     OrderStatus = "completed"
	OrderStatusReturned      OrderStatus = "returned"
	OrderStatusExchanged     OrderStatus = "exchanged"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPendingAudit,
	OrderStatusPriceApproval,
	OrderStatusUnassigned,
	OrderStatusReadyToShip,
	OrderStatusShipping,
	OrderStatusReturning,
	OrderStatusExchanging,
	OrderStatusCompleted,
	OrderStatusReturned,
	OrderStatusExchanged,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further shipping progression is possible.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusReturned, OrderStatusExchanged:
		return true
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
