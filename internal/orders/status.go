package orders

import (
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	pkgerrors "github.com/chemtrade/chemtrade-backend/pkg/errors"
)

// StatusEvent is something that happened to an order which may move its
// status. Status never changes except through NextStatus.
type StatusEvent string

const (
	// EventAuditApproved fires when the financial audit request is approved.
	EventAuditApproved StatusEvent = "audit_approved"
	// EventPriceChangeSubmitted fires when a price change enters the
	// approval workflow; the order waits in price-approval until resolved.
	EventPriceChangeSubmitted StatusEvent = "price_change_submitted"
	// EventPriceApproved fires when a price-change request is approved.
	EventPriceApproved StatusEvent = "price_approved"
	// EventVehiclesDispatched fires when the dispatch console reconciles the
	// normal (outbound) partition of the vehicle ledger.
	EventVehiclesDispatched StatusEvent = "vehicles_dispatched"
	// EventVehicleProgressed fires when an outbound vehicle passes its first
	// weighing, i.e. material is actually moving.
	EventVehicleProgressed StatusEvent = "vehicle_progressed"
	// EventReturnRecorded fires when the return console reconciles return
	// vehicles onto the order.
	EventReturnRecorded StatusEvent = "return_recorded"
	// EventExchangeRecorded fires when the exchange console reconciles
	// exchange vehicles onto the order.
	EventExchangeRecorded StatusEvent = "exchange_recorded"
	// EventReturnCompleted fires when the last return vehicle exits site.
	EventReturnCompleted StatusEvent = "return_completed"
	// EventExchangeCompleted fires when the last exchange vehicle exits site.
	EventExchangeCompleted StatusEvent = "exchange_completed"
	// EventCompletionConfirmed is the explicit operator confirmation that the
	// order is fully delivered.
	EventCompletionConfirmed StatusEvent = "completion_confirmed"
)

// NextStatus is the single authority on order status transitions. It is a
// pure function: callers persist the result and append history themselves.
//
// The shipping progression is a one-directional ratchet; the return/exchange
// side-channel may fire from any status. Dispatching vehicles onto an
// unaudited order is the one hard rejection the console cannot bypass.
func NextStatus(current enums.OrderStatus, event StatusEvent) (enums.OrderStatus, error) {
	if !current.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown order status "+current.String())
	}

	switch event {
	case EventAuditApproved:
		if current != enums.OrderStatusPendingAudit {
			return "", pkgerrors.New(pkgerrors.CodeStateConflict, "audit approval requires a pending-audit order")
		}
		return enums.OrderStatusUnassigned, nil

	case EventPriceChangeSubmitted:
		if current != enums.OrderStatusUnassigned {
			return "", pkgerrors.New(pkgerrors.CodeStateConflict, "price change requires an unassigned order")
		}
		return enums.OrderStatusPriceApproval, nil

	case EventPriceApproved:
		if current != enums.OrderStatusPriceApproval {
			return "", pkgerrors.New(pkgerrors.CodeStateConflict, "price approval requires a price-approval order")
		}
		return enums.OrderStatusUnassigned, nil

	case EventVehiclesDispatched:
		switch current {
		case enums.OrderStatusPendingAudit:
			return "", pkgerrors.New(pkgerrors.CodeAuditRequired, "order has not passed financial audit")
		case enums.OrderStatusUnassigned:
			return enums.OrderStatusReadyToShip, nil
		default:
			// Dispatch updates never regress the ratchet.
			return current, nil
		}

	case EventVehicleProgressed:
		switch current {
		case enums.OrderStatusReadyToShip:
			return enums.OrderStatusShipping, nil
		default:
			return current, nil
		}

	case EventReturnRecorded:
		return enums.OrderStatusReturning, nil

	case EventExchangeRecorded:
		return enums.OrderStatusExchanging, nil

	case EventReturnCompleted:
		if current != enums.OrderStatusReturning {
			return current, nil
		}
		return enums.OrderStatusReturned, nil

	case EventExchangeCompleted:
		if current != enums.OrderStatusExchanging {
			return current, nil
		}
		return enums.OrderStatusExchanged, nil

	case EventCompletionConfirmed:
		if current != enums.OrderStatusShipping {
			return "", pkgerrors.New(pkgerrors.CodeStateConflict, "only a shipping order can be completed")
		}
		return enums.OrderStatusCompleted, nil

	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown status event "+string(event))
	}
}
