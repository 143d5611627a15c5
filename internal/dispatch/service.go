package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/internal/orders"
	"github.com/chemtrade/chemtrade-backend/internal/vehicles"
	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	pkgerrors "github.com/chemtrade/chemtrade-backend/pkg/errors"
	"github.com/chemtrade/chemtrade-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// orderLocker serializes reconciles per order aggregate. The Redis client
// satisfies it.
type orderLocker interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	OrderLockKey(orderID string) string
}

// Service is the dispatch / return / exchange reconcile console.
type Service interface {
	// OpenDrafts loads one ledger partition as an editable draft list.
	OpenDrafts(ctx context.Context, orderID uuid.UUID, movementType enums.MovementType) (*DraftList, int64, error)
	Reconcile(ctx context.Context, input ReconcileInput) (*models.Order, error)
}

type service struct {
	ordersRepo   orders.Repository
	vehiclesRepo vehicles.Repository
	tx           txRunner
	locker       orderLocker
	lockTTL      time.Duration
	workflow     *metrics.WorkflowMetrics
}

// NewService builds the reconcile console with the required dependencies.
func NewService(ordersRepo orders.Repository, vehiclesRepo vehicles.Repository, tx txRunner, locker orderLocker, lockTTL time.Duration, workflow *metrics.WorkflowMetrics) (Service, error) {
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if vehiclesRepo == nil {
		return nil, fmt.Errorf("vehicles repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if locker == nil {
		return nil, fmt.Errorf("order locker required")
	}
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return &service{
		ordersRepo:   ordersRepo,
		vehiclesRepo: vehiclesRepo,
		tx:           tx,
		locker:       locker,
		lockTTL:      lockTTL,
		workflow:     workflow,
	}, nil
}

func (s *service) OpenDrafts(ctx context.Context, orderID uuid.UUID, movementType enums.MovementType) (*DraftList, int64, error) {
	if orderID == uuid.Nil {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !movementType.IsValid() {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "unknown movement type")
	}

	order, err := s.ordersRepo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, 0, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	records, err := s.vehiclesRepo.ListByOrderAndType(ctx, orderID, movementType)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ledger partition")
	}
	return DraftListFromRecords(records), order.Version, nil
}

func (s *service) Reconcile(ctx context.Context, input ReconcileInput) (*models.Order, error) {
	if err := validateReconcile(input); err != nil {
		s.incReconcile(input.MovementType, "rejected")
		return nil, err
	}

	// One logical writer per order aggregate: two concurrent reconciles must
	// not silently discard each other's edits.
	lockKey := s.locker.OrderLockKey(input.OrderID.String())
	locked, err := s.locker.SetNX(ctx, lockKey, input.Actor, s.lockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire order lock")
	}
	if !locked {
		s.incReconcile(input.MovementType, "locked")
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is being reconciled by another operator")
	}
	defer func() {
		_ = s.locker.Del(context.WithoutCancel(ctx), lockKey)
	}()

	var result *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)
		vehiclesRepo := s.vehiclesRepo.WithTx(tx)

		order, err := ordersRepo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Version != input.ExpectedVersion {
			return pkgerrors.New(pkgerrors.CodeOptimisticConflict,
				fmt.Sprintf("order changed since drafts were opened (version %d, expected %d)", order.Version, input.ExpectedVersion))
		}

		next, err := s.nextStatus(order, input)
		if err != nil {
			return err
		}

		existing, err := vehiclesRepo.ListByOrderAndType(ctx, input.OrderID, input.MovementType)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ledger partition")
		}

		records, err := buildPartition(existing, input)
		if err != nil {
			return err
		}
		if err := vehiclesRepo.ReplacePartition(ctx, input.OrderID, input.MovementType, records); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace ledger partition")
		}

		updates := map[string]any{
			"status":  next,
			"version": gorm.Expr("version + 1"),
		}
		switch input.MovementType {
		case enums.MovementTypeReturn:
			updates["return_reason"] = input.CommonReason
		case enums.MovementTypeExchange:
			updates["exchange_reason"] = input.CommonReason
		}
		if err := ordersRepo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}

		entry := &models.OrderHistoryEntry{
			OrderID: order.ID,
			Action:  historyAction(input),
			Actor:   input.Actor,
		}
		if err := ordersRepo.AppendHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append order history")
		}

		reloaded, err := ordersRepo.FindOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		result = reloaded
		return nil
	})
	if err != nil {
		s.incReconcile(input.MovementType, "rejected")
		return nil, err
	}

	s.incReconcile(input.MovementType, "ok")
	return result, nil
}

// nextStatus recomputes the aggregate status for this reconcile. An empty
// draft list never fires a transition: clearing a partition is allowed but
// the ratchet stays put.
func (s *service) nextStatus(order *models.Order, input ReconcileInput) (enums.OrderStatus, error) {
	if len(input.Drafts) == 0 {
		if order.Status == enums.OrderStatusPendingAudit && input.MovementType == enums.MovementTypeNormal {
			return "", pkgerrors.New(pkgerrors.CodeAuditRequired, "order has not passed financial audit")
		}
		return order.Status, nil
	}

	var event orders.StatusEvent
	switch input.MovementType {
	case enums.MovementTypeNormal:
		event = orders.EventVehiclesDispatched
	case enums.MovementTypeReturn:
		event = orders.EventReturnRecorded
	default:
		event = orders.EventExchangeRecorded
	}
	return orders.NextStatus(order.Status, event)
}

// buildPartition materializes the draft list as ledger records: rows with a
// known id keep that id and their checkpoint trail, new rows start pending.
// Locked rows must survive the reconcile untouched.
func buildPartition(existing []models.VehicleRecord, input ReconcileInput) ([]models.VehicleRecord, error) {
	byID := make(map[uuid.UUID]*models.VehicleRecord, len(existing))
	for i := range existing {
		byID[existing[i].ID] = &existing[i]
	}

	inbound := input.MovementType.Inbound()
	records := make([]models.VehicleRecord, 0, len(input.Drafts))
	seen := make(map[uuid.UUID]bool, len(input.Drafts))

	for _, draft := range input.Drafts {
		if err := draft.Validate(); err != nil {
			return nil, err
		}

		var record models.VehicleRecord
		if draft.ID != uuid.Nil {
			current, ok := byID[draft.ID]
			if !ok {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "draft references unknown vehicle record")
			}
			seen[draft.ID] = true
			record = *current
			if record.Status != enums.VehicleStatusPendingEntry {
				if draftChangesRecord(draft, record, inbound) {
					return nil, pkgerrors.New(pkgerrors.CodeVehicleLocked, "vehicle "+record.Plate+" already on site, record is locked")
				}
			} else {
				applyDraft(&record, draft, inbound)
			}
		} else {
			record = models.VehicleRecord{Status: enums.VehicleStatusPendingEntry}
			applyDraft(&record, draft, inbound)
		}

		if inbound {
			reason := input.CommonReason
			if input.MovementType == enums.MovementTypeReturn {
				record.ReturnReason = &reason
				record.ExchangeReason = nil
			} else {
				record.ExchangeReason = &reason
				record.ReturnReason = nil
			}
		}
		records = append(records, record)
	}

	// A truck that has entered site can only leave the ledger through the
	// physical checkpoints, never through a console edit.
	for i := range existing {
		if existing[i].Status != enums.VehicleStatusPendingEntry && !seen[existing[i].ID] {
			return nil, pkgerrors.New(pkgerrors.CodeVehicleLocked, "vehicle "+existing[i].Plate+" already on site, record is locked")
		}
	}
	return records, nil
}

func applyDraft(record *models.VehicleRecord, draft Draft, inbound bool) {
	record.Plate = draft.Plate
	record.DriverName = draft.DriverName
	record.DriverPhone = draft.DriverPhone
	weight := draft.Weight
	if inbound {
		record.ReturnWeight = &weight
		record.LoadWeight = nil
	} else {
		record.LoadWeight = &weight
		record.ReturnWeight = nil
	}
}

func draftChangesRecord(draft Draft, record models.VehicleRecord, inbound bool) bool {
	if draft.Plate != record.Plate || draft.DriverName != record.DriverName || draft.DriverPhone != record.DriverPhone {
		return true
	}
	planned := record.LoadWeight
	if inbound {
		planned = record.ReturnWeight
	}
	if planned == nil {
		return !draft.Weight.IsZero()
	}
	return !draft.Weight.Equal(*planned)
}

func historyAction(input ReconcileInput) string {
	switch input.MovementType {
	case enums.MovementTypeReturn:
		return fmt.Sprintf("退货调度，共 %d 辆车", len(input.Drafts))
	case enums.MovementTypeExchange:
		return fmt.Sprintf("换货调度，共 %d 辆车", len(input.Drafts))
	default:
		return fmt.Sprintf("调度发车，共 %d 辆车", len(input.Drafts))
	}
}

func validateReconcile(input ReconcileInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.MovementType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown movement type")
	}
	if input.Actor == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor required")
	}
	if input.MovementType.Inbound() && len(input.Drafts) > 0 && input.CommonReason == "" {
		return pkgerrors.New(pkgerrors.CodeRemarkRequired, "return or exchange requires a reason")
	}
	return nil
}

func (s *service) incReconcile(movementType enums.MovementType, outcome string) {
	if s.workflow == nil {
		return
	}
	s.workflow.IncReconcile(movementType.String(), outcome)
}
