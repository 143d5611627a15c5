package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/pkg/db"
	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	pkgerrors "github.com/chemtrade/chemtrade-backend/pkg/errors"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// StatusApplier advances an order's status inside a caller-owned transaction.
// Approvals and the dispatch console use it so that the transition, the
// version bump and the history line commit atomically with their own writes.
type StatusApplier interface {
	ApplyStatusEvent(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, event StatusEvent, action, actor string) (enums.OrderStatus, error)
}

// GenerateFromContractInput captures a one-shot contract to order copy.
type GenerateFromContractInput struct {
	Contract    *models.Contract
	OrderNumber string
	Quantity    decimal.Decimal
	ShipDate    *time.Time
	Actor       string
}

// Service defines order-level operations beyond repository reads.
type Service interface {
	StatusApplier
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	CreateOrderFromContract(ctx context.Context, input GenerateFromContractInput) (*models.Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error)
	ListPendingApprovals(ctx context.Context, params pagination.Params) (*OrderList, error)
	MarkCompleted(ctx context.Context, input MarkCompletedInput) (*models.Order, error)
	// UpdatePrice applies an approved price change inside the caller's
	// transaction, then releases the order back to unassigned.
	UpdatePrice(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, newPrice decimal.Decimal, actor string) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	status := enums.OrderStatusPendingAudit
	action := "创建订单，待财务审核"
	if input.SkipAudit {
		status = enums.OrderStatusUnassigned
		action = "创建订单，待调度"
	}

	order := &models.Order{
		OrderNumber:  input.OrderNumber,
		ContractID:   input.ContractID,
		CustomerName: input.CustomerName,
		ProductName:  input.ProductName,
		Spec:         input.Spec,
		Quantity:     input.Quantity,
		UnitPrice:    input.UnitPrice,
		ShipDate:     input.ShipDate,
		Status:       status,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.CreateOrder(ctx, order)
		if err != nil {
			if db.IsUniqueViolation(err, "") || db.IsUniqueViolation(err, "uq_orders_order_number") {
				return pkgerrors.New(pkgerrors.CodeConflict, "order number already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		order = created
		return s.appendHistory(ctx, repo, order.ID, action, input.Actor)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) CreateOrderFromContract(ctx context.Context, input GenerateFromContractInput) (*models.Order, error) {
	if input.Contract == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract required")
	}
	if input.Contract.Status != enums.ContractStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "contract is closed")
	}

	quantity := input.Quantity
	if quantity.IsZero() {
		quantity = input.Contract.TotalQuantity
	}

	contractID := input.Contract.ID
	order := &models.Order{
		OrderNumber:  input.OrderNumber,
		ContractID:   &contractID,
		CustomerName: input.Contract.CustomerName,
		ProductName:  input.Contract.ProductName,
		Spec:         input.Contract.Spec,
		Quantity:     quantity,
		// Price is settled later through the approval workflow.
		UnitPrice: decimal.Zero,
		ShipDate:  input.ShipDate,
		Status:    enums.OrderStatusPendingAudit,
	}

	if err := validateCreate(CreateOrderInput{
		OrderNumber:  order.OrderNumber,
		CustomerName: order.CustomerName,
		ProductName:  order.ProductName,
		Quantity:     order.Quantity,
		UnitPrice:    order.UnitPrice,
		Actor:        input.Actor,
	}); err != nil {
		return nil, err
	}

	action := fmt.Sprintf("由合同 %s 生成订单", input.Contract.Code)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.CreateOrder(ctx, order)
		if err != nil {
			if db.IsUniqueViolation(err, "") || db.IsUniqueViolation(err, "uq_orders_order_number") {
				return pkgerrors.New(pkgerrors.CodeConflict, "order number already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order from contract")
		}
		order = created
		return s.appendHistory(ctx, repo, order.ID, action, input.Actor)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	for _, status := range filters.Statuses {
		if !status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter "+status.String())
		}
	}
	list, err := s.repo.ListOrders(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) ListPendingApprovals(ctx context.Context, params pagination.Params) (*OrderList, error) {
	filters := OrderFilters{Statuses: []enums.OrderStatus{
		enums.OrderStatusPendingAudit,
		enums.OrderStatusPriceApproval,
	}}
	list, err := s.repo.ListOrders(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending approvals")
	}
	return list, nil
}

func (s *service) MarkCompleted(ctx context.Context, input MarkCompletedInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Actor == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor required")
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		next, err := NextStatus(order.Status, EventCompletionConfirmed)
		if err != nil {
			return err
		}
		if err := checkDelivered(order); err != nil {
			return err
		}

		updates := map[string]any{
			"status":  next,
			"version": gorm.Expr("version + 1"),
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if err := s.appendHistory(ctx, repo, order.ID, "确认订单完成", input.Actor); err != nil {
			return err
		}

		order.Status = next
		order.Version++
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ApplyStatusEvent(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, event StatusEvent, action, actor string) (enums.OrderStatus, error) {
	if tx == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "transaction required for status event")
	}
	repo := s.repo.WithTx(tx)

	order, err := repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	next, err := NextStatus(order.Status, event)
	if err != nil {
		return "", err
	}
	if next == order.Status {
		return next, nil
	}

	updates := map[string]any{
		"status":  next,
		"version": gorm.Expr("version + 1"),
	}
	if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if err := s.appendHistory(ctx, repo, order.ID, action, actor); err != nil {
		return "", err
	}
	return next, nil
}

func (s *service) UpdatePrice(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, newPrice decimal.Decimal, actor string) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for price update")
	}
	if newPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}

	repo := s.repo.WithTx(tx)
	if err := repo.UpdateOrder(ctx, orderID, map[string]any{"unit_price": newPrice}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update unit price")
	}

	action := fmt.Sprintf("价格审批通过，新单价 %s", newPrice.String())
	_, err := s.ApplyStatusEvent(ctx, tx, orderID, EventPriceApproved, action, actor)
	return err
}

func (s *service) appendHistory(ctx context.Context, repo Repository, orderID uuid.UUID, action, actor string) error {
	entry := &models.OrderHistoryEntry{
		OrderID: orderID,
		Action:  action,
		Actor:   actor,
	}
	if err := repo.AppendHistory(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append order history")
	}
	return nil
}

// checkDelivered enforces the completion guard: every outbound vehicle has
// left site and the weighed tonnage covers the ordered quantity.
func checkDelivered(order *models.Order) error {
	delivered := decimal.Zero
	sawNormal := false
	for _, v := range order.Vehicles {
		if v.MovementType != enums.MovementTypeNormal {
			continue
		}
		sawNormal = true
		if v.Status != enums.VehicleStatusExited {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "vehicle "+v.Plate+" has not exited")
		}
		if v.ActualOutWeight != nil {
			delivered = delivered.Add(*v.ActualOutWeight)
		}
	}
	if !sawNormal {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "no outbound vehicles on order")
	}
	if delivered.LessThan(order.Quantity) {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("delivered %s of %s tons", delivered.String(), order.Quantity.String()))
	}
	return nil
}

func validateCreate(input CreateOrderInput) error {
	switch {
	case input.OrderNumber == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	case input.CustomerName == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	case input.ProductName == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	case input.Actor == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "actor required")
	case !input.Quantity.IsPositive():
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	case input.UnitPrice.IsNegative():
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	return nil
}
