package contracts

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/internal/orders"
	"github.com/chemtrade/chemtrade-backend/pkg/db"
	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	pkgerrors "github.com/chemtrade/chemtrade-backend/pkg/errors"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

// orderGenerator is the slice of the order service contract generation needs.
type orderGenerator interface {
	CreateOrderFromContract(ctx context.Context, input orders.GenerateFromContractInput) (*models.Order, error)
}

// Service defines contract-level operations.
type Service interface {
	Create(ctx context.Context, input CreateContractInput) (*models.Contract, error)
	Get(ctx context.Context, contractID uuid.UUID) (*models.Contract, error)
	List(ctx context.Context, params pagination.Params, filters ContractFilters) (*ContractList, error)
	Update(ctx context.Context, input UpdateContractInput) (*models.Contract, error)
	// Close ends the agreement; closed contracts can no longer generate
	// orders or be edited.
	Close(ctx context.Context, contractID uuid.UUID, actor string) (*models.Contract, error)
	// GenerateOrder copies the contract terms into a fresh pending-audit
	// order with price unset.
	GenerateOrder(ctx context.Context, input GenerateOrderInput) (*models.Order, error)
}

type service struct {
	repo     Repository
	orderSvc orderGenerator
}

// NewService builds a contracts service with the required dependencies.
// Contract writes are single statements; order generation runs inside the
// order service's own transaction.
func NewService(repo Repository, orderSvc orderGenerator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("contracts repository required")
	}
	if orderSvc == nil {
		return nil, fmt.Errorf("order service required")
	}
	return &service{repo: repo, orderSvc: orderSvc}, nil
}

func (s *service) Create(ctx context.Context, input CreateContractInput) (*models.Contract, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	contract := &models.Contract{
		Code:          input.Code,
		CustomerName:  input.CustomerName,
		ProductName:   input.ProductName,
		Spec:          input.Spec,
		TotalQuantity: input.TotalQuantity,
		UnitPrice:     input.UnitPrice,
		ShipStart:     input.ShipStart,
		ShipEnd:       input.ShipEnd,
		Status:        enums.ContractStatusActive,
		CreatedBy:     input.Actor,
	}

	created, err := s.repo.CreateContract(ctx, contract)
	if err != nil {
		if db.IsUniqueViolation(err, "") || db.IsUniqueViolation(err, "uq_contracts_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "contract code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create contract")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, contractID uuid.UUID) (*models.Contract, error) {
	if contractID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract id required")
	}
	contract, err := s.repo.FindContract(ctx, contractID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contract")
	}
	return contract, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ContractFilters) (*ContractList, error) {
	for _, status := range filters.Statuses {
		if !status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid contract status filter")
		}
	}
	list, err := s.repo.ListContracts(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contracts")
	}
	return list, nil
}

func (s *service) Update(ctx context.Context, input UpdateContractInput) (*models.Contract, error) {
	contract, err := s.Get(ctx, input.ContractID)
	if err != nil {
		return nil, err
	}
	if contract.Status != enums.ContractStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "contract is closed")
	}

	updates := map[string]any{}
	if input.CustomerName != nil {
		if *input.CustomerName == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name cannot be empty")
		}
		updates["customer_name"] = *input.CustomerName
	}
	if input.ProductName != nil {
		if *input.ProductName == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		updates["product_name"] = *input.ProductName
	}
	if input.Spec != nil {
		updates["spec"] = *input.Spec
	}
	if input.TotalQuantity != nil {
		if !input.TotalQuantity.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "total quantity must be positive")
		}
		updates["total_quantity"] = *input.TotalQuantity
	}
	if input.UnitPrice != nil {
		if input.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
		}
		updates["unit_price"] = *input.UnitPrice
	}
	if input.ShipStart != nil {
		updates["ship_start"] = *input.ShipStart
	}
	if input.ShipEnd != nil {
		updates["ship_end"] = *input.ShipEnd
	}
	if len(updates) == 0 {
		return contract, nil
	}

	if err := s.repo.UpdateContract(ctx, contract.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update contract")
	}
	return s.Get(ctx, contract.ID)
}

func (s *service) Close(ctx context.Context, contractID uuid.UUID, actor string) (*models.Contract, error) {
	if actor == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor required")
	}
	contract, err := s.Get(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract.Status == enums.ContractStatusClosed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "contract is already closed")
	}

	updates := map[string]any{"status": enums.ContractStatusClosed}
	if err := s.repo.UpdateContract(ctx, contract.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close contract")
	}
	return s.Get(ctx, contract.ID)
}

func (s *service) GenerateOrder(ctx context.Context, input GenerateOrderInput) (*models.Order, error) {
	if input.OrderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	}
	if input.Actor == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor required")
	}
	contract, err := s.Get(ctx, input.ContractID)
	if err != nil {
		return nil, err
	}
	if !input.Quantity.IsZero() && input.Quantity.GreaterThan(contract.TotalQuantity) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds the contract total")
	}

	return s.orderSvc.CreateOrderFromContract(ctx, orders.GenerateFromContractInput{
		Contract:    contract,
		OrderNumber: input.OrderNumber,
		Quantity:    input.Quantity,
		ShipDate:    input.ShipDate,
		Actor:       input.Actor,
	})
}

func validateCreate(input CreateContractInput) error {
	if input.Code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "contract code required")
	}
	if input.CustomerName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	if input.ProductName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if !input.TotalQuantity.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "total quantity must be positive")
	}
	if input.UnitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	if input.ShipStart != nil && input.ShipEnd != nil && input.ShipEnd.Before(*input.ShipStart) {
		return pkgerrors.New(pkgerrors.CodeValidation, "ship window end precedes start")
	}
	if input.Actor == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor required")
	}
	return nil
}
