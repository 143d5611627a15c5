package warehouses

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/pkg/db"
	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	pkgerrors "github.com/chemtrade/chemtrade-backend/pkg/errors"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

// Service exposes warehouse master data. The dispatch flow only reads it;
// creation exists for seeding and back-office administration.
type Service interface {
	Create(ctx context.Context, input CreateWarehouseInput) (*models.Warehouse, error)
	Get(ctx context.Context, warehouseID uuid.UUID) (*models.Warehouse, error)
	List(ctx context.Context, params pagination.Params, filters WarehouseFilters) (*WarehouseList, error)
	// StockByProduct sums lot quantities for one product across all
	// warehouses.
	StockByProduct(ctx context.Context, productName, spec string) (*ProductStock, error)
}

type service struct {
	repo Repository
}

// NewService builds a warehouse service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("warehouse repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateWarehouseInput) (*models.Warehouse, error) {
	if input.Code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse code required")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse name required")
	}
	if input.Actor == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor required")
	}
	for _, zone := range input.Zones {
		if zone.Code == "" || zone.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "zone code and name required")
		}
	}

	warehouse := &models.Warehouse{
		Code:    input.Code,
		Name:    input.Name,
		Address: input.Address,
		Manager: input.Manager,
	}
	for _, zone := range input.Zones {
		warehouse.Zones = append(warehouse.Zones, models.WarehouseZone{
			Code: zone.Code,
			Name: zone.Name,
		})
	}

	created, err := s.repo.CreateWarehouse(ctx, warehouse)
	if err != nil {
		if db.IsUniqueViolation(err, "") || db.IsUniqueViolation(err, "uq_warehouses_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "warehouse code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create warehouse")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, warehouseID uuid.UUID) (*models.Warehouse, error) {
	if warehouseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse id required")
	}
	warehouse, err := s.repo.FindWarehouse(ctx, warehouseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load warehouse")
	}
	return warehouse, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters WarehouseFilters) (*WarehouseList, error) {
	list, err := s.repo.ListWarehouses(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list warehouses")
	}
	return list, nil
}

func (s *service) StockByProduct(ctx context.Context, productName, spec string) (*ProductStock, error) {
	if productName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}

	lots, err := s.repo.ListLotsByProduct(ctx, productName, spec)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory lots")
	}

	stock := &ProductStock{
		ProductName: productName,
		Spec:        spec,
		Total:       decimal.Zero,
		Lots:        make([]LotStock, 0, len(lots)),
	}
	for _, lot := range lots {
		stock.Total = stock.Total.Add(lot.Quantity)
		stock.Lots = append(stock.Lots, LotStock{
			LotID:     lot.ID,
			ZoneID:    lot.ZoneID,
			LotNumber: lot.LotNumber,
			Quantity:  lot.Quantity,
		})
	}
	return stock, nil
}
