package warehouses

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	pkgerrors "github.com/chemtrade/chemtrade-backend/pkg/errors"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

type stubWarehouseRepo struct {
	warehouse *models.Warehouse
	lots      []models.InventoryLot
}

func (s *stubWarehouseRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubWarehouseRepo) CreateWarehouse(ctx context.Context, warehouse *models.Warehouse) (*models.Warehouse, error) {
	if warehouse.ID == uuid.Nil {
		warehouse.ID = uuid.New()
	}
	s.warehouse = warehouse
	return warehouse, nil
}

func (s *stubWarehouseRepo) FindWarehouse(ctx context.Context, warehouseID uuid.UUID) (*models.Warehouse, error) {
	if s.warehouse == nil || s.warehouse.ID != warehouseID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.warehouse, nil
}

func (s *stubWarehouseRepo) ListWarehouses(ctx context.Context, params pagination.Params, filters WarehouseFilters) (*WarehouseList, error) {
	return &WarehouseList{}, nil
}

func (s *stubWarehouseRepo) ListLotsByProduct(ctx context.Context, productName, spec string) ([]models.InventoryLot, error) {
	return s.lots, nil
}

func TestCreateWarehouseValidates(t *testing.T) {
	svc, err := NewService(&stubWarehouseRepo{})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateWarehouseInput{Name: "张店总库", Actor: "库管老刘"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(context.Background(), CreateWarehouseInput{
		Code:  "WH-01",
		Name:  "张店总库",
		Zones: []CreateZoneInput{{Code: "A"}},
		Actor: "库管老刘",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateWarehouseWithZones(t *testing.T) {
	repo := &stubWarehouseRepo{}
	svc, err := NewService(repo)
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), CreateWarehouseInput{
		Code:    "WH-01",
		Name:    "张店总库",
		Address: "淄博市张店区化工路 18 号",
		Zones:   []CreateZoneInput{{Code: "A", Name: "A 区"}, {Code: "B", Name: "B 区"}},
		Actor:   "库管老刘",
	})
	require.NoError(t, err)
	assert.Len(t, created.Zones, 2)
	assert.Equal(t, "A", created.Zones[0].Code)
}

func TestStockByProductSumsLots(t *testing.T) {
	repo := &stubWarehouseRepo{
		lots: []models.InventoryLot{
			{ID: uuid.New(), ZoneID: uuid.New(), LotNumber: "20260801-01", ProductName: "纯碱", Quantity: decimal.NewFromInt(120)},
			{ID: uuid.New(), ZoneID: uuid.New(), LotNumber: "20260801-02", ProductName: "纯碱", Quantity: decimal.RequireFromString("35.500")},
		},
	}
	svc, err := NewService(repo)
	require.NoError(t, err)

	stock, err := svc.StockByProduct(context.Background(), "纯碱", "")
	require.NoError(t, err)
	assert.True(t, stock.Total.Equal(decimal.RequireFromString("155.500")))
	assert.Len(t, stock.Lots, 2)
}

func TestStockByProductRequiresName(t *testing.T) {
	svc, err := NewService(&stubWarehouseRepo{})
	require.NoError(t, err)

	_, err = svc.StockByProduct(context.Background(), "", "")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGetUnknownWarehouse(t *testing.T) {
	svc, err := NewService(&stubWarehouseRepo{})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
