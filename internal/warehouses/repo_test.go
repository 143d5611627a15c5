package warehouses

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

func setupWarehousesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	warehouses := `
CREATE TABLE IF NOT EXISTS warehouses (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  address TEXT NOT NULL DEFAULT '',
  manager TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  updated_at DATETIME
);`
	zones := `
CREATE TABLE IF NOT EXISTS warehouse_zones (
  id TEXT PRIMARY KEY,
  warehouse_id TEXT NOT NULL,
  code TEXT NOT NULL,
  name TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	lots := `
CREATE TABLE IF NOT EXISTS inventory_lots (
  id TEXT PRIMARY KEY,
  zone_id TEXT NOT NULL,
  lot_number TEXT NOT NULL,
  product_name TEXT NOT NULL,
  spec TEXT NOT NULL DEFAULT '',
  quantity NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	for _, ddl := range []string{warehouses, zones, lots} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func seedWarehouse(t *testing.T, db *gorm.DB, code string, createdAt time.Time) *models.Warehouse {
	t.Helper()

	warehouse := &models.Warehouse{
		ID:        uuid.New(),
		Code:      code,
		Name:      "张店总库",
		Address:   "淄博市张店区化工路 18 号",
		Manager:   "库管老刘",
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(warehouse).Error)
	return warehouse
}

func TestRepoFindWarehousePreloadsZonesAndLots(t *testing.T) {
	db := setupWarehousesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	warehouse := seedWarehouse(t, db, "WH-01", time.Now().UTC())
	zone := &models.WarehouseZone{
		ID:          uuid.New(),
		WarehouseID: warehouse.ID,
		Code:        "A",
		Name:        "A 区",
	}
	require.NoError(t, db.Create(zone).Error)
	lot := &models.InventoryLot{
		ID:          uuid.New(),
		ZoneID:      zone.ID,
		LotNumber:   "20260801-01",
		ProductName: "纯碱",
		Spec:        "工业级",
		Quantity:    decimal.NewFromInt(120),
	}
	require.NoError(t, db.Create(lot).Error)

	found, err := repo.FindWarehouse(ctx, warehouse.ID)
	require.NoError(t, err)
	require.Len(t, found.Zones, 1)
	require.Len(t, found.Zones[0].Lots, 1)
	assert.Equal(t, "20260801-01", found.Zones[0].Lots[0].LotNumber)
}

func TestRepoListWarehousesPaginates(t *testing.T) {
	db := setupWarehousesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	seedWarehouse(t, db, "WH-01", base)
	seedWarehouse(t, db, "WH-02", base.Add(time.Hour))
	seedWarehouse(t, db, "WH-03", base.Add(2*time.Hour))

	page1, err := repo.ListWarehouses(ctx, pagination.Params{Limit: 2}, WarehouseFilters{})
	require.NoError(t, err)
	require.Len(t, page1.Warehouses, 2)
	require.NotEmpty(t, page1.NextCursor)
	assert.Equal(t, "WH-03", page1.Warehouses[0].Code)

	page2, err := repo.ListWarehouses(ctx, pagination.Params{Limit: 2, Cursor: page1.NextCursor}, WarehouseFilters{})
	require.NoError(t, err)
	require.Len(t, page2.Warehouses, 1)
	assert.Equal(t, "WH-01", page2.Warehouses[0].Code)
}

func TestRepoListLotsByProduct(t *testing.T) {
	db := setupWarehousesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	warehouse := seedWarehouse(t, db, "WH-01", time.Now().UTC())
	zone := &models.WarehouseZone{
		ID:          uuid.New(),
		WarehouseID: warehouse.ID,
		Code:        "A",
		Name:        "A 区",
	}
	require.NoError(t, db.Create(zone).Error)

	for i, quantity := range []int64{120, 80} {
		require.NoError(t, db.Create(&models.InventoryLot{
			ID:          uuid.New(),
			ZoneID:      zone.ID,
			LotNumber:   "20260801-0" + string(rune('1'+i)),
			ProductName: "纯碱",
			Spec:        "工业级",
			Quantity:    decimal.NewFromInt(quantity),
		}).Error)
	}
	require.NoError(t, db.Create(&models.InventoryLot{
		ID:          uuid.New(),
		ZoneID:      zone.ID,
		LotNumber:   "20260801-09",
		ProductName: "烧碱",
		Quantity:    decimal.NewFromInt(50),
	}).Error)

	lots, err := repo.ListLotsByProduct(ctx, "纯碱", "工业级")
	require.NoError(t, err)
	assert.Len(t, lots, 2)

	lots, err = repo.ListLotsByProduct(ctx, "烧碱", "")
	require.NoError(t, err)
	assert.Len(t, lots, 1)
}
