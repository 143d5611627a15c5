package vehicles

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
)

func setupVehiclesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  contract_id TEXT,
  customer_name TEXT NOT NULL,
  product_name TEXT NOT NULL,
  spec TEXT NOT NULL DEFAULT '',
  quantity NUMERIC NOT NULL,
  unit_price NUMERIC NOT NULL DEFAULT 0,
  ship_date DATETIME,
  status TEXT NOT NULL DEFAULT 'pending_audit',
  return_reason TEXT,
  exchange_reason TEXT,
  version INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	vehicles := `
CREATE TABLE IF NOT EXISTS vehicle_records (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  plate TEXT NOT NULL,
  driver_name TEXT NOT NULL,
  driver_phone TEXT NOT NULL DEFAULT '',
  movement_type TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending_entry',
  load_weight NUMERIC,
  return_weight NUMERIC,
  entry_time DATETIME,
  weighing1_time DATETIME,
  weighing1_weight NUMERIC,
  weighing2_time DATETIME,
  weighing2_weight NUMERIC,
  exit_time DATETIME,
  actual_out_weight NUMERIC,
  return_reason TEXT,
  exchange_reason TEXT,
  seq INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`

	for _, ddl := range []string{orders, vehicles} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func seedVehicleOrder(t *testing.T, db *gorm.DB) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:           uuid.New(),
		OrderNumber:  "SO-" + uuid.NewString()[:8],
		CustomerName: "客户",
		ProductName:  "纯碱",
		Quantity:     decimal.NewFromInt(500),
		Status:       enums.OrderStatusReadyToShip,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func plannedVehicle(orderID uuid.UUID, plate string, movementType enums.MovementType, seq int) models.VehicleRecord {
	weight := decimal.NewFromInt(32)
	record := models.VehicleRecord{
		ID:           uuid.New(),
		OrderID:      orderID,
		Plate:        plate,
		DriverName:   "司机",
		MovementType: movementType,
		Status:       enums.VehicleStatusPendingEntry,
		Seq:          seq,
	}
	if movementType.Inbound() {
		record.ReturnWeight = &weight
	} else {
		record.LoadWeight = &weight
	}
	return record
}

func TestRepoReplacePartitionPreservesIDsAndOrder(t *testing.T) {
	db := setupVehiclesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedVehicleOrder(t, db)

	original := []models.VehicleRecord{
		plannedVehicle(order.ID, "鲁C88888", enums.MovementTypeNormal, 0),
		plannedVehicle(order.ID, "鲁B12345", enums.MovementTypeNormal, 1),
	}
	require.NoError(t, repo.ReplacePartition(ctx, order.ID, enums.MovementTypeNormal, original))

	// An untouched return partition must survive a normal-partition swap.
	returnRecord := plannedVehicle(order.ID, "鲁F00001", enums.MovementTypeReturn, 0)
	require.NoError(t, db.Create(&returnRecord).Error)

	// Swap list order and drop the second truck.
	edited := []models.VehicleRecord{
		{ID: original[1].ID, Plate: "鲁B12345", DriverName: "司机", LoadWeight: original[1].LoadWeight},
		{Plate: "鲁D66666", DriverName: "新司机", LoadWeight: original[0].LoadWeight},
	}
	require.NoError(t, repo.ReplacePartition(ctx, order.ID, enums.MovementTypeNormal, edited))

	normals, err := repo.ListByOrderAndType(ctx, order.ID, enums.MovementTypeNormal)
	require.NoError(t, err)
	require.Len(t, normals, 2)
	assert.Equal(t, original[1].ID, normals[0].ID, "existing id preserved")
	assert.Equal(t, "鲁B12345", normals[0].Plate)
	assert.Equal(t, "鲁D66666", normals[1].Plate)
	assert.NotEqual(t, uuid.Nil, normals[1].ID, "new record gets an id")
	assert.Equal(t, 0, normals[0].Seq)
	assert.Equal(t, 1, normals[1].Seq)

	returns, err := repo.ListByOrderAndType(ctx, order.ID, enums.MovementTypeReturn)
	require.NoError(t, err)
	require.Len(t, returns, 1)
	assert.Equal(t, returnRecord.ID, returns[0].ID)
}

func TestRepoReplacePartitionWithEmptyListClears(t *testing.T) {
	db := setupVehiclesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedVehicleOrder(t, db)
	require.NoError(t, repo.ReplacePartition(ctx, order.ID, enums.MovementTypeNormal, []models.VehicleRecord{
		plannedVehicle(order.ID, "鲁C88888", enums.MovementTypeNormal, 0),
	}))
	require.NoError(t, repo.ReplacePartition(ctx, order.ID, enums.MovementTypeNormal, nil))

	normals, err := repo.ListByOrderAndType(ctx, order.ID, enums.MovementTypeNormal)
	require.NoError(t, err)
	assert.Empty(t, normals)
}

func TestRepoTouchOrderBumpsVersion(t *testing.T) {
	db := setupVehiclesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedVehicleOrder(t, db)
	require.NoError(t, repo.TouchOrder(ctx, order.ID))
	require.NoError(t, repo.TouchOrder(ctx, order.ID))

	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(t, int64(2), reloaded.Version)
}
