package warehouses

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

// Repository defines persistence operations for warehouse master data.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateWarehouse(ctx context.Context, warehouse *models.Warehouse) (*models.Warehouse, error)
	FindWarehouse(ctx context.Context, warehouseID uuid.UUID) (*models.Warehouse, error)
	ListWarehouses(ctx context.Context, params pagination.Params, filters WarehouseFilters) (*WarehouseList, error)
	// ListLotsByProduct returns every lot holding the product across all
	// warehouses, newest first.
	ListLotsByProduct(ctx context.Context, productName, spec string) ([]models.InventoryLot, error)
}
