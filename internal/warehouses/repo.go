package warehouses

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a warehouse repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateWarehouse(ctx context.Context, warehouse *models.Warehouse) (*models.Warehouse, error) {
	if err := r.db.WithContext(ctx).Create(warehouse).Error; err != nil {
		return nil, err
	}
	return warehouse, nil
}

func (r *repository) FindWarehouse(ctx context.Context, warehouseID uuid.UUID) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	err := r.db.WithContext(ctx).
		Preload("Zones", func(db *gorm.DB) *gorm.DB {
			return db.Order("code ASC")
		}).
		Preload("Zones.Lots", func(db *gorm.DB) *gorm.DB {
			return db.Order("lot_number ASC")
		}).
		Where("id = ?", warehouseID).
		First(&warehouse).Error
	if err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (r *repository) ListWarehouses(ctx context.Context, params pagination.Params, filters WarehouseFilters) (*WarehouseList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Warehouse{}).Preload("Zones")
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", like, like)
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Warehouse
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &WarehouseList{Warehouses: make([]WarehouseSummary, 0, len(rows))}
	hasMore := len(rows) > normalized
	if hasMore {
		rows = rows[:normalized]
	}

	for _, row := range rows {
		list.Warehouses = append(list.Warehouses, WarehouseSummary{
			ID:        row.ID,
			Code:      row.Code,
			Name:      row.Name,
			Address:   row.Address,
			Manager:   row.Manager,
			ZoneCount: len(row.Zones),
			CreatedAt: row.CreatedAt,
		})
	}

	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		list.NextCursor = pagination.NextFrom(last.CreatedAt, last.ID)
	}
	return list, nil
}

func (r *repository) ListLotsByProduct(ctx context.Context, productName, spec string) ([]models.InventoryLot, error) {
	query := r.db.WithContext(ctx).
		Model(&models.InventoryLot{}).
		Where("product_name = ?", productName)
	if spec != "" {
		query = query.Where("spec = ?", spec)
	}

	var lots []models.InventoryLot
	if err := query.Order("created_at DESC, id DESC").Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}
