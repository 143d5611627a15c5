package contracts

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

// NewRepository builds a contracts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateContract(ctx context.Context, contract *models.Contract) (*models.Contract, error) {
	if err := r.db.WithContext(ctx).Create(contract).Error; err != nil {
		return nil, err
	}
	return contract, nil
}

func (r *repository) FindContract(ctx context.Context, contractID uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Where("id = ?", contractID).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *repository) ListContracts(ctx context.Context, params pagination.Params, filters ContractFilters) (*ContractList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Contract{})
	if len(filters.Statuses) > 0 {
		query = query.Where("status IN ?", filters.Statuses)
	}
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("code LIKE ? OR customer_name LIKE ? OR product_name LIKE ?", like, like, like)
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Contract
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &ContractList{Contracts: make([]ContractSummary, 0, len(rows))}
	hasMore := len(rows) > normalized
	if hasMore {
		rows = rows[:normalized]
	}

	for _, row := range rows {
		list.Contracts = append(list.Contracts, ContractSummary{
			ID:            row.ID,
			Code:          row.Code,
			CustomerName:  row.CustomerName,
			ProductName:   row.ProductName,
			Spec:          row.Spec,
			TotalQuantity: row.TotalQuantity,
			UnitPrice:     row.UnitPrice,
			ShipStart:     row.ShipStart,
			ShipEnd:       row.ShipEnd,
			Status:        row.Status,
			CreatedAt:     row.CreatedAt,
		})
	}

	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		list.NextCursor = pagination.NextFrom(last.CreatedAt, last.ID)
	}
	return list, nil
}

func (r *repository) UpdateContract(ctx context.Context, contractID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("id = ?", contractID).
		Updates(updates).Error
}
