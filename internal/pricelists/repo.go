package pricelists

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a price record repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByKey(ctx context.Context, key RecordKey) (*models.PriceRecord, error) {
	var record models.PriceRecord
	err := r.db.WithContext(ctx).
		Where("kind = ? AND product_name = ? AND spec = ? AND customer_name = ?",
			key.Kind, key.ProductName, key.Spec, key.CustomerName).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) UpsertRecord(ctx context.Context, record *models.PriceRecord) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "kind"}, {Name: "product_name"}, {Name: "spec"}, {Name: "customer_name"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"price", "effective_at", "updated_at"}),
		}).
		Create(record).Error
}

func (r *repository) ListRecords(ctx context.Context, params pagination.Params, filters RecordFilters) (*RecordList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.PriceRecord{})
	if filters.Kind != "" {
		query = query.Where("kind = ?", filters.Kind)
	}
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("product_name LIKE ? OR customer_name LIKE ?", like, like)
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.PriceRecord
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &RecordList{Records: make([]RecordSummary, 0, len(rows))}
	hasMore := len(rows) > normalized
	if hasMore {
		rows = rows[:normalized]
	}

	for _, row := range rows {
		list.Records = append(list.Records, RecordSummary{
			ID:           row.ID,
			Kind:         row.Kind,
			ProductName:  row.ProductName,
			Spec:         row.Spec,
			CustomerName: row.CustomerName,
			Price:        row.Price,
			EffectiveAt:  row.EffectiveAt,
			UpdatedAt:    row.UpdatedAt,
		})
	}

	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		list.NextCursor = pagination.NextFrom(last.CreatedAt, last.ID)
	}
	return list, nil
}
