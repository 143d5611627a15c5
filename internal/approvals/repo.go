package approvals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an approvals repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateRequest(ctx context.Context, request *models.ApprovalRequest) (*models.ApprovalRequest, error) {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

func (r *repository) FindRequest(ctx context.Context, requestID uuid.UUID) (*models.ApprovalRequest, error) {
	var request models.ApprovalRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", requestID).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) ListRequests(ctx context.Context, params pagination.Params, filters RequestFilters) (*RequestList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.ApprovalRequest{})
	if len(filters.Statuses) > 0 {
		query = query.Where("status IN ?", filters.Statuses)
	}
	if len(filters.SubjectTypes) > 0 {
		query = query.Where("subject_type IN ?", filters.SubjectTypes)
	}
	if filters.SubjectRef != nil {
		query = query.Where("subject_ref = ?", *filters.SubjectRef)
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.ApprovalRequest
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &RequestList{Requests: make([]RequestSummary, 0, len(rows))}
	hasMore := len(rows) > normalized
	if hasMore {
		rows = rows[:normalized]
	}

	for _, row := range rows {
		list.Requests = append(list.Requests, RequestSummary{
			ID:          row.ID,
			SubjectType: row.SubjectType,
			SubjectRef:  row.SubjectRef,
			OldValue:    row.OldValue,
			NewValue:    row.NewValue,
			Remark:      row.Remark,
			Status:      row.Status,
			SubmittedBy: row.SubmittedBy,
			SubmittedAt: row.SubmittedAt,
			ResolvedBy:  row.ResolvedBy,
			ResolvedAt:  row.ResolvedAt,
		})
	}

	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		list.NextCursor = pagination.NextFrom(last.CreatedAt, last.ID)
	}
	return list, nil
}

func (r *repository) ResolveRequest(ctx context.Context, requestID uuid.UUID, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ApprovalRequest{}).
		Where("id = ? AND status = ?", requestID, enums.ApprovalStatusPending).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.ApprovalRequest, error) {
	var rows []models.ApprovalRequest
	err := r.db.WithContext(ctx).
		Where("status = ? AND submitted_at < ?", enums.ApprovalStatusPending, cutoff).
		Order("submitted_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ApprovalRequest{}).
		Where("status = ?", enums.ApprovalStatusPending).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
