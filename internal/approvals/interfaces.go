package approvals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

// Repository defines persistence operations for approval requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateRequest(ctx context.Context, request *models.ApprovalRequest) (*models.ApprovalRequest, error)
	FindRequest(ctx context.Context, requestID uuid.UUID) (*models.ApprovalRequest, error)
	ListRequests(ctx context.Context, params pagination.Params, filters RequestFilters) (*RequestList, error)
	// ResolveRequest flips a still-pending row in a single UPDATE and reports
	// how many rows changed. Zero means another resolver won the race.
	ResolveRequest(ctx context.Context, requestID uuid.UUID, updates map[string]any) (int64, error)
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.ApprovalRequest, error)
	CountPending(ctx context.Context) (int64, error)
}
