package approvals

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

func setupApprovalsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS approval_requests (
  id TEXT PRIMARY KEY,
  subject_type TEXT NOT NULL,
  subject_ref TEXT NOT NULL,
  old_value TEXT,
  new_value TEXT,
  remark TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  submitted_by TEXT NOT NULL,
  submitted_at DATETIME NOT NULL,
  resolved_by TEXT,
  resolved_at DATETIME,
  resolution_remark TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedRequest(t *testing.T, db *gorm.DB, mutate func(*models.ApprovalRequest)) *models.ApprovalRequest {
	t.Helper()
	request := &models.ApprovalRequest{
		ID:          uuid.New(),
		SubjectType: enums.ApprovalSubjectOrderAudit,
		SubjectRef:  uuid.New(),
		Remark:      "请审核",
		Status:      enums.ApprovalStatusPending,
		SubmittedBy: "张三",
		SubmittedAt: time.Now().Add(-time.Hour),
	}
	if mutate != nil {
		mutate(request)
	}
	require.NoError(t, db.Create(request).Error)
	return request
}

func TestRepoResolveRequestFlipsPendingRowOnce(t *testing.T) {
	db := setupApprovalsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	request := seedRequest(t, db, nil)
	resolver := "审批员"
	updates := map[string]any{
		"status":      enums.ApprovalStatusApproved,
		"resolved_by": resolver,
		"resolved_at": time.Now(),
	}

	rows, err := repo.ResolveRequest(ctx, request.ID, updates)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.ResolveRequest(ctx, request.ID, updates)
	require.NoError(t, err)
	assert.Zero(t, rows, "second flip must match no rows")

	reloaded, err := repo.FindRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ApprovalStatusApproved, reloaded.Status)
	require.NotNil(t, reloaded.ResolvedBy)
	assert.Equal(t, resolver, *reloaded.ResolvedBy)
}

func TestRepoListRequestsSplitsPendingAndHistory(t *testing.T) {
	db := setupApprovalsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedRequest(t, db, nil)
	seedRequest(t, db, func(r *models.ApprovalRequest) { r.Status = enums.ApprovalStatusApproved })
	seedRequest(t, db, func(r *models.ApprovalRequest) { r.Status = enums.ApprovalStatusRejected })

	pending, err := repo.ListRequests(ctx, pagination.Params{}, RequestFilters{
		Statuses: []enums.ApprovalStatus{enums.ApprovalStatusPending},
	})
	require.NoError(t, err)
	require.Len(t, pending.Requests, 1)
	assert.Equal(t, enums.ApprovalStatusPending, pending.Requests[0].Status)

	history, err := repo.ListRequests(ctx, pagination.Params{}, RequestFilters{
		Statuses: []enums.ApprovalStatus{enums.ApprovalStatusApproved, enums.ApprovalStatusRejected},
	})
	require.NoError(t, err)
	assert.Len(t, history.Requests, 2)
}

func TestRepoListPendingOlderThan(t *testing.T) {
	db := setupApprovalsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	stale := seedRequest(t, db, func(r *models.ApprovalRequest) {
		r.SubmittedAt = time.Now().Add(-96 * time.Hour)
	})
	seedRequest(t, db, nil) // fresh
	seedRequest(t, db, func(r *models.ApprovalRequest) {
		r.SubmittedAt = time.Now().Add(-96 * time.Hour)
		r.Status = enums.ApprovalStatusApproved
	})

	rows, err := repo.ListPendingOlderThan(ctx, time.Now().Add(-72*time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, stale.ID, rows[0].ID)

	count, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
