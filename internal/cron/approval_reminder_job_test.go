package cron

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/internal/approvals"
	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	"github.com/chemtrade/chemtrade-backend/pkg/logger"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

type fakeApprovalsRepo struct {
	pending    int64
	stale      []models.ApprovalRequest
	countErr   error
	listErr    error
	lastCutoff time.Time
}

func (f *fakeApprovalsRepo) WithTx(tx *gorm.DB) approvals.Repository { return f }

func (f *fakeApprovalsRepo) CreateRequest(ctx context.Context, request *models.ApprovalRequest) (*models.ApprovalRequest, error) {
	return request, nil
}

func (f *fakeApprovalsRepo) FindRequest(ctx context.Context, requestID uuid.UUID) (*models.ApprovalRequest, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeApprovalsRepo) ListRequests(ctx context.Context, params pagination.Params, filters approvals.RequestFilters) (*approvals.RequestList, error) {
	return &approvals.RequestList{}, nil
}

func (f *fakeApprovalsRepo) ResolveRequest(ctx context.Context, requestID uuid.UUID, updates map[string]any) (int64, error) {
	return 0, nil
}

func (f *fakeApprovalsRepo) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.ApprovalRequest, error) {
	f.lastCutoff = cutoff
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.stale, nil
}

func (f *fakeApprovalsRepo) CountPending(ctx context.Context) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.pending, nil
}

func staleRequest(age time.Duration) models.ApprovalRequest {
	return models.ApprovalRequest{
		ID:          uuid.New(),
		SubjectType: enums.ApprovalSubjectOrderPrice,
		SubjectRef:  uuid.New(),
		Status:      enums.ApprovalStatusPending,
		SubmittedBy: "销售小王",
		SubmittedAt: time.Now().Add(-age),
	}
}

func TestApprovalReminderJobUsesConfiguredAge(t *testing.T) {
	repo := &fakeApprovalsRepo{pending: 3}
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	job, err := NewApprovalReminderJob(repo, logg, nil, 48*time.Hour)
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	fixed := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return fixed }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run job: %v", err)
	}
	want := fixed.Add(-48 * time.Hour)
	if !repo.lastCutoff.Equal(want) {
		t.Fatalf("expected cutoff %v, got %v", want, repo.lastCutoff)
	}
}

func TestApprovalReminderJobLogsStaleRequests(t *testing.T) {
	repo := &fakeApprovalsRepo{
		pending: 2,
		stale:   []models.ApprovalRequest{staleRequest(96 * time.Hour), staleRequest(80 * time.Hour)},
	}
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	job, err := NewApprovalReminderJob(repo, logg, nil, 0)
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run job: %v", err)
	}
}

func TestApprovalReminderJobFoldsErrors(t *testing.T) {
	repo := &fakeApprovalsRepo{
		countErr: errors.New("count down"),
		listErr:  errors.New("list down"),
	}
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	job, err := NewApprovalReminderJob(repo, logg, nil, time.Hour)
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	runErr := job.Run(context.Background())
	if runErr == nil {
		t.Fatal("expected an error when both reads fail")
	}
	msg := runErr.Error()
	if !strings.Contains(msg, "count pending approvals") || !strings.Contains(msg, "list stale approvals") {
		t.Fatalf("expected both failures folded into the error, got %q", msg)
	}
}
