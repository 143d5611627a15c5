package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/chemtrade/chemtrade-backend/internal/approvals"
	"github.com/chemtrade/chemtrade-backend/pkg/logger"
	"github.com/chemtrade/chemtrade-backend/pkg/metrics"
)

const defaultReminderAge = 72 * time.Hour

// ApprovalReminderJob flags approval requests that have sat pending longer
// than the configured age, so finance can chase them before orders stall.
type ApprovalReminderJob struct {
	repo     approvals.Repository
	logg     *logger.Logger
	workflow *metrics.WorkflowMetrics
	age      time.Duration
	now      func() time.Time
}

// NewApprovalReminderJob builds the reminder job.
func NewApprovalReminderJob(repo approvals.Repository, logg *logger.Logger, workflow *metrics.WorkflowMetrics, age time.Duration) (*ApprovalReminderJob, error) {
	if repo == nil {
		return nil, fmt.Errorf("approvals repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if age <= 0 {
		age = defaultReminderAge
	}
	return &ApprovalReminderJob{
		repo:     repo,
		logg:     logg,
		workflow: workflow,
		age:      age,
		now:      time.Now,
	}, nil
}

// Name identifies the job in logs and metrics.
func (j *ApprovalReminderJob) Name() string { return "approval_reminder" }

// Run reports the pending backlog and logs one line per stale request.
func (j *ApprovalReminderJob) Run(ctx context.Context) error {
	var errs error

	pending, err := j.repo.CountPending(ctx)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("count pending approvals: %w", err))
	} else if j.workflow != nil {
		j.workflow.SetPendingApprovals(float64(pending))
	}

	cutoff := j.now().Add(-j.age)
	stale, err := j.repo.ListPendingOlderThan(ctx, cutoff)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("list stale approvals: %w", err))
		return errs
	}

	for _, request := range stale {
		reqCtx := j.logg.WithFields(ctx, map[string]any{
			"request_id":   request.ID.String(),
			"subject_type": request.SubjectType.String(),
			"subject_ref":  request.SubjectRef.String(),
			"submitted_by": request.SubmittedBy,
			"pending_for":  j.now().Sub(request.SubmittedAt).String(),
		})
		j.logg.Warn(reqCtx, "approval request pending past the reminder threshold")
	}
	if len(stale) > 0 && j.workflow != nil {
		j.workflow.IncStaleApprovals(len(stale))
	}

	return errs
}
