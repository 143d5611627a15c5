package approvals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/internal/orders"
	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	pkgerrors "github.com/chemtrade/chemtrade-backend/pkg/errors"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Effect applies an approved request inside the resolving transaction.
// The atomic pending-to-approved flip guarantees it runs at most once.
type Effect func(ctx context.Context, tx *gorm.DB, request *models.ApprovalRequest, resolver string) error

// EffectRegistry maps subject types to their apply-effect.
type EffectRegistry map[enums.ApprovalSubject]Effect

// Service is the generic pending-to-resolved approval workflow.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.ApprovalRequest, error)
	Resolve(ctx context.Context, input ResolveInput) (*models.ApprovalRequest, error)
	Get(ctx context.Context, requestID uuid.UUID) (*models.ApprovalRequest, error)
	ListPending(ctx context.Context, params pagination.Params, filters RequestFilters) (*RequestList, error)
	ListHistory(ctx context.Context, params pagination.Params, filters RequestFilters) (*RequestList, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	effects  EffectRegistry
	orderSvc orders.StatusApplier
	now      func() time.Time
}

// NewService builds an approval workflow service with the required dependencies.
func NewService(repo Repository, tx txRunner, effects EffectRegistry, orderSvc orders.StatusApplier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("approvals repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if len(effects) == 0 {
		return nil, fmt.Errorf("effect registry required")
	}
	if orderSvc == nil {
		return nil, fmt.Errorf("order status applier required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		effects:  effects,
		orderSvc: orderSvc,
		now:      time.Now,
	}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.ApprovalRequest, error) {
	if !input.SubjectType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown approval subject")
	}
	if input.SubjectRef == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject reference required")
	}
	if input.Actor == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor required")
	}
	if strings.TrimSpace(input.Remark) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeRemarkRequired, "approval remark required")
	}
	if err := validatePayload(input); err != nil {
		return nil, err
	}

	request := &models.ApprovalRequest{
		ID:          uuid.New(),
		SubjectType: input.SubjectType,
		SubjectRef:  input.SubjectRef,
		OldValue:    input.OldValue,
		NewValue:    input.NewValue,
		Remark:      input.Remark,
		Status:      enums.ApprovalStatusPending,
		SubmittedBy: input.Actor,
		SubmittedAt: s.now(),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.CreateRequest(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create approval request")
		}
		if input.SubjectType == enums.ApprovalSubjectOrderPrice {
			// Park the order in price-approval while the request is open.
			_, err := s.orderSvc.ApplyStatusEvent(ctx, tx, input.SubjectRef, orders.EventPriceChangeSubmitted, "提交价格变更审批", input.Actor)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (s *service) Resolve(ctx context.Context, input ResolveInput) (*models.ApprovalRequest, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if !input.Decision.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be approve or reject")
	}
	if input.Resolver == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "resolver required")
	}
	if input.Decision == enums.ApprovalDecisionReject && strings.TrimSpace(input.ResolutionRemark) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeRemarkRequired, "rejection requires a resolution remark")
	}

	var result *models.ApprovalRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		request, err := repo.FindRequest(ctx, input.RequestID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "approval request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load approval request")
		}
		if request.Status.Resolved() {
			return pkgerrors.New(pkgerrors.CodeAlreadyResolved, "approval request already resolved")
		}

		status := enums.ApprovalStatusApproved
		if input.Decision == enums.ApprovalDecisionReject {
			status = enums.ApprovalStatusRejected
		}
		resolvedAt := s.now()
		updates := map[string]any{
			"status":      status,
			"resolved_by": input.Resolver,
			"resolved_at": resolvedAt,
		}
		if input.ResolutionRemark != "" {
			updates["resolution_remark"] = input.ResolutionRemark
		}

		rows, err := repo.ResolveRequest(ctx, request.ID, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve approval request")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeAlreadyResolved, "approval request already resolved")
		}

		request.Status = status
		request.ResolvedBy = &input.Resolver
		request.ResolvedAt = &resolvedAt
		if input.ResolutionRemark != "" {
			remark := input.ResolutionRemark
			request.ResolutionRemark = &remark
		}

		if status == enums.ApprovalStatusApproved {
			effect, ok := s.effects[request.SubjectType]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeInternal, "no effect registered for subject "+request.SubjectType.String())
			}
			if err := effect(ctx, tx, request, input.Resolver); err != nil {
				return err
			}
		}

		result = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, requestID uuid.UUID) (*models.ApprovalRequest, error) {
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	request, err := s.repo.FindRequest(ctx, requestID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "approval request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load approval request")
	}
	return request, nil
}

func (s *service) ListPending(ctx context.Context, params pagination.Params, filters RequestFilters) (*RequestList, error) {
	filters.Statuses = []enums.ApprovalStatus{enums.ApprovalStatusPending}
	list, err := s.repo.ListRequests(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending approvals")
	}
	return list, nil
}

func (s *service) ListHistory(ctx context.Context, params pagination.Params, filters RequestFilters) (*RequestList, error) {
	filters.Statuses = []enums.ApprovalStatus{enums.ApprovalStatusApproved, enums.ApprovalStatusRejected}
	list, err := s.repo.ListRequests(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list approval history")
	}
	return list, nil
}

// validatePayload enforces that value-carrying subjects arrive with a usable
// new value. Audit requests carry no payload.
func validatePayload(input SubmitInput) error {
	if input.SubjectType == enums.ApprovalSubjectOrderAudit {
		return nil
	}
	if input.NewValue == nil || strings.TrimSpace(*input.NewValue) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "new value required for "+input.SubjectType.String())
	}
	if input.SubjectType == enums.ApprovalSubjectOrderPrice {
		price, err := decimal.NewFromString(strings.TrimSpace(*input.NewValue))
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "new price must be a decimal number")
		}
		if price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "new price cannot be negative")
		}
	}
	return nil
}
