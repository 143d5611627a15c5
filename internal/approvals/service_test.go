package approvals

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/internal/orders"
	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	pkgerrors "github.com/chemtrade/chemtrade-backend/pkg/errors"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

type stubApprovalsRepo struct {
	requests    map[uuid.UUID]*models.ApprovalRequest
	created     []*models.ApprovalRequest
	listFilters RequestFilters
	// findOverride lets a test hand the service a stale pending snapshot
	// while the stored row has already been resolved.
	findOverride *models.ApprovalRequest
}

func newStubApprovalsRepo(requests ...*models.ApprovalRequest) *stubApprovalsRepo {
	repo := &stubApprovalsRepo{requests: map[uuid.UUID]*models.ApprovalRequest{}}
	for _, request := range requests {
		repo.requests[request.ID] = request
	}
	return repo
}

func (s *stubApprovalsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubApprovalsRepo) CreateRequest(ctx context.Context, request *models.ApprovalRequest) (*models.ApprovalRequest, error) {
	s.requests[request.ID] = request
	s.created = append(s.created, request)
	return request, nil
}

func (s *stubApprovalsRepo) FindRequest(ctx context.Context, requestID uuid.UUID) (*models.ApprovalRequest, error) {
	if s.findOverride != nil {
		clone := *s.findOverride
		return &clone, nil
	}
	request, ok := s.requests[requestID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *request
	return &clone, nil
}

func (s *stubApprovalsRepo) ListRequests(ctx context.Context, params pagination.Params, filters RequestFilters) (*RequestList, error) {
	s.listFilters = filters
	return &RequestList{}, nil
}

func (s *stubApprovalsRepo) ResolveRequest(ctx context.Context, requestID uuid.UUID, updates map[string]any) (int64, error) {
	request, ok := s.requests[requestID]
	if !ok {
		return 0, nil
	}
	if request.Status != enums.ApprovalStatusPending {
		return 0, nil
	}
	if v, ok := updates["status"].(enums.ApprovalStatus); ok {
		request.Status = v
	}
	return 1, nil
}

func (s *stubApprovalsRepo) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.ApprovalRequest, error) {
	panic("not implemented")
}

func (s *stubApprovalsRepo) CountPending(ctx context.Context) (int64, error) {
	return int64(len(s.requests)), nil
}

type stubStatusApplier struct {
	applied []orders.StatusEvent
	err     error
}

func (s *stubStatusApplier) ApplyStatusEvent(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, event orders.StatusEvent, action, actor string) (enums.OrderStatus, error) {
	if s.err != nil {
		return "", s.err
	}
	s.applied = append(s.applied, event)
	return enums.OrderStatusUnassigned, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func countingEffect(calls *int, err error) Effect {
	return func(ctx context.Context, tx *gorm.DB, request *models.ApprovalRequest, resolver string) error {
		if err != nil {
			return err
		}
		*calls++
		return nil
	}
}

func newApprovalService(t *testing.T, repo Repository, effects EffectRegistry, applier orders.StatusApplier) Service {
	t.Helper()
	if effects == nil {
		effects = EffectRegistry{
			enums.ApprovalSubjectOrderAudit: func(ctx context.Context, tx *gorm.DB, request *models.ApprovalRequest, resolver string) error {
				return nil
			},
		}
	}
	if applier == nil {
		applier = &stubStatusApplier{}
	}
	svc, err := NewService(repo, stubTxRunner{}, effects, applier)
	require.NoError(t, err)
	return svc
}

func pendingRequest(subject enums.ApprovalSubject, mutate func(*models.ApprovalRequest)) *models.ApprovalRequest {
	request := &models.ApprovalRequest{
		ID:          uuid.New(),
		SubjectType: subject,
		SubjectRef:  uuid.New(),
		Remark:      "待审批",
		Status:      enums.ApprovalStatusPending,
		SubmittedBy: "张三",
		SubmittedAt: time.Now().Add(-time.Hour),
	}
	if mutate != nil {
		mutate(request)
	}
	return request
}

func TestSubmitRejectsEmptyRemark(t *testing.T) {
	repo := newStubApprovalsRepo()
	svc := newApprovalService(t, repo, nil, nil)

	_, err := svc.Submit(context.Background(), SubmitInput{
		SubjectType: enums.ApprovalSubjectOrderAudit,
		SubjectRef:  uuid.New(),
		Remark:      "   ",
		Actor:       "张三",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeRemarkRequired))
	assert.Empty(t, repo.created, "no request may be created")
}

func TestSubmitPriceChangeRequiresPayload(t *testing.T) {
	repo := newStubApprovalsRepo()
	svc := newApprovalService(t, repo, nil, nil)

	_, err := svc.Submit(context.Background(), SubmitInput{
		SubjectType: enums.ApprovalSubjectOrderPrice,
		SubjectRef:  uuid.New(),
		Remark:      "调价",
		Actor:       "张三",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, repo.created)
}

func TestSubmitPriceChangeParksOrderInPriceApproval(t *testing.T) {
	repo := newStubApprovalsRepo()
	applier := &stubStatusApplier{}
	svc := newApprovalService(t, repo, nil, applier)

	newValue := "2350.00"
	oldValue := "2100.00"
	request, err := svc.Submit(context.Background(), SubmitInput{
		SubjectType: enums.ApprovalSubjectOrderPrice,
		SubjectRef:  uuid.New(),
		OldValue:    &oldValue,
		NewValue:    &newValue,
		Remark:      "市场价上调",
		Actor:       "张三",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ApprovalStatusPending, request.Status)
	require.Len(t, applier.applied, 1)
	assert.Equal(t, orders.EventPriceChangeSubmitted, applier.applied[0])
}

func TestSubmitAuditRequestNeedsNoPayload(t *testing.T) {
	repo := newStubApprovalsRepo()
	applier := &stubStatusApplier{}
	svc := newApprovalService(t, repo, nil, applier)

	request, err := svc.Submit(context.Background(), SubmitInput{
		SubjectType: enums.ApprovalSubjectOrderAudit,
		SubjectRef:  uuid.New(),
		Remark:      "请财务审核",
		Actor:       "张三",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ApprovalStatusPending, request.Status)
	assert.Empty(t, applier.applied, "audit submit does not move the order")
}

func TestResolveApproveAppliesEffectExactlyOnce(t *testing.T) {
	request := pendingRequest(enums.ApprovalSubjectOrderAudit, nil)
	repo := newStubApprovalsRepo(request)

	calls := 0
	effects := EffectRegistry{
		enums.ApprovalSubjectOrderAudit: countingEffect(&calls, nil),
	}
	svc := newApprovalService(t, repo, effects, nil)

	resolved, err := svc.Resolve(context.Background(), ResolveInput{
		RequestID: request.ID,
		Decision:  enums.ApprovalDecisionApprove,
		Resolver:  "审批员",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ApprovalStatusApproved, resolved.Status)
	assert.Equal(t, 1, calls)

	// Second resolve attempt must fail without re-applying the effect.
	_, err = svc.Resolve(context.Background(), ResolveInput{
		RequestID: request.ID,
		Decision:  enums.ApprovalDecisionApprove,
		Resolver:  "审批员",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeAlreadyResolved))
	assert.Equal(t, 1, calls, "effect must not run twice")
}

func TestResolveRejectRequiresRemarkAndSkipsEffect(t *testing.T) {
	request := pendingRequest(enums.ApprovalSubjectOrderAudit, nil)
	repo := newStubApprovalsRepo(request)

	calls := 0
	effects := EffectRegistry{
		enums.ApprovalSubjectOrderAudit: countingEffect(&calls, nil),
	}
	svc := newApprovalService(t, repo, effects, nil)

	_, err := svc.Resolve(context.Background(), ResolveInput{
		RequestID: request.ID,
		Decision:  enums.ApprovalDecisionReject,
		Resolver:  "审批员",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeRemarkRequired))

	resolved, err := svc.Resolve(context.Background(), ResolveInput{
		RequestID:        request.ID,
		Decision:         enums.ApprovalDecisionReject,
		Resolver:         "审批员",
		ResolutionRemark: "资料不全",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ApprovalStatusRejected, resolved.Status)
	assert.Zero(t, calls, "reject never applies the effect")
}

func TestResolveLostRaceReturnsAlreadyResolved(t *testing.T) {
	// A concurrent resolver flips the row between this resolver's load and
	// its conditional update: the stored row is approved while the service
	// still holds a pending snapshot, so the UPDATE matches zero rows.
	request := pendingRequest(enums.ApprovalSubjectOrderAudit, func(r *models.ApprovalRequest) {
		r.Status = enums.ApprovalStatusApproved
	})
	repo := newStubApprovalsRepo(request)
	snapshot := *request
	snapshot.Status = enums.ApprovalStatusPending
	repo.findOverride = &snapshot

	calls := 0
	effects := EffectRegistry{
		enums.ApprovalSubjectOrderAudit: countingEffect(&calls, nil),
	}
	svc := newApprovalService(t, repo, effects, nil)

	_, err := svc.Resolve(context.Background(), ResolveInput{
		RequestID: request.ID,
		Decision:  enums.ApprovalDecisionApprove,
		Resolver:  "审批员",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeAlreadyResolved))
	assert.Zero(t, calls)
}

func TestListViewsAreDisjointByStatus(t *testing.T) {
	repo := newStubApprovalsRepo()
	svc := newApprovalService(t, repo, nil, nil)

	_, err := svc.ListPending(context.Background(), pagination.Params{}, RequestFilters{})
	require.NoError(t, err)
	assert.Equal(t, []enums.ApprovalStatus{enums.ApprovalStatusPending}, repo.listFilters.Statuses)

	_, err = svc.ListHistory(context.Background(), pagination.Params{}, RequestFilters{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []enums.ApprovalStatus{
		enums.ApprovalStatusApproved,
		enums.ApprovalStatusRejected,
	}, repo.listFilters.Statuses)
}

func TestEffectRegistryPriceEffectParsesPayload(t *testing.T) {
	orderSvc := &stubOrderEffects{}
	registry := NewEffectRegistry(orderSvc, &stubPriceListApplier{})

	payload := "2350.50"
	request := pendingRequest(enums.ApprovalSubjectOrderPrice, func(r *models.ApprovalRequest) {
		r.NewValue = &payload
	})
	require.NoError(t, registry[enums.ApprovalSubjectOrderPrice](context.Background(), &gorm.DB{}, request, "审批员"))
	require.NotNil(t, orderSvc.priceUpdate)
	assert.True(t, orderSvc.priceUpdate.Equal(decimal.RequireFromString("2350.50")))
}

func TestEffectRegistryAuditEffectAdvancesOrder(t *testing.T) {
	orderSvc := &stubOrderEffects{}
	registry := NewEffectRegistry(orderSvc, &stubPriceListApplier{})

	request := pendingRequest(enums.ApprovalSubjectOrderAudit, nil)
	require.NoError(t, registry[enums.ApprovalSubjectOrderAudit](context.Background(), &gorm.DB{}, request, "审批员"))
	require.Len(t, orderSvc.applied, 1)
	assert.Equal(t, orders.EventAuditApproved, orderSvc.applied[0])
}

type stubOrderEffects struct {
	applied     []orders.StatusEvent
	priceUpdate *decimal.Decimal
}

func (s *stubOrderEffects) ApplyStatusEvent(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, event orders.StatusEvent, action, actor string) (enums.OrderStatus, error) {
	s.applied = append(s.applied, event)
	return enums.OrderStatusUnassigned, nil
}

func (s *stubOrderEffects) UpdatePrice(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, newPrice decimal.Decimal, actor string) error {
	s.priceUpdate = &newPrice
	return nil
}

type stubPriceListApplier struct {
	applied []enums.ApprovalSubject
}

func (s *stubPriceListApplier) ApplyApprovedChange(ctx context.Context, tx *gorm.DB, subject enums.ApprovalSubject, payload string) error {
	s.applied = append(s.applied, subject)
	return nil
}
