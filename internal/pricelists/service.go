package pricelists

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/internal/approvals"
	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	pkgerrors "github.com/chemtrade/chemtrade-backend/pkg/errors"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

// approvalSubmitter is the slice of the approval workflow price changes need.
type approvalSubmitter interface {
	Submit(ctx context.Context, input approvals.SubmitInput) (*models.ApprovalRequest, error)
}

// Service manages the three price lists. Reads are direct; every mutation
// goes through the approval workflow and lands via the Applier.
type Service interface {
	SubmitChange(ctx context.Context, input SubmitChangeInput) (*models.ApprovalRequest, error)
	List(ctx context.Context, params pagination.Params, filters RecordFilters) (*RecordList, error)
}

type service struct {
	repo      Repository
	approvals approvalSubmitter
	now       func() time.Time
}

// NewService builds a price list service with the required dependencies.
func NewService(repo Repository, submitter approvalSubmitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("price record repository required")
	}
	if submitter == nil {
		return nil, fmt.Errorf("approval submitter required")
	}
	return &service{repo: repo, approvals: submitter, now: time.Now}, nil
}

func (s *service) SubmitChange(ctx context.Context, input SubmitChangeInput) (*models.ApprovalRequest, error) {
	if err := validateChange(input); err != nil {
		return nil, err
	}

	key := RecordKey{
		Kind:         input.Kind,
		ProductName:  input.ProductName,
		Spec:         input.Spec,
		CustomerName: input.CustomerName,
	}

	// An existing record contributes its id and current price; a new entry
	// gets its id allocated here so the request has a subject to point at.
	recordID := uuid.New()
	var oldValue *string
	current, err := s.repo.FindByKey(ctx, key)
	switch {
	case err == nil:
		recordID = current.ID
		value := current.Price.String()
		oldValue = &value
	case err == gorm.ErrRecordNotFound:
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up price record")
	}

	effectiveAt := s.now()
	if input.EffectiveAt != nil {
		effectiveAt = *input.EffectiveAt
	}
	payload, err := json.Marshal(changePayload{
		RecordID:     recordID,
		Kind:         input.Kind,
		ProductName:  input.ProductName,
		Spec:         input.Spec,
		CustomerName: input.CustomerName,
		Price:        input.NewPrice,
		EffectiveAt:  effectiveAt,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode price change payload")
	}
	newValue := string(payload)

	return s.approvals.Submit(ctx, approvals.SubmitInput{
		SubjectType: input.Kind.ApprovalSubject(),
		SubjectRef:  recordID,
		OldValue:    oldValue,
		NewValue:    &newValue,
		Remark:      input.Remark,
		Actor:       input.Actor,
	})
}

func (s *service) List(ctx context.Context, params pagination.Params, filters RecordFilters) (*RecordList, error) {
	if filters.Kind != "" && !filters.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown price list kind")
	}
	list, err := s.repo.ListRecords(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list price records")
	}
	return list, nil
}

func validateChange(input SubmitChangeInput) error {
	if !input.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown price list kind")
	}
	if input.ProductName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if input.Kind == enums.PriceListKindCustomerSale && input.CustomerName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name required for customer sale prices")
	}
	if input.Kind != enums.PriceListKindCustomerSale && input.CustomerName != "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name only applies to customer sale prices")
	}
	if input.NewPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Actor == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor required")
	}
	return nil
}
