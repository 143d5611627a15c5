package approvals

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/internal/orders"
	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	pkgerrors "github.com/chemtrade/chemtrade-backend/pkg/errors"
)

// OrderEffects is the slice of the order service the approval effects need.
type OrderEffects interface {
	orders.StatusApplier
	UpdatePrice(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, newPrice decimal.Decimal, actor string) error
}

// PriceListApplier upserts an approved price-list change.
type PriceListApplier interface {
	ApplyApprovedChange(ctx context.Context, tx *gorm.DB, subject enums.ApprovalSubject, payload string) error
}

// NewEffectRegistry wires the subject-typed apply-effects: order audit and
// price approvals advance the order, price-list approvals upsert records.
func NewEffectRegistry(orderSvc OrderEffects, priceLists PriceListApplier) EffectRegistry {
	registry := EffectRegistry{
		enums.ApprovalSubjectOrderAudit: func(ctx context.Context, tx *gorm.DB, request *models.ApprovalRequest, resolver string) error {
			_, err := orderSvc.ApplyStatusEvent(ctx, tx, request.SubjectRef, orders.EventAuditApproved, "财务审核通过", resolver)
			return err
		},
		enums.ApprovalSubjectOrderPrice: func(ctx context.Context, tx *gorm.DB, request *models.ApprovalRequest, resolver string) error {
			if request.NewValue == nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "price request carries no new value")
			}
			price, err := decimal.NewFromString(strings.TrimSpace(*request.NewValue))
			if err != nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "price request payload is not a decimal")
			}
			return orderSvc.UpdatePrice(ctx, tx, request.SubjectRef, price, resolver)
		},
	}

	priceListEffect := func(ctx context.Context, tx *gorm.DB, request *models.ApprovalRequest, resolver string) error {
		if request.NewValue == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "price list request carries no new value")
		}
		return priceLists.ApplyApprovedChange(ctx, tx, request.SubjectType, *request.NewValue)
	}
	registry[enums.ApprovalSubjectPriceListPurchase] = priceListEffect
	registry[enums.ApprovalSubjectPriceListCommonSale] = priceListEffect
	registry[enums.ApprovalSubjectPriceListCustomerSale] = priceListEffect

	return registry
}
