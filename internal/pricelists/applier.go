package pricelists

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	pkgerrors "github.com/chemtrade/chemtrade-backend/pkg/errors"
)

// Applier lands approved price changes. It only needs the repository, so the
// approval effect registry can be wired before the full service exists.
type Applier struct {
	repo Repository
}

// NewApplier builds the approval-side applier.
func NewApplier(repo Repository) (*Applier, error) {
	if repo == nil {
		return nil, fmt.Errorf("price record repository required")
	}
	return &Applier{repo: repo}, nil
}

// ApplyApprovedChange upserts the approved payload inside the resolving
// transaction.
func (a *Applier) ApplyApprovedChange(ctx context.Context, tx *gorm.DB, subject enums.ApprovalSubject, payload string) error {
	var change changePayload
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode price change payload")
	}
	if change.Kind.ApprovalSubject() != subject {
		return pkgerrors.New(pkgerrors.CodeValidation, "payload kind does not match the approval subject")
	}
	if change.ProductName == "" || change.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "approved payload is not a usable price change")
	}

	record := &models.PriceRecord{
		ID:           change.RecordID,
		Kind:         change.Kind,
		ProductName:  change.ProductName,
		Spec:         change.Spec,
		CustomerName: change.CustomerName,
		Price:        change.Price,
		EffectiveAt:  change.EffectiveAt,
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if err := a.repo.WithTx(tx).UpsertRecord(ctx, record); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert price record")
	}
	return nil
}
