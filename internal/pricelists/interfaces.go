package pricelists

import (
	"context"

	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

// Repository defines persistence operations for price records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// FindByKey looks a record up by its natural key. A missing record
	// returns gorm.ErrRecordNotFound.
	FindByKey(ctx context.Context, key RecordKey) (*models.PriceRecord, error)
	// UpsertRecord inserts the record or, when the natural key already
	// exists, overwrites its price and effective date.
	UpsertRecord(ctx context.Context, record *models.PriceRecord) error
	ListRecords(ctx context.Context, params pagination.Params, filters RecordFilters) (*RecordList, error)
}

// RecordKey is the natural key of a price record. CustomerName is empty for
// the purchase and common-sale lists.
type RecordKey struct {
	Kind         enums.PriceListKind
	ProductName  string
	Spec         string
	CustomerName string
}
