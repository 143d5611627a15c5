package pricelists

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

func setupPriceRecordsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS price_records (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  product_name TEXT NOT NULL,
  spec TEXT NOT NULL DEFAULT '',
  customer_name TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL,
  effective_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	index := `
CREATE UNIQUE INDEX IF NOT EXISTS uq_price_records_key
  ON price_records (kind, product_name, spec, customer_name);`
	for _, stmt := range []string{ddl, index} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func purchaseRecord(price decimal.Decimal) *models.PriceRecord {
	return &models.PriceRecord{
		ID:          uuid.New(),
		Kind:        enums.PriceListKindPurchase,
		ProductName: "纯碱",
		Spec:        "工业级",
		Price:       price,
		EffectiveAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRepoUpsertInsertsThenOverwrites(t *testing.T) {
	db := setupPriceRecordsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first := purchaseRecord(decimal.NewFromInt(2300))
	require.NoError(t, repo.UpsertRecord(ctx, first))

	// Same natural key: the price is overwritten, no second row appears.
	second := purchaseRecord(decimal.RequireFromString("2350.50"))
	second.EffectiveAt = time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpsertRecord(ctx, second))

	var count int64
	require.NoError(t, db.Model(&models.PriceRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	found, err := repo.FindByKey(ctx, RecordKey{
		Kind:        enums.PriceListKindPurchase,
		ProductName: "纯碱",
		Spec:        "工业级",
	})
	require.NoError(t, err)
	assert.True(t, found.Price.Equal(decimal.RequireFromString("2350.50")))
	assert.Equal(t, first.ID, found.ID, "the original row survives the upsert")
}

func TestRepoFindByKeyDistinguishesCustomers(t *testing.T) {
	db := setupPriceRecordsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	common := &models.PriceRecord{
		ID:           uuid.New(),
		Kind:         enums.PriceListKindCustomerSale,
		ProductName:  "纯碱",
		Spec:         "工业级",
		CustomerName: "淄博金盛化工",
		Price:        decimal.NewFromInt(2280),
		EffectiveAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.UpsertRecord(ctx, common))

	_, err := repo.FindByKey(ctx, RecordKey{
		Kind:        enums.PriceListKindCustomerSale,
		ProductName: "纯碱",
		Spec:        "工业级",
	})
	assert.Equal(t, gorm.ErrRecordNotFound, err)

	found, err := repo.FindByKey(ctx, RecordKey{
		Kind:         enums.PriceListKindCustomerSale,
		ProductName:  "纯碱",
		Spec:         "工业级",
		CustomerName: "淄博金盛化工",
	})
	require.NoError(t, err)
	assert.True(t, found.Price.Equal(decimal.NewFromInt(2280)))
}

func TestRepoListRecordsFiltersByKind(t *testing.T) {
	db := setupPriceRecordsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	purchase := purchaseRecord(decimal.NewFromInt(2300))
	purchase.CreatedAt = time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(purchase).Error)

	sale := &models.PriceRecord{
		ID:          uuid.New(),
		Kind:        enums.PriceListKindCommonSale,
		ProductName: "纯碱",
		Spec:        "工业级",
		Price:       decimal.NewFromInt(2400),
		EffectiveAt: time.Now().UTC(),
		CreatedAt:   time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(sale).Error)

	list, err := repo.ListRecords(ctx, pagination.Params{}, RecordFilters{Kind: enums.PriceListKindPurchase})
	require.NoError(t, err)
	require.Len(t, list.Records, 1)
	assert.Equal(t, purchase.ID, list.Records[0].ID)

	list, err = repo.ListRecords(ctx, pagination.Params{}, RecordFilters{})
	require.NoError(t, err)
	assert.Len(t, list.Records, 2)
	// Newest first.
	assert.Equal(t, sale.ID, list.Records[0].ID)
}
