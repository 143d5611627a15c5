package contracts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

// Repository defines persistence operations for contracts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateContract(ctx context.Context, contract *models.Contract) (*models.Contract, error)
	FindContract(ctx context.Context, contractID uuid.UUID) (*models.Contract, error)
	ListContracts(ctx context.Context, params pagination.Params, filters ContractFilters) (*ContractList, error)
	UpdateContract(ctx context.Context, contractID uuid.UUID, updates map[string]any) error
}
