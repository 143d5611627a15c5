package vehicles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
)

// Repository defines persistence operations for the vehicle ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindVehicle(ctx context.Context, vehicleID uuid.UUID) (*models.VehicleRecord, error)
	ListByOrderAndType(ctx context.Context, orderID uuid.UUID, movementType enums.MovementType) ([]models.VehicleRecord, error)
	UpdateVehicle(ctx context.Context, vehicleID uuid.UUID, updates map[string]any) error
	DeleteVehicle(ctx context.Context, vehicleID uuid.UUID) error
	// ReplacePartition swaps the order's ledger partition of the given
	// movement type for the provided records, keeping their slice order.
	ReplacePartition(ctx context.Context, orderID uuid.UUID, movementType enums.MovementType, records []models.VehicleRecord) error
	// TouchOrder bumps the owning aggregate's version after a ledger write.
	TouchOrder(ctx context.Context, orderID uuid.UUID) error
}
