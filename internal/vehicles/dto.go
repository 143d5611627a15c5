package vehicles

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckpointInput records a timestamped gate event against one vehicle.
type CheckpointInput struct {
	VehicleID uuid.UUID
	At        time.Time
	Actor     string
}

// WeighingInput records one weighbridge pass.
type WeighingInput struct {
	VehicleID uuid.UUID
	At        time.Time
	Weight    decimal.Decimal
	Actor     string
}

// EditInput changes the planned fields of a not-yet-entered vehicle.
type EditInput struct {
	VehicleID     uuid.UUID
	Plate         string
	DriverName    string
	DriverPhone   string
	PlannedWeight decimal.Decimal
	Actor         string
}

// DeleteInput removes a not-yet-entered vehicle from the ledger.
type DeleteInput struct {
	VehicleID uuid.UUID
	Actor     string
}
