package vehicles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a vehicle ledger repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindVehicle(ctx context.Context, vehicleID uuid.UUID) (*models.VehicleRecord, error) {
	var record models.VehicleRecord
	err := r.db.WithContext(ctx).
		Where("id = ?", vehicleID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) ListByOrderAndType(ctx context.Context, orderID uuid.UUID, movementType enums.MovementType) ([]models.VehicleRecord, error) {
	var records []models.VehicleRecord
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND movement_type = ?", orderID, movementType).
		Order("seq ASC, created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) UpdateVehicle(ctx context.Context, vehicleID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.VehicleRecord{}).
		Where("id = ?", vehicleID).
		Updates(updates).Error
}

func (r *repository) DeleteVehicle(ctx context.Context, vehicleID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", vehicleID).
		Delete(&models.VehicleRecord{}).Error
}

func (r *repository) ReplacePartition(ctx context.Context, orderID uuid.UUID, movementType enums.MovementType, records []models.VehicleRecord) error {
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND movement_type = ?", orderID, movementType).
		Delete(&models.VehicleRecord{}).Error
	if err != nil {
		return err
	}

	for i := range records {
		records[i].OrderID = orderID
		records[i].MovementType = movementType
		records[i].Seq = i
		if records[i].ID == uuid.Nil {
			records[i].ID = uuid.New()
		}
	}
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&records).Error
}

func (r *repository) TouchOrder(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE orders
		SET version = version + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, orderID).Error
}
