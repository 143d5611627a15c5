package vehicles

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/internal/orders"
	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	pkgerrors "github.com/chemtrade/chemtrade-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records the five-checkpoint physical journey of a vehicle and
// guards edits against records that have already entered site.
type Service interface {
	Get(ctx context.Context, vehicleID uuid.UUID) (*models.VehicleRecord, error)
	RecordEntry(ctx context.Context, input CheckpointInput) (*models.VehicleRecord, error)
	RecordWeighing(ctx context.Context, input WeighingInput) (*models.VehicleRecord, error)
	RecordExit(ctx context.Context, input CheckpointInput) (*models.VehicleRecord, error)
	Edit(ctx context.Context, input EditInput) (*models.VehicleRecord, error)
	Delete(ctx context.Context, input DeleteInput) error
}

type service struct {
	repo     Repository
	tx       txRunner
	orderSvc orders.StatusApplier
}

// NewService builds a vehicle checkpoint service with the required dependencies.
func NewService(repo Repository, tx txRunner, orderSvc orders.StatusApplier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vehicles repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if orderSvc == nil {
		return nil, fmt.Errorf("order status applier required")
	}
	return &service{repo: repo, tx: tx, orderSvc: orderSvc}, nil
}

func (s *service) Get(ctx context.Context, vehicleID uuid.UUID) (*models.VehicleRecord, error) {
	if vehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	record, err := s.repo.FindVehicle(ctx, vehicleID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle record")
	}
	return record, nil
}

func (s *service) RecordEntry(ctx context.Context, input CheckpointInput) (*models.VehicleRecord, error) {
	if err := validateCheckpoint(input); err != nil {
		return nil, err
	}

	var result *models.VehicleRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := loadVehicle(ctx, repo, input.VehicleID)
		if err != nil {
			return err
		}
		if record.Status != enums.VehicleStatusPendingEntry {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "vehicle has already entered site")
		}

		at := input.At
		updates := map[string]any{
			"entry_time": at,
			"status":     enums.VehicleStatusEntered,
		}
		if err := repo.UpdateVehicle(ctx, record.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record entry")
		}
		if err := repo.TouchOrder(ctx, record.OrderID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch order")
		}

		record.EntryTime = &at
		record.Status = enums.VehicleStatusEntered
		result = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) RecordWeighing(ctx context.Context, input WeighingInput) (*models.VehicleRecord, error) {
	if input.VehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	if input.At.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "weighing time required")
	}
	if !input.Weight.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "weighing weight must be positive")
	}

	var result *models.VehicleRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := loadVehicle(ctx, repo, input.VehicleID)
		if err != nil {
			return err
		}

		switch record.Status {
		case enums.VehicleStatusEntered:
			return s.firstWeighing(ctx, tx, repo, record, input, &result)
		case enums.VehicleStatusLoading, enums.VehicleStatusUnloading:
			return s.secondWeighing(ctx, repo, record, input, &result)
		case enums.VehicleStatusPendingEntry:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "vehicle has not entered site")
		default:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "vehicle has already exited")
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) firstWeighing(ctx context.Context, tx *gorm.DB, repo Repository, record *models.VehicleRecord, input WeighingInput, result **models.VehicleRecord) error {
	if record.EntryTime != nil && input.At.Before(*record.EntryTime) {
		return pkgerrors.New(pkgerrors.CodeValidation, "weighing cannot precede site entry")
	}

	// First weighing marks on-site processing started: outbound trucks move
	// to the loading bay, inbound trucks to unloading.
	next := enums.VehicleStatusLoading
	if record.MovementType.Inbound() {
		next = enums.VehicleStatusUnloading
	}

	at := input.At
	weight := input.Weight
	updates := map[string]any{
		"weighing1_time":   at,
		"weighing1_weight": weight,
		"status":           next,
	}
	if err := repo.UpdateVehicle(ctx, record.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record first weighing")
	}
	if err := repo.TouchOrder(ctx, record.OrderID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch order")
	}

	if record.MovementType == enums.MovementTypeNormal {
		_, err := s.orderSvc.ApplyStatusEvent(ctx, tx, record.OrderID, orders.EventVehicleProgressed, "车辆过磅，开始发运", input.Actor)
		if err != nil {
			return err
		}
	}

	record.Weighing1Time = &at
	record.Weighing1Weight = &weight
	record.Status = next
	*result = record
	return nil
}

func (s *service) secondWeighing(ctx context.Context, repo Repository, record *models.VehicleRecord, input WeighingInput, result **models.VehicleRecord) error {
	if record.Weighing2Time != nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "vehicle already weighed twice")
	}
	if record.Weighing1Time != nil && input.At.Before(*record.Weighing1Time) {
		return pkgerrors.New(pkgerrors.CodeValidation, "second weighing cannot precede the first")
	}

	at := input.At
	weight := input.Weight
	actual := weight.Sub(*record.Weighing1Weight).Abs()
	updates := map[string]any{
		"weighing2_time":    at,
		"weighing2_weight":  weight,
		"actual_out_weight": actual,
	}
	if err := repo.UpdateVehicle(ctx, record.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record second weighing")
	}
	if err := repo.TouchOrder(ctx, record.OrderID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch order")
	}

	record.Weighing2Time = &at
	record.Weighing2Weight = &weight
	record.ActualOutWeight = &actual
	*result = record
	return nil
}

func (s *service) RecordExit(ctx context.Context, input CheckpointInput) (*models.VehicleRecord, error) {
	if err := validateCheckpoint(input); err != nil {
		return nil, err
	}

	var result *models.VehicleRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := loadVehicle(ctx, repo, input.VehicleID)
		if err != nil {
			return err
		}

		switch record.Status {
		case enums.VehicleStatusLoading, enums.VehicleStatusUnloading:
			// progresses below
		case enums.VehicleStatusExited:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "vehicle has already exited")
		default:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "vehicle has not been weighed on site")
		}
		if record.Weighing2Time == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "second weighing missing before exit")
		}
		if record.EntryTime != nil && input.At.Before(*record.EntryTime) {
			return pkgerrors.New(pkgerrors.CodeValidation, "exit cannot precede site entry")
		}

		at := input.At
		updates := map[string]any{
			"exit_time": at,
			"status":    enums.VehicleStatusExited,
		}
		if err := repo.UpdateVehicle(ctx, record.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record exit")
		}
		if err := repo.TouchOrder(ctx, record.OrderID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch order")
		}

		record.ExitTime = &at
		record.Status = enums.VehicleStatusExited

		if record.MovementType.Inbound() {
			if err := s.maybeFinishInbound(ctx, tx, repo, record, input.Actor); err != nil {
				return err
			}
		}

		result = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// maybeFinishInbound closes the return/exchange side-channel once the last
// inbound vehicle of the partition has left site.
func (s *service) maybeFinishInbound(ctx context.Context, tx *gorm.DB, repo Repository, record *models.VehicleRecord, actor string) error {
	siblings, err := repo.ListByOrderAndType(ctx, record.OrderID, record.MovementType)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list partition")
	}
	for _, sibling := range siblings {
		if sibling.ID == record.ID {
			continue
		}
		if sibling.Status != enums.VehicleStatusExited {
			return nil
		}
	}

	event := orders.EventReturnCompleted
	action := "退货车辆全部离场，退货完成"
	if record.MovementType == enums.MovementTypeExchange {
		event = orders.EventExchangeCompleted
		action = "换货车辆全部离场，换货完成"
	}
	_, err = s.orderSvc.ApplyStatusEvent(ctx, tx, record.OrderID, event, action, actor)
	return err
}

func (s *service) Edit(ctx context.Context, input EditInput) (*models.VehicleRecord, error) {
	if input.VehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	if input.Plate == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plate required")
	}
	if input.DriverName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "driver name required")
	}
	if !input.PlannedWeight.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "planned weight must be positive")
	}

	var result *models.VehicleRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := loadVehicle(ctx, repo, input.VehicleID)
		if err != nil {
			return err
		}
		if record.Status != enums.VehicleStatusPendingEntry {
			return pkgerrors.New(pkgerrors.CodeVehicleLocked, "vehicle already on site, record is locked")
		}

		weight := input.PlannedWeight
		updates := map[string]any{
			"plate":        input.Plate,
			"driver_name":  input.DriverName,
			"driver_phone": input.DriverPhone,
		}
		if record.MovementType.Inbound() {
			updates["return_weight"] = weight
		} else {
			updates["load_weight"] = weight
		}
		if err := repo.UpdateVehicle(ctx, record.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vehicle record")
		}
		if err := repo.TouchOrder(ctx, record.OrderID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch order")
		}

		record.Plate = input.Plate
		record.DriverName = input.DriverName
		record.DriverPhone = input.DriverPhone
		if record.MovementType.Inbound() {
			record.ReturnWeight = &weight
		} else {
			record.LoadWeight = &weight
		}
		result = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Delete(ctx context.Context, input DeleteInput) error {
	if input.VehicleID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := loadVehicle(ctx, repo, input.VehicleID)
		if err != nil {
			return err
		}
		if record.Status != enums.VehicleStatusPendingEntry {
			return pkgerrors.New(pkgerrors.CodeVehicleLocked, "vehicle already on site, record is locked")
		}
		if err := repo.DeleteVehicle(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete vehicle record")
		}
		if err := repo.TouchOrder(ctx, record.OrderID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch order")
		}
		return nil
	})
}

func loadVehicle(ctx context.Context, repo Repository, vehicleID uuid.UUID) (*models.VehicleRecord, error) {
	record, err := repo.FindVehicle(ctx, vehicleID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle record")
	}
	return record, nil
}

func validateCheckpoint(input CheckpointInput) error {
	if input.VehicleID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	if input.At.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkpoint time required")
	}
	return nil
}
