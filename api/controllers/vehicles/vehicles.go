package vehicles

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chemtrade/chemtrade-backend/api/middleware"
	"github.com/chemtrade/chemtrade-backend/api/responses"
	"github.com/chemtrade/chemtrade-backend/api/validators"
	internalvehicles "github.com/chemtrade/chemtrade-backend/internal/vehicles"
	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	pkgerrors "github.com/chemtrade/chemtrade-backend/pkg/errors"
	"github.com/chemtrade/chemtrade-backend/pkg/logger"
)

// Detail returns one vehicle record with its full checkpoint trail.
func Detail(svc internalvehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicles service unavailable"))
			return
		}

		vehicleID, err := parseVehicleID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Get(r.Context(), vehicleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toView(record))
	}
}

type checkpointRequest struct {
	At *time.Time `json:"at,omitempty"`
}

// Entry stamps the gate-in checkpoint. A missing timestamp defaults to now.
func Entry(svc internalvehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicles service unavailable"))
			return
		}

		vehicleID, err := parseVehicleID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := checkpointInput(r, vehicleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.RecordEntry(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toView(record))
	}
}

type weighingRequest struct {
	At     *time.Time      `json:"at,omitempty"`
	Weight decimal.Decimal `json:"weight"`
}

// Weighing records a weighbridge pass. The service decides whether it is the
// first or second pass from the record's current checkpoint state.
func Weighing(svc internalvehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicles service unavailable"))
			return
		}

		vehicleID, err := parseVehicleID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req weighingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		at := time.Now()
		if req.At != nil {
			at = *req.At
		}

		record, err := svc.RecordWeighing(r.Context(), internalvehicles.WeighingInput{
			VehicleID: vehicleID,
			At:        at,
			Weight:    req.Weight,
			Actor:     middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toView(record))
	}
}

// Exit stamps the gate-out checkpoint and lets the service fold finished
// partitions back into the order status.
func Exit(svc internalvehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicles service unavailable"))
			return
		}

		vehicleID, err := parseVehicleID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := checkpointInput(r, vehicleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.RecordExit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toView(record))
	}
}

type editRequest struct {
	Plate         string          `json:"plate" validate:"required"`
	DriverName    string          `json:"driver_name" validate:"required"`
	DriverPhone   string          `json:"driver_phone,omitempty"`
	PlannedWeight decimal.Decimal `json:"planned_weight"`
}

// Edit changes the planned fields of a vehicle that has not entered yet.
func Edit(svc internalvehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicles service unavailable"))
			return
		}

		vehicleID, err := parseVehicleID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req editRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Edit(r.Context(), internalvehicles.EditInput{
			VehicleID:     vehicleID,
			Plate:         validators.SanitizeString(req.Plate, 32),
			DriverName:    validators.SanitizeString(req.DriverName, 64),
			DriverPhone:   validators.SanitizeString(req.DriverPhone, 32),
			PlannedWeight: req.PlannedWeight,
			Actor:         middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toView(record))
	}
}

// Delete removes a not-yet-entered vehicle from the ledger.
func Delete(svc internalvehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicles service unavailable"))
			return
		}

		vehicleID, err := parseVehicleID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), internalvehicles.DeleteInput{
			VehicleID: vehicleID,
			Actor:     middleware.ActorFromContext(r.Context()),
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

func checkpointInput(r *http.Request, vehicleID uuid.UUID) (internalvehicles.CheckpointInput, error) {
	input := internalvehicles.CheckpointInput{
		VehicleID: vehicleID,
		At:        time.Now(),
		Actor:     middleware.ActorFromContext(r.Context()),
	}
	if r.Body == nil || r.ContentLength == 0 {
		return input, nil
	}
	var req checkpointRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		return input, err
	}
	if req.At != nil {
		input.At = *req.At
	}
	return input, nil
}

func parseVehicleID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "vehicleId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id is required")
	}
	vehicleID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle id")
	}
	return vehicleID, nil
}

type recordView struct {
	ID              uuid.UUID           `json:"id"`
	OrderID         uuid.UUID           `json:"order_id"`
	Plate           string              `json:"plate"`
	DriverName      string              `json:"driver_name"`
	DriverPhone     string              `json:"driver_phone,omitempty"`
	MovementType    enums.MovementType  `json:"movement_type"`
	Status          enums.VehicleStatus `json:"status"`
	LoadWeight      *decimal.Decimal    `json:"load_weight,omitempty"`
	ReturnWeight    *decimal.Decimal    `json:"return_weight,omitempty"`
	EntryTime       *time.Time          `json:"entry_time,omitempty"`
	Weighing1Time   *time.Time          `json:"weighing1_time,omitempty"`
	Weighing1Weight *decimal.Decimal    `json:"weighing1_weight,omitempty"`
	Weighing2Time   *time.Time          `json:"weighing2_time,omitempty"`
	Weighing2Weight *decimal.Decimal    `json:"weighing2_weight,omitempty"`
	ExitTime        *time.Time          `json:"exit_time,omitempty"`
	ActualOutWeight *decimal.Decimal    `json:"actual_out_weight,omitempty"`
	Seq             int                 `json:"seq"`
}

func toView(record *models.VehicleRecord) *recordView {
	if record == nil {
		return nil
	}
	return &recordView{
		ID:              record.ID,
		OrderID:         record.OrderID,
		Plate:           record.Plate,
		DriverName:      record.DriverName,
		DriverPhone:     record.DriverPhone,
		MovementType:    record.MovementType,
		Status:          record.Status,
		LoadWeight:      record.LoadWeight,
		ReturnWeight:    record.ReturnWeight,
		EntryTime:       record.EntryTime,
		Weighing1Time:   record.Weighing1Time,
		Weighing1Weight: record.Weighing1Weight,
		Weighing2Time:   record.Weighing2Time,
		Weighing2Weight: record.Weighing2Weight,
		ExitTime:        record.ExitTime,
		ActualOutWeight: record.ActualOutWeight,
		Seq:             record.Seq,
	}
}
