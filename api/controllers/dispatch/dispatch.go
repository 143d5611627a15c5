package dispatch

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chemtrade/chemtrade-backend/api/middleware"
	"github.com/chemtrade/chemtrade-backend/api/responses"
	"github.com/chemtrade/chemtrade-backend/api/validators"
	internaldispatch "github.com/chemtrade/chemtrade-backend/internal/dispatch"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	pkgerrors "github.com/chemtrade/chemtrade-backend/pkg/errors"
	"github.com/chemtrade/chemtrade-backend/pkg/logger"
)

type draftView struct {
	ID          uuid.UUID       `json:"id,omitempty"`
	Plate       string          `json:"plate"`
	DriverName  string          `json:"driver_name"`
	DriverPhone string          `json:"driver_phone,omitempty"`
	Weight      decimal.Decimal `json:"weight"`
	Locked      bool            `json:"locked"`
}

type draftsResponse struct {
	OrderID      uuid.UUID          `json:"order_id"`
	MovementType enums.MovementType `json:"movement_type"`
	Version      int64              `json:"version"`
	Drafts       []draftView        `json:"drafts"`
}

// OpenDrafts loads one ledger partition as the console's editable working
// copy, together with the aggregate version the edit session must carry back.
func OpenDrafts(svc internaldispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatch service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		movementType, err := parseMovementType(r.URL.Query().Get("movement_type"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, version, err := svc.OpenDrafts(r.Context(), orderID, movementType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := draftsResponse{
			OrderID:      orderID,
			MovementType: movementType,
			Version:      version,
			Drafts:       make([]draftView, 0, len(list.Items())),
		}
		for _, draft := range list.Items() {
			resp.Drafts = append(resp.Drafts, draftView{
				ID:          draft.ID,
				Plate:       draft.Plate,
				DriverName:  draft.DriverName,
				DriverPhone: draft.DriverPhone,
				Weight:      draft.Weight,
				Locked:      draft.Locked(),
			})
		}
		responses.WriteSuccess(w, resp)
	}
}

type reconcileDraft struct {
	ID          *uuid.UUID      `json:"id,omitempty"`
	Plate       string          `json:"plate" validate:"required"`
	DriverName  string          `json:"driver_name" validate:"required"`
	DriverPhone string          `json:"driver_phone,omitempty"`
	Weight      decimal.Decimal `json:"weight"`
}

type reconcileRequest struct {
	MovementType    string           `json:"movement_type" validate:"required"`
	Drafts          []reconcileDraft `json:"drafts"`
	CommonReason    string           `json:"common_reason,omitempty"`
	ExpectedVersion int64            `json:"expected_version" validate:"min=0"`
}

// Reconcile replaces one ledger partition with the console's edited draft
// list in a single guarded write.
func Reconcile(svc internaldispatch.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatch service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req reconcileRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		movementType, err := parseMovementType(req.MovementType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internaldispatch.ReconcileInput{
			OrderID:         orderID,
			MovementType:    movementType,
			Drafts:          make([]internaldispatch.Draft, 0, len(req.Drafts)),
			CommonReason:    validators.SanitizeString(req.CommonReason, 256),
			ExpectedVersion: req.ExpectedVersion,
			Actor:           middleware.ActorFromContext(r.Context()),
		}
		for _, draft := range req.Drafts {
			item := internaldispatch.Draft{
				Plate:       validators.SanitizeString(draft.Plate, 32),
				DriverName:  validators.SanitizeString(draft.DriverName, 64),
				DriverPhone: validators.SanitizeString(draft.DriverPhone, 32),
				Weight:      draft.Weight,
			}
			if draft.ID != nil {
				item.ID = *draft.ID
			}
			input.Drafts = append(input.Drafts, item)
		}

		order, err := svc.Reconcile(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"order_id": order.ID,
			"status":   order.Status,
			"version":  order.Version,
		})
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}

func parseMovementType(raw string) (enums.MovementType, error) {
	movementType, err := enums.ParseMovementType(strings.TrimSpace(raw))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid movement type")
	}
	return movementType, nil
}
