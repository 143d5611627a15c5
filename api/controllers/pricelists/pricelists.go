package pricelists

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chemtrade/chemtrade-backend/api/middleware"
	"github.com/chemtrade/chemtrade-backend/api/responses"
	"github.com/chemtrade/chemtrade-backend/api/validators"
	internalpricelists "github.com/chemtrade/chemtrade-backend/internal/pricelists"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	pkgerrors "github.com/chemtrade/chemtrade-backend/pkg/errors"
	"github.com/chemtrade/chemtrade-backend/pkg/logger"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

type submitChangeRequest struct {
	Kind         string          `json:"kind" validate:"required"`
	ProductName  string          `json:"product_name" validate:"required"`
	Spec         string          `json:"spec,omitempty"`
	CustomerName string          `json:"customer_name,omitempty"`
	NewPrice     decimal.Decimal `json:"new_price"`
	EffectiveAt  *time.Time      `json:"effective_at,omitempty"`
	Remark       string          `json:"remark" validate:"required"`
}

// SubmitChange proposes a price for one list entry; the change only lands
// once the approval workflow accepts it.
func SubmitChange(svc internalpricelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "price list service unavailable"))
			return
		}

		var req submitChangeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParsePriceListKind(strings.TrimSpace(req.Kind))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price list kind"))
			return
		}

		request, err := svc.SubmitChange(r.Context(), internalpricelists.SubmitChangeInput{
			Kind:         kind,
			ProductName:  validators.SanitizeString(req.ProductName, 128),
			Spec:         validators.SanitizeString(req.Spec, 64),
			CustomerName: validators.SanitizeString(req.CustomerName, 128),
			NewPrice:     req.NewPrice,
			EffectiveAt:  req.EffectiveAt,
			Remark:       validators.SanitizeString(req.Remark, 512),
			Actor:        middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"request_id":   request.ID,
			"subject_type": request.SubjectType,
			"subject_ref":  request.SubjectRef,
			"status":       request.Status,
		})
	}
}

// List returns a cursor page of effective price records.
func List(svc internalpricelists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "price list service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filters := internalpricelists.RecordFilters{
			Query: validators.SanitizeString(r.URL.Query().Get("q"), 128),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("kind")); raw != "" {
			kind, err := enums.ParsePriceListKind(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kind filter"))
				return
			}
			filters.Kind = kind
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
