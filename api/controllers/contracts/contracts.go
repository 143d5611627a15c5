package contracts

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ordercontrollers "github.com/chemtrade/chemtrade-backend/api/controllers/orders"
	"github.com/chemtrade/chemtrade-backend/api/middleware"
	"github.com/chemtrade/chemtrade-backend/api/responses"
	"github.com/chemtrade/chemtrade-backend/api/validators"
	internalcontracts "github.com/chemtrade/chemtrade-backend/internal/contracts"
	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	pkgerrors "github.com/chemtrade/chemtrade-backend/pkg/errors"
	"github.com/chemtrade/chemtrade-backend/pkg/logger"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

type createRequest struct {
	Code          string          `json:"code" validate:"required"`
	CustomerName  string          `json:"customer_name" validate:"required"`
	ProductName   string          `json:"product_name" validate:"required"`
	Spec          string          `json:"spec,omitempty"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	ShipStart     *time.Time      `json:"ship_start,omitempty"`
	ShipEnd       *time.Time      `json:"ship_end,omitempty"`
}

// Create registers a framework agreement.
func Create(svc internalcontracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contracts service unavailable"))
			return
		}

		var req createRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contract, err := svc.Create(r.Context(), internalcontracts.CreateContractInput{
			Code:          validators.SanitizeString(req.Code, 64),
			CustomerName:  validators.SanitizeString(req.CustomerName, 128),
			ProductName:   validators.SanitizeString(req.ProductName, 128),
			Spec:          validators.SanitizeString(req.Spec, 64),
			TotalQuantity: req.TotalQuantity,
			UnitPrice:     req.UnitPrice,
			ShipStart:     req.ShipStart,
			ShipEnd:       req.ShipEnd,
			Actor:         middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toView(contract))
	}
}

// Detail returns one contract.
func Detail(svc internalcontracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contracts service unavailable"))
			return
		}

		contractID, err := parseContractID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contract, err := svc.Get(r.Context(), contractID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toView(contract))
	}
}

// List returns a cursor page of contracts filtered by status and free text.
func List(svc internalcontracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contracts service unavailable"))
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

		filters := internalcontracts.ContractFilters{
			Query: validators.SanitizeString(r.URL.Query().Get("q"), 128),
		}
		for _, raw := range strings.Split(r.URL.Query().Get("status"), ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			status, err := enums.ParseContractStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Statuses = append(filters.Statuses, status)
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type updateRequest struct {
	CustomerName  *string          `json:"customer_name,omitempty"`
	ProductName   *string          `json:"product_name,omitempty"`
	Spec          *string          `json:"spec,omitempty"`
	TotalQuantity *decimal.Decimal `json:"total_quantity,omitempty"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	ShipStart     *time.Time       `json:"ship_start,omitempty"`
	ShipEnd       *time.Time       `json:"ship_end,omitempty"`
}

// Update edits an active contract. Omitted fields stay unchanged.
func Update(svc internalcontracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contracts service unavailable"))
			return
		}

		contractID, err := parseContractID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contract, err := svc.Update(r.Context(), internalcontracts.UpdateContractInput{
			ContractID:    contractID,
			CustomerName:  req.CustomerName,
			ProductName:   req.ProductName,
			Spec:          req.Spec,
			TotalQuantity: req.TotalQuantity,
			UnitPrice:     req.UnitPrice,
			ShipStart:     req.ShipStart,
			ShipEnd:       req.ShipEnd,
			Actor:         middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toView(contract))
	}
}

// Close ends a contract; closed contracts can no longer generate orders.
func Close(svc internalcontracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contracts service unavailable"))
			return
		}

		contractID, err := parseContractID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contract, err := svc.Close(r.Context(), contractID, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toView(contract))
	}
}

type generateOrderRequest struct {
	OrderNumber string          `json:"order_number" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	ShipDate    *time.Time      `json:"ship_date,omitempty"`
}

// GenerateOrder produces one order off a contract, inheriting its terms.
func GenerateOrder(svc internalcontracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contracts service unavailable"))
			return
		}

		contractID, err := parseContractID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req generateOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GenerateOrder(r.Context(), internalcontracts.GenerateOrderInput{
			ContractID:  contractID,
			OrderNumber: validators.SanitizeString(req.OrderNumber, 64),
			Quantity:    req.Quantity,
			ShipDate:    req.ShipDate,
			Actor:       middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ordercontrollers.OrderView(order))
	}
}

func parseContractID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "contractId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "contract id is required")
	}
	contractID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid contract id")
	}
	return contractID, nil
}

type contractView struct {
	ID            uuid.UUID            `json:"id"`
	Code          string               `json:"code"`
	CustomerName  string               `json:"customer_name"`
	ProductName   string               `json:"product_name"`
	Spec          string               `json:"spec,omitempty"`
	TotalQuantity decimal.Decimal      `json:"total_quantity"`
	UnitPrice     decimal.Decimal      `json:"unit_price"`
	ShipStart     *time.Time           `json:"ship_start,omitempty"`
	ShipEnd       *time.Time           `json:"ship_end,omitempty"`
	Status        enums.ContractStatus `json:"status"`
	CreatedBy     string               `json:"created_by"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func toView(contract *models.Contract) *contractView {
	if contract == nil {
		return nil
	}
	return &contractView{
		ID:            contract.ID,
		Code:          contract.Code,
		CustomerName:  contract.CustomerName,
		ProductName:   contract.ProductName,
		Spec:          contract.Spec,
		TotalQuantity: contract.TotalQuantity,
		UnitPrice:     contract.UnitPrice,
		ShipStart:     contract.ShipStart,
		ShipEnd:       contract.ShipEnd,
		Status:        contract.Status,
		CreatedBy:     contract.CreatedBy,
		CreatedAt:     contract.CreatedAt,
		UpdatedAt:     contract.UpdatedAt,
	}
}
