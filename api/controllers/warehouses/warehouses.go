package warehouses

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
	internalwarehouses "github.com/chemtrade/chemtrade-backend/internal/warehouses"
	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	pkgerrors "github.com/chemtrade/chemtrade-backend/pkg/errors"
	"github.com/chemtrade/chemtrade-backend/pkg/logger"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

type createZone struct {
	Code string `json:"code" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type createRequest struct {
	Code    string       `json:"code" validate:"required"`
	Name    string       `json:"name" validate:"required"`
	Address string       `json:"address,omitempty"`
	Manager string       `json:"manager,omitempty"`
	Zones   []createZone `json:"zones,omitempty" validate:"dive"`
}

// Create registers a warehouse together with its storage zones.
func Create(svc internalwarehouses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouses service unavailable"))
			return
		}

		var req createRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalwarehouses.CreateWarehouseInput{
			Code:    validators.SanitizeString(req.Code, 32),
			Name:    validators.SanitizeString(req.Name, 128),
			Address: validators.SanitizeString(req.Address, 256),
			Manager: validators.SanitizeString(req.Manager, 64),
			Actor:   middleware.ActorFromContext(r.Context()),
		}
		for _, zone := range req.Zones {
			input.Zones = append(input.Zones, internalwarehouses.CreateZoneInput{
				Code: validators.SanitizeString(zone.Code, 32),
				Name: validators.SanitizeString(zone.Name, 128),
			})
		}

		warehouse, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toView(warehouse))
	}
}

// Detail returns one warehouse with zones and lots preloaded.
func Detail(svc internalwarehouses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouses service unavailable"))
			return
		}

		warehouseID, err := parseWarehouseID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warehouse, err := svc.Get(r.Context(), warehouseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toView(warehouse))
	}
}

// List returns a cursor page of warehouses.
func List(svc internalwarehouses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouses service unavailable"))
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
		filters := internalwarehouses.WarehouseFilters{
			Query: validators.SanitizeString(r.URL.Query().Get("q"), 128),
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Stock aggregates lot quantities for one product across all warehouses.
func Stock(svc internalwarehouses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warehouses service unavailable"))
			return
		}

		productName := validators.SanitizeString(r.URL.Query().Get("product"), 128)
		spec := validators.SanitizeString(r.URL.Query().Get("spec"), 64)

		stock, err := svc.StockByProduct(r.Context(), productName, spec)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stock)
	}
}

func parseWarehouseID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "warehouseId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse id is required")
	}
	warehouseID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid warehouse id")
	}
	return warehouseID, nil
}

type lotView struct {
	ID          uuid.UUID       `json:"id"`
	LotNumber   string          `json:"lot_number"`
	ProductName string          `json:"product_name"`
	Spec        string          `json:"spec,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
}

type zoneView struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
	Name string    `json:"name"`
	Lots []lotView `json:"lots"`
}

type warehouseView struct {
	ID        uuid.UUID  `json:"id"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Address   string     `json:"address,omitempty"`
	Manager   string     `json:"manager,omitempty"`
	Zones     []zoneView `json:"zones"`
	CreatedAt time.Time  `json:"created_at"`
}

func toView(warehouse *models.Warehouse) *warehouseView {
	if warehouse == nil {
		return nil
	}
	view := &warehouseView{
		ID:        warehouse.ID,
		Code:      warehouse.Code,
		Name:      warehouse.Name,
		Address:   warehouse.Address,
		Manager:   warehouse.Manager,
		Zones:     make([]zoneView, 0, len(warehouse.Zones)),
		CreatedAt: warehouse.CreatedAt,
	}
	for _, zone := range warehouse.Zones {
		zv := zoneView{
			ID:   zone.ID,
			Code: zone.Code,
			Name: zone.Name,
			Lots: make([]lotView, 0, len(zone.Lots)),
		}
		for _, lot := range zone.Lots {
			zv.Lots = append(zv.Lots, lotView{
				ID:          lot.ID,
				LotNumber:   lot.LotNumber,
				ProductName: lot.ProductName,
				Spec:        lot.Spec,
				Quantity:    lot.Quantity,
			})
		}
		view.Zones = append(view.Zones, zv)
	}
	return view
}
