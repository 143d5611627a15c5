package orders

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
	internalorders "github.com/chemtrade/chemtrade-backend/internal/orders"
	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	pkgerrors "github.com/chemtrade/chemtrade-backend/pkg/errors"
	"github.com/chemtrade/chemtrade-backend/pkg/logger"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

// List returns a cursor page of orders filtered by status, free text and
// ship-date window.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := buildFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// PendingAudits returns the audit queue, oldest submissions first handled by
// the service's fixed status filter.
func PendingAudits(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListPendingApprovals(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Detail returns the full order aggregate: header, vehicle ledger and history.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, OrderView(order))
	}
}

type createOrderRequest struct {
	OrderNumber  string          `json:"order_number" validate:"required"`
	ContractID   *uuid.UUID      `json:"contract_id,omitempty"`
	CustomerName string          `json:"customer_name" validate:"required"`
	ProductName  string          `json:"product_name" validate:"required"`
	Spec         string          `json:"spec,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ShipDate     *time.Time      `json:"ship_date,omitempty"`
	SkipAudit    bool            `json:"skip_audit,omitempty"`
}

// Create registers a manually entered order. The audited path starts at
// pending_audit; skip_audit goes straight to unassigned.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateOrder(r.Context(), internalorders.CreateOrderInput{
			OrderNumber:  validators.SanitizeString(req.OrderNumber, 64),
			ContractID:   req.ContractID,
			CustomerName: validators.SanitizeString(req.CustomerName, 128),
			ProductName:  validators.SanitizeString(req.ProductName, 128),
			Spec:         validators.SanitizeString(req.Spec, 64),
			Quantity:     req.Quantity,
			UnitPrice:    req.UnitPrice,
			ShipDate:     req.ShipDate,
			SkipAudit:    req.SkipAudit,
			Actor:        middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, OrderView(order))
	}
}

// Complete is the explicit operator confirmation that closes a delivered order.
func Complete(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.MarkCompleted(r.Context(), internalorders.MarkCompletedInput{
			OrderID: orderID,
			Actor:   middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, OrderView(order))
	}
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

func buildFilters(r *http.Request) (internalorders.OrderFilters, error) {
	filters := internalorders.OrderFilters{
		Query: validators.SanitizeString(r.URL.Query().Get("q"), 128),
	}

	for _, raw := range strings.Split(r.URL.Query().Get("status"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Statuses = append(filters.Statuses, status)
	}

	from, err := parseDateQuery(r, "date_from")
	if err != nil {
		return filters, err
	}
	to, err := parseDateQuery(r, "date_to")
	if err != nil {
		return filters, err
	}
	filters.DateFrom = from
	filters.DateTo = to
	return filters, nil
}

func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts, nil
	}
	ts, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date filter").WithDetails(map[string]any{"field": key})
	}
	return &ts, nil
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

type vehicleView struct {
	ID              uuid.UUID           `json:"id"`
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
	ReturnReason    *string             `json:"return_reason,omitempty"`
	ExchangeReason  *string             `json:"exchange_reason,omitempty"`
	Seq             int                 `json:"seq"`
}

type historyView struct {
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderDetail struct {
	ID             uuid.UUID         `json:"id"`
	OrderNumber    string            `json:"order_number"`
	ContractID     *uuid.UUID        `json:"contract_id,omitempty"`
	CustomerName   string            `json:"customer_name"`
	ProductName    string            `json:"product_name"`
	Spec           string            `json:"spec,omitempty"`
	Quantity       decimal.Decimal   `json:"quantity"`
	UnitPrice      decimal.Decimal   `json:"unit_price"`
	ShipDate       *time.Time        `json:"ship_date,omitempty"`
	Status         enums.OrderStatus `json:"status"`
	ReturnReason   *string           `json:"return_reason,omitempty"`
	ExchangeReason *string           `json:"exchange_reason,omitempty"`
	Version        int64             `json:"version"`
	Vehicles       []vehicleView     `json:"vehicles"`
	History        []historyView     `json:"history"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// OrderView maps an order aggregate to its response shape.
func OrderView(order *models.Order) *OrderDetail {
	if order == nil {
		return nil
	}
	detail := &OrderDetail{
		ID:             order.ID,
		OrderNumber:    order.OrderNumber,
		ContractID:     order.ContractID,
		CustomerName:   order.CustomerName,
		ProductName:    order.ProductName,
		Spec:           order.Spec,
		Quantity:       order.Quantity,
		UnitPrice:      order.UnitPrice,
		ShipDate:       order.ShipDate,
		Status:         order.Status,
		ReturnReason:   order.ReturnReason,
		ExchangeReason: order.ExchangeReason,
		Version:        order.Version,
		Vehicles:       make([]vehicleView, 0, len(order.Vehicles)),
		History:        make([]historyView, 0, len(order.History)),
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
	for _, record := range order.Vehicles {
		detail.Vehicles = append(detail.Vehicles, vehicleView{
			ID:              record.ID,
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
			ReturnReason:    record.ReturnReason,
			ExchangeReason:  record.ExchangeReason,
			Seq:             record.Seq,
		})
	}
	for _, entry := range order.History {
		detail.History = append(detail.History, historyView{
			Action:    entry.Action,
			Actor:     entry.Actor,
			CreatedAt: entry.CreatedAt,
		})
	}
	return detail
}
