package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/chemtrade/chemtrade-backend/api/middleware"
	internalorders "github.com/chemtrade/chemtrade-backend/internal/orders"
	"github.com/chemtrade/chemtrade-backend/pkg/db/models"
	"github.com/chemtrade/chemtrade-backend/pkg/enums"
	pkgerrors "github.com/chemtrade/chemtrade-backend/pkg/errors"
	"github.com/chemtrade/chemtrade-backend/pkg/pagination"
)

type stubControllerOrdersService struct {
	create    func(ctx context.Context, input internalorders.CreateOrderInput) (*models.Order, error)
	get       func(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	list      func(ctx context.Context, params pagination.Params, filters internalorders.OrderFilters) (*internalorders.OrderList, error)
	pending   func(ctx context.Context, params pagination.Params) (*internalorders.OrderList, error)
	completed func(ctx context.Context, input internalorders.MarkCompletedInput) (*models.Order, error)
}

func (s *stubControllerOrdersService) CreateOrder(ctx context.Context, input internalorders.CreateOrderInput) (*models.Order, error) {
	if s.create != nil {
		return s.create(ctx, input)
	}
	return nil, nil
}

func (s *stubControllerOrdersService) CreateOrderFromContract(ctx context.Context, input internalorders.GenerateFromContractInput) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubControllerOrdersService) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.get != nil {
		return s.get(ctx, orderID)
	}
	return nil, nil
}

func (s *stubControllerOrdersService) List(ctx context.Context, params pagination.Params, filters internalorders.OrderFilters) (*internalorders.OrderList, error) {
	if s.list != nil {
		return s.list(ctx, params, filters)
	}
	return &internalorders.OrderList{}, nil
}

func (s *stubControllerOrdersService) ListPendingApprovals(ctx context.Context, params pagination.Params) (*internalorders.OrderList, error) {
	if s.pending != nil {
		return s.pending(ctx, params)
	}
	return &internalorders.OrderList{}, nil
}

func (s *stubControllerOrdersService) MarkCompleted(ctx context.Context, input internalorders.MarkCompletedInput) (*models.Order, error) {
	if s.completed != nil {
		return s.completed(ctx, input)
	}
	return nil, nil
}

func (s *stubControllerOrdersService) ApplyStatusEvent(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, event internalorders.StatusEvent, action, actor string) (enums.OrderStatus, error) {
	panic("not implemented")
}

func (s *stubControllerOrdersService) UpdatePrice(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, newPrice decimal.Decimal, actor string) error {
	panic("not implemented")
}

func routedRequest(method, url, param, value string, body string) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if param != "" {
		ctx := chi.NewRouteContext()
		ctx.URLParams.Add(param, value)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
	}
	return req
}

func TestListParsesFilters(t *testing.T) {
	svc := &stubControllerOrdersService{
		list: func(ctx context.Context, params pagination.Params, filters internalorders.OrderFilters) (*internalorders.OrderList, error) {
			if params.Limit != 10 {
				t.Fatalf("unexpected limit %d", params.Limit)
			}
			if filters.Query != "硫酸" {
				t.Fatalf("unexpected query %q", filters.Query)
			}
			if len(filters.Statuses) != 2 ||
				filters.Statuses[0] != enums.OrderStatusShipping ||
				filters.Statuses[1] != enums.OrderStatusCompleted {
				t.Fatalf("unexpected statuses %v", filters.Statuses)
			}
			if filters.DateFrom == nil || filters.DateFrom.Format("2006-01-02") != "2026-08-01" {
				t.Fatalf("unexpected date_from %v", filters.DateFrom)
			}
			return &internalorders.OrderList{
				Orders: []internalorders.OrderSummary{{OrderNumber: "ORD-20260801-0003"}},
			}, nil
		},
	}

	handler := List(svc, nil)
	req := routedRequest(http.MethodGet, "/api/v1/orders?limit=10&q=硫酸&status=shipping,completed&date_from=2026-08-01", "", "", "")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data internalorders.OrderList `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Orders) != 1 || envelope.Data.Orders[0].OrderNumber != "ORD-20260801-0003" {
		t.Fatalf("unexpected orders in response")
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	handler := List(&stubControllerOrdersService{}, nil)
	req := routedRequest(http.MethodGet, "/api/v1/orders?status=almost_done", "", "", "")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestDetailSuccess(t *testing.T) {
	orderID := uuid.New()
	now := time.Now()
	svc := &stubControllerOrdersService{
		get: func(ctx context.Context, incoming uuid.UUID) (*models.Order, error) {
			if incoming != orderID {
				t.Fatalf("unexpected order id %s", incoming)
			}
			return &models.Order{
				ID:           orderID,
				OrderNumber:  "ORD-20260901-0001",
				CustomerName: "宏达化工",
				ProductName:  "液碱",
				Quantity:     decimal.NewFromInt(32),
				Status:       enums.OrderStatusShipping,
				Version:      3,
				Vehicles: []models.VehicleRecord{
					{ID: uuid.New(), Plate: "皖A12345", DriverName: "王强", MovementType: enums.MovementTypeNormal, Status: enums.VehicleStatusExited},
				},
				History: []models.OrderHistoryEntry{
					{Action: "创建订单", Actor: "张伟", CreatedAt: now},
				},
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		},
	}

	handler := Detail(svc, nil)
	req := routedRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), "orderId", orderID.String(), "")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data OrderDetail `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderNumber != "ORD-20260901-0001" {
		t.Fatalf("unexpected order number %q", envelope.Data.OrderNumber)
	}
	if len(envelope.Data.Vehicles) != 1 || envelope.Data.Vehicles[0].Plate != "皖A12345" {
		t.Fatalf("vehicle ledger missing from detail")
	}
	if len(envelope.Data.History) != 1 || envelope.Data.History[0].Actor != "张伟" {
		t.Fatalf("history missing from detail")
	}
}

func TestDetailInvalidID(t *testing.T) {
	handler := Detail(&stubControllerOrdersService{}, nil)
	req := routedRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", "orderId", "not-a-uuid", "")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCreateThreadsActor(t *testing.T) {
	orderID := uuid.New()
	called := false
	svc := &stubControllerOrdersService{
		create: func(ctx context.Context, input internalorders.CreateOrderInput) (*models.Order, error) {
			if input.OrderNumber != "ORD-20260901-0007" {
				t.Fatalf("unexpected order number %q", input.OrderNumber)
			}
			if input.Actor != "李娜" {
				t.Fatalf("actor not threaded from context, got %q", input.Actor)
			}
			if !input.Quantity.Equal(decimal.NewFromInt(25)) {
				t.Fatalf("unexpected quantity %s", input.Quantity)
			}
			called = true
			return &models.Order{ID: orderID, OrderNumber: input.OrderNumber, Status: enums.OrderStatusPendingAudit}, nil
		},
	}

	handler := Create(svc, nil)
	body := `{"order_number":"ORD-20260901-0007","customer_name":"宏达化工","product_name":"液碱","quantity":"25","unit_price":"820"}`
	req := routedRequest(http.MethodPost, "/api/v1/orders", "", "", body)
	req = req.WithContext(middleware.WithActor(req.Context(), "李娜"))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatalf("service not invoked")
	}
}

func TestCreateMissingFields(t *testing.T) {
	handler := Create(&stubControllerOrdersService{}, nil)
	req := routedRequest(http.MethodPost, "/api/v1/orders", "", "", `{"customer_name":"宏达化工"}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCompleteSurfacesGuardError(t *testing.T) {
	orderID := uuid.New()
	svc := &stubControllerOrdersService{
		completed: func(ctx context.Context, input internalorders.MarkCompletedInput) (*models.Order, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not shipping")
		},
	}

	handler := Complete(svc, nil)
	req := routedRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/complete", "orderId", orderID.String(), "")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict code got %s", envelope.Error.Code)
	}
	if envelope.Error.Message != "order is not shipping" {
		t.Fatalf("expected pass-through message got %q", envelope.Error.Message)
	}
}
