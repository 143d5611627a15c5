package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chemtrade/chemtrade-backend/api/controllers"
	approvalcontrollers "github.com/chemtrade/chemtrade-backend/api/controllers/approvals"
	contractcontrollers "github.com/chemtrade/chemtrade-backend/api/controllers/contracts"
	dispatchcontrollers "github.com/chemtrade/chemtrade-backend/api/controllers/dispatch"
	ordercontrollers "github.com/chemtrade/chemtrade-backend/api/controllers/orders"
	pricelistcontrollers "github.com/chemtrade/chemtrade-backend/api/controllers/pricelists"
	vehiclecontrollers "github.com/chemtrade/chemtrade-backend/api/controllers/vehicles"
	warehousecontrollers "github.com/chemtrade/chemtrade-backend/api/controllers/warehouses"
	"github.com/chemtrade/chemtrade-backend/api/middleware"
	"github.com/chemtrade/chemtrade-backend/internal/approvals"
	"github.com/chemtrade/chemtrade-backend/internal/contracts"
	"github.com/chemtrade/chemtrade-backend/internal/dispatch"
	"github.com/chemtrade/chemtrade-backend/internal/orders"
	"github.com/chemtrade/chemtrade-backend/internal/pricelists"
	"github.com/chemtrade/chemtrade-backend/internal/vehicles"
	"github.com/chemtrade/chemtrade-backend/internal/warehouses"
	"github.com/chemtrade/chemtrade-backend/pkg/config"
	"github.com/chemtrade/chemtrade-backend/pkg/db"
	"github.com/chemtrade/chemtrade-backend/pkg/logger"
	"github.com/chemtrade/chemtrade-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	ordersSvc orders.Service,
	vehiclesSvc vehicles.Service,
	dispatchSvc dispatch.Service,
	approvalsSvc approvals.Service,
	contractsSvc contracts.Service,
	pricelistsSvc pricelists.Service,
	warehousesSvc warehouses.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Actor(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg, cfg.Idempotency.TTL))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(ordersSvc, logg))
			r.Post("/", ordercontrollers.Create(ordersSvc, logg))
			r.Get("/pending-audit", ordercontrollers.PendingAudits(ordersSvc, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(ordersSvc, logg))
			r.Post("/{orderId}/complete", ordercontrollers.Complete(ordersSvc, logg))
		})

		r.Route("/dispatch/{orderId}", func(r chi.Router) {
			r.Get("/drafts", dispatchcontrollers.OpenDrafts(dispatchSvc, logg))
			r.Post("/reconcile", dispatchcontrollers.Reconcile(dispatchSvc, logg))
		})

		r.Route("/vehicles/{vehicleId}", func(r chi.Router) {
			r.Get("/", vehiclecontrollers.Detail(vehiclesSvc, logg))
			r.Post("/entry", vehiclecontrollers.Entry(vehiclesSvc, logg))
			r.Post("/weighing", vehiclecontrollers.Weighing(vehiclesSvc, logg))
			r.Post("/exit", vehiclecontrollers.Exit(vehiclesSvc, logg))
			r.Patch("/", vehiclecontrollers.Edit(vehiclesSvc, logg))
			r.Delete("/", vehiclecontrollers.Delete(vehiclesSvc, logg))
		})

		r.Route("/approvals", func(r chi.Router) {
			r.Post("/", approvalcontrollers.Submit(approvalsSvc, logg))
			r.Get("/pending", approvalcontrollers.ListPending(approvalsSvc, logg))
			r.Get("/history", approvalcontrollers.ListHistory(approvalsSvc, logg))
			r.Get("/{requestId}", approvalcontrollers.Detail(approvalsSvc, logg))
			r.Post("/{requestId}/resolve", approvalcontrollers.Resolve(approvalsSvc, logg))
		})

		r.Route("/contracts", func(r chi.Router) {
			r.Get("/", contractcontrollers.List(contractsSvc, logg))
			r.Post("/", contractcontrollers.Create(contractsSvc, logg))
			r.Get("/{contractId}", contractcontrollers.Detail(contractsSvc, logg))
			r.Patch("/{contractId}", contractcontrollers.Update(contractsSvc, logg))
			r.Post("/{contractId}/close", contractcontrollers.Close(contractsSvc, logg))
			r.Post("/{contractId}/orders", contractcontrollers.GenerateOrder(contractsSvc, logg))
		})

		r.Route("/price-lists", func(r chi.Router) {
			r.Get("/", pricelistcontrollers.List(pricelistsSvc, logg))
			r.Post("/changes", pricelistcontrollers.SubmitChange(pricelistsSvc, logg))
		})

		r.Route("/warehouses", func(r chi.Router) {
			r.Get("/", warehousecontrollers.List(warehousesSvc, logg))
			r.Post("/", warehousecontrollers.Create(warehousesSvc, logg))
			r.Get("/stock", warehousecontrollers.Stock(warehousesSvc, logg))
			r.Get("/{warehouseId}", warehousecontrollers.Detail(warehousesSvc, logg))
		})
	})

	return r
}
