// Package main provides the API router setup.
package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/despensa-ai/order-engine/cmd/order-engine-api/handlers"
	"github.com/despensa-ai/order-engine/cmd/order-engine-api/middleware"
	"github.com/despensa-ai/order-engine/internal/catalog"
	"github.com/despensa-ai/order-engine/internal/observability"
	"github.com/despensa-ai/order-engine/internal/pipeline"
	"github.com/despensa-ai/order-engine/internal/storage"
)

// AppDeps bundles the services the router exposes.
type AppDeps struct {
	Pipeline  *pipeline.Pipeline
	Provider  *catalog.Provider
	Orders    *storage.OrderRepository
	TicketDir string
}

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, requestTimeout time.Duration, deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestCorrelation)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"order-engine"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ready"}`))
	})

	orderHandler := handlers.NewOrderHandler(logger, deps.Pipeline, deps.Orders)
	ticketHandler := handlers.NewTicketHandler(logger, deps.TicketDir)
	catalogHandler := handlers.NewCatalogHandler(logger, deps.Provider)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orderHandler.Create)
			r.Get("/", orderHandler.List)
			r.Get("/{orderId}", orderHandler.Get)
		})

		r.Route("/tickets", func(r chi.Router) {
			r.Get("/{filename}", ticketHandler.Download)
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/status", catalogHandler.Status)
			r.Post("/refresh", catalogHandler.Refresh)
		})
	})

	return r
}
