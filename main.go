package main

//go:generate swag init

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/embeddingminds/sgps/config"
	"github.com/embeddingminds/sgps/db"
	_ "github.com/embeddingminds/sgps/docs"
	"github.com/embeddingminds/sgps/handlers"
	"github.com/embeddingminds/sgps/ledger"
	"github.com/embeddingminds/sgps/metrics"
)

// @title           SGPS API
// @version         1.0.0
// @description     Business administration API: clients, services, client-service subscriptions, and payments applied against subscription balances.
// @BasePath        /api
// @securityDefinitions.basic  BasicAuth

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Configure structured logging
	level := slog.LevelInfo
	if cfg.Server.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx := context.Background()

	// Open database
	pool, err := db.Open(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	if err := db.Migrate(pool); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Wire the ledger and handlers around the injected pool
	ledgerSvc := ledger.New(ledger.NewPGStore(pool), cfg.Payments.DefaultType)
	api := handlers.New(pool, ledgerSvc)

	// Router setup
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.RequestMetrics)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// API routes with basic auth
	r.Route("/api", func(r chi.Router) {
		r.Use(handlers.BasicAuth(cfg.Auth.User, cfg.Auth.Password))

		// Clients
		r.Get("/clients", api.ListClients)
		r.Post("/clients", api.CreateClient)
		r.Get("/clients/search", api.SearchClients)
		r.Get("/clients/{id}", api.GetClient)
		r.Put("/clients/{id}", api.UpdateClient)
		r.Delete("/clients/{id}", api.DeleteClient)

		// Services
		r.Get("/services", api.ListServices)
		r.Post("/services", api.CreateService)
		r.Get("/services/search", api.SearchServices)
		r.Get("/services/filter/price", api.ListServicesByPrice)
		r.Get("/services/{id}", api.GetService)
		r.Put("/services/{id}", api.UpdateService)
		r.Delete("/services/{id}", api.DeleteService)

		// Client services (subscriptions)
		r.Get("/client-services", api.ListClientServices)
		r.Post("/client-services", api.CreateClientService)
		r.Get("/client-services/search", api.SearchClientServices)
		r.Get("/client-services/client/{clientID}", api.ListClientServicesByClient)
		r.Get("/client-services/{id}", api.GetClientService)
		r.Put("/client-services/{id}", api.UpdateClientService)
		r.Patch("/client-services/{id}/status", api.UpdateClientServiceStatus)
		r.Delete("/client-services/{id}", api.DeleteClientService)

		// Payments
		r.Get("/payments", api.ListPayments)
		r.Post("/payments", api.CreatePayment)
		r.Get("/payments/details/all", api.ListDetailedPayments)
		r.Get("/payments/filter/date", api.ListPaymentsByDateRange)
		r.Get("/payments/status/{status}", api.ListPaymentsByStatus)
		r.Get("/payments/service/{clientServiceID}", api.ListPaymentsByService)
		r.Get("/payments/client/{clientID}", api.ListPaymentsByClient)
		r.Get("/payments/client/{clientID}/total", api.GetClientPaymentsTotal)
		r.Get("/payments/{id}", api.GetPayment)
		r.Put("/payments/{id}", api.UpdatePayment)
		r.Patch("/payments/{id}/status", api.UpdatePaymentStatus)
		r.Delete("/payments/{id}", api.DeletePayment)

		// Dashboard
		r.Get("/dashboard", api.GetDashboard)
	})

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	slog.Info("server starting", "address", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
