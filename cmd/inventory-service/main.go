package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/imaps/imaps-backend/internal/inventory/authz"
	"github.com/imaps/imaps-backend/internal/inventory/domain"
	"github.com/imaps/imaps-backend/internal/inventory/events"
	"github.com/imaps/imaps-backend/internal/inventory/handler"
	"github.com/imaps/imaps-backend/internal/inventory/repository"
	"github.com/imaps/imaps-backend/internal/inventory/service"
	"github.com/imaps/imaps-backend/pkg/config"
	"github.com/imaps/imaps-backend/pkg/database"
	"github.com/imaps/imaps-backend/pkg/httputil"
	"github.com/imaps/imaps-backend/pkg/logger"
	"github.com/imaps/imaps-backend/pkg/messaging"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present (development convenience)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadWithValidation("inventory-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("inventory-service", cfg.Server.Environment)
	log.Info().Msg("starting Inventory Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ. The ledger works without a broker; events
	// are dropped until one is available.
	var publisher service.EventPublisher = events.NopPublisher{}
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq unavailable, events disabled")
	} else {
		defer rmq.Close()
		p, err := events.NewInventoryEventPublisher(rmq, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
		publisher = p
	}

	// Initialize repositories
	supplierRepo := repository.NewSupplierRepository(db)
	ingredientLotRepo := repository.NewIngredientLotRepository(db)
	packagingLotRepo := repository.NewPackagingLotRepository(db)
	ingredientUsageRepo := repository.NewUsageRepository(db, domain.KindIngredient)
	packagingUsageRepo := repository.NewUsageRepository(db, domain.KindPackaging)
	changeLogRepo := repository.NewChangeLogRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Initialize service
	authorizer := authz.NewSecretAuthorizer(cfg.Auth.MutationSecret)
	inventoryService := service.New(
		db,
		supplierRepo,
		ingredientLotRepo,
		packagingLotRepo,
		ingredientUsageRepo,
		packagingUsageRepo,
		changeLogRepo,
		reportRepo,
		authorizer,
		publisher,
		log,
	)

	// Initialize handlers
	supplierHandler := handler.NewSupplierHandler(inventoryService, log)
	ingredientHandler := handler.NewIngredientLotHandler(inventoryService, log)
	packagingHandler := handler.NewPackagingLotHandler(inventoryService, log)
	ingredientUsageHandler := handler.NewUsageHandler(inventoryService, domain.KindIngredient, log)
	packagingUsageHandler := handler.NewUsageHandler(inventoryService, domain.KindPackaging, log)
	reportHandler := handler.NewReportHandler(inventoryService, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", httputil.MutationSecretHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":   "healthy",
			"service":  "inventory-service",
			"database": db.Health(r.Context()),
		}
		if rmq != nil {
			health["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, health)
	})

	// API routes
	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", supplierHandler.List)
			r.Post("/", supplierHandler.Create)
			r.Get("/code/{code}", supplierHandler.GetByCode)
			r.Get("/{id}", supplierHandler.Get)
			r.Put("/{id}", supplierHandler.Update)
			r.Delete("/{id}", supplierHandler.Delete)
		})

		r.Route("/ingredient-lots", func(r chi.Router) {
			r.Get("/", ingredientHandler.List)
			r.Post("/", ingredientHandler.Create)
			r.Get("/code/{code}", ingredientHandler.GetByCode)
			r.Get("/{id}", ingredientHandler.Get)
			r.Put("/{id}", ingredientHandler.Update)
			r.Delete("/{id}", ingredientHandler.Delete)
			r.Get("/{id}/usages", ingredientHandler.ListUsages)
		})

		r.Route("/packaging-lots", func(r chi.Router) {
			r.Get("/", packagingHandler.List)
			r.Post("/", packagingHandler.Create)
			r.Get("/code/{code}", packagingHandler.GetByCode)
			r.Get("/{id}", packagingHandler.Get)
			r.Put("/{id}", packagingHandler.Update)
			r.Delete("/{id}", packagingHandler.Delete)
			r.Get("/{id}/usages", packagingHandler.ListUsages)
		})

		r.Route("/ingredient-usages", func(r chi.Router) {
			r.Get("/", ingredientUsageHandler.List)
			r.Post("/", ingredientUsageHandler.Create)
			r.Get("/{id}", ingredientUsageHandler.Get)
			r.Put("/{id}", ingredientUsageHandler.Update)
			r.Delete("/{id}", ingredientUsageHandler.Delete)
		})

		r.Route("/packaging-usages", func(r chi.Router) {
			r.Get("/", packagingUsageHandler.List)
			r.Post("/", packagingUsageHandler.Create)
			r.Get("/{id}", packagingUsageHandler.Get)
			r.Put("/{id}", packagingUsageHandler.Update)
			r.Delete("/{id}", packagingUsageHandler.Delete)
		})

		r.Get("/reports/summary", reportHandler.Summary)
		r.Get("/change-log", reportHandler.ChangeLog)
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
