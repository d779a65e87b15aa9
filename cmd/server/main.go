package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"

	grpcapi "rentflow/internal/api/grpc"
	httpapi "rentflow/internal/api/http"
	"rentflow/internal/config"
	"rentflow/internal/jobs"
	"rentflow/internal/logger"
	"rentflow/internal/repository"
	"rentflow/internal/repository/memory"
	"rentflow/internal/repository/postgres"
	"rentflow/internal/repository/redisstore"
	"rentflow/internal/repository/rest"
	"rentflow/internal/scheduler"
	"rentflow/internal/security"
	"rentflow/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rentflow booking service...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "grpc_address", cfg.GetGRPCAddress())
	logger.Info("Marketplace configuration", "base_url", cfg.Marketplace.BaseURL, "timeout", cfg.MarketplaceTimeout())
	logger.Info("Booking configuration", "timezone", cfg.Booking.Timezone, "cart_pricing", cfg.Cart.PricingFormula, "session_backend", cfg.Session.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Marketplace backend
	marketplace := rest.NewClient(cfg.Marketplace.BaseURL, cfg.MarketplaceTimeout())

	// Session store
	sessions, closeSessions := openSessionStore(ctx, cfg)
	defer closeSessions()

	// Draft journal
	drafts, db := openDraftJournal(ctx, cfg)
	if db != nil {
		defer db.Close()
	}

	// Invoice mail
	mailer := service.NewNoopMailer()
	if cfg.SendGrid.APIKey != "" {
		mailer = service.NewSendGridMailer(cfg.SendGrid.APIKey, cfg.SendGrid.From, cfg.SendGrid.FromName, cfg.SendGrid.Host)
		logger.Info("Invoice mail enabled", "from", cfg.SendGrid.From)
	}

	bookings := service.NewBookingService(
		marketplace,
		marketplace,
		marketplace,
		sessions,
		drafts,
		security.NewTokenInspector(cfg.Marketplace.TokenSecret),
		mailer,
		service.BookingOptions{
			Workflow: service.WorkflowOptions{
				Location:               cfg.Location(),
				Country:                cfg.Booking.Country,
				RequireCompleteAddress: cfg.Booking.RequireCompleteAddress,
			},
			Cart: service.CartOptions{
				Formula:            service.PricingFormula(cfg.Cart.PricingFormula),
				TaxRateBasisPoints: cfg.Cart.TaxRateBasisPoints,
			},
		},
	)

	// A process-local journal is only visible here, so sweep it here.
	if !cfg.DatabaseEnabled() {
		sweeper, err := scheduler.NewScheduler(jobs.NewJobRunner(drafts, marketplace, cfg))
		if err != nil {
			log.Fatalf("Failed to create scheduler: %v", err)
		}
		sweeper.Start()
		defer sweeper.Stop()
	}

	router := mux.NewRouter()
	httpapi.RegisterHealthRoutes(router)
	httpapi.RegisterBookingRoutes(router, bookings)

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetServerAddress())
		log.Fatalf("Failed to listen: %v", err)
	}

	var health *grpcapi.HealthServer
	if addr := cfg.GetGRPCAddress(); addr != "" {
		grpcLis, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", addr)
			log.Fatalf("Failed to listen: %v", err)
		}
		health = grpcapi.NewHealthServer()
		go func() {
			if err := health.Serve(grpcLis); err != nil {
				logger.Error("gRPC health server error", "error", err)
			}
		}()
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()
	if health != nil {
		health.SetServing(true)
	}

	<-ctx.Done()
	logger.Info("Shutting down...")

	if health != nil {
		health.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}

func openSessionStore(ctx context.Context, cfg *config.Config) (repository.SessionRepository, func()) {
	if cfg.Session.Backend != "redis" {
		logger.Info("Using in-memory session store", "ttl", cfg.SessionTTL())
		return memory.NewSessionRepository(cfg.SessionTTL()), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("Failed to connect to redis", "error", err, "addr", cfg.Redis.Addr)
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	logger.Info("Using redis session store", "addr", cfg.Redis.Addr, "ttl", cfg.SessionTTL())
	return redisstore.NewSessionRepository(client, cfg.SessionTTL()), func() { client.Close() }
}

func openDraftJournal(ctx context.Context, cfg *config.Config) (repository.DraftRepository, *sql.DB) {
	if !cfg.DatabaseEnabled() {
		logger.Info("No database configured, draft journal is in memory")
		return memory.NewDraftRepository(), nil
	}

	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
	db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	store := postgres.NewStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to prepare database: %v", err)
	}
	logger.Info("Database connection established")
	return store.DraftRepository, db
}
