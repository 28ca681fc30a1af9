/**
 * @description
 * This is the main entry point for the entitlement-service.
 * It initializes and wires together all the components of the application:
 * configuration, database connection, payment gateway client, event producer,
 * the expiry sweeper, and the HTTP router. Finally, it starts the HTTP server
 * to listen for incoming requests.
 */
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/streamvibe/entitlement-service/internal/api"
	"github.com/streamvibe/entitlement-service/internal/app"
	"github.com/streamvibe/entitlement-service/internal/config"
	"github.com/streamvibe/entitlement-service/internal/store"
	"github.com/streamvibe/entitlement-service/pkg/events"
	"github.com/streamvibe/entitlement-service/pkg/razorpay"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load a .env file when present; real deployments use the environment.
	_ = godotenv.Load()

	// Load application configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up channel to listen for OS signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Establish connection to the PostgreSQL database with connection pool configuration
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to parse database URL", "error", err)
		os.Exit(1)
	}

	poolConfig.MaxConns = 50
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statements so the pool works behind PgBouncer
	// transaction pooling (avoids statement cache errors, SQLSTATE 42P05).
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	// Payment event publisher; optional, falls back to a logging no-op.
	var publisher events.Publisher
	if cfg.RabbitMQURL != "" {
		producer, err := events.NewProducer(cfg.RabbitMQURL)
		if err != nil {
			logger.Error("unable to connect to RabbitMQ, events disabled", "error", err)
			publisher = &events.NoopPublisher{Logger: logger}
		} else {
			publisher = producer
		}
	} else {
		publisher = &events.NoopPublisher{Logger: logger}
	}
	defer publisher.Close()

	// Initialize application layers
	repository := store.NewRepository(dbpool)
	gateway := razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	service := app.NewService(repository, gateway, publisher, logger, cfg.RazorpayKeySecret)
	handler := api.NewHandler(service)

	// Rate limiting on payment routes; optional, requires Redis.
	var limiter *api.RateLimiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL, rate limiting disabled", "error", err)
		} else {
			limiter = api.NewRateLimiter(redis.NewClient(opts), "entitlement:payments", 30, time.Minute)
		}
	}

	router := api.NewRouter(handler, cfg.AuthJWKSURL, limiter)

	// Start the scheduled expiry sweeper.
	sweeper := app.NewSweeper(repository, logger)
	cronRunner, err := sweeper.Schedule(cfg.SweepSchedule)
	if err != nil {
		logger.Error("failed to schedule expiry sweeper", "error", err)
		os.Exit(1)
	}

	// Configure and start the HTTP server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for an OS signal
	<-sigCh
	logger.Info("shutdown signal received, gracefully shutting down")

	cronRunner.Stop()

	// Create a context with a timeout for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Attempt to gracefully shut down the server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
