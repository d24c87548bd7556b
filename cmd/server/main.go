// Command server runs the short link HTTP service.
//
// Startup flow: configuration -> logger -> mapping store (+ optional cache)
// -> service -> handlers and middleware -> HTTP server with graceful shutdown.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"shortlink/internal/config"
	httpHandler "shortlink/internal/handler/http"
	"shortlink/internal/repository"
	"shortlink/internal/repository/memory"
	"shortlink/internal/repository/mongodb"
	"shortlink/internal/repository/postgres"
	redisrepo "shortlink/internal/repository/redis"
	"shortlink/internal/service"
	"shortlink/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	// STEP 1: configuration from the environment (and .env, if present)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// STEP 2: structured JSON logger
	appLogger := logger.NewWithOptions(logger.Options{
		Level: cfg.App.LogLevel,
		File:  cfg.App.LogFile,
	})
	defer appLogger.Close()

	appLogger.Info("Starting short link service",
		"environment", cfg.App.Environment,
		"port", cfg.Server.Port,
		"backend", cfg.Store.Backend,
		"cache", cfg.Store.CacheEnabled,
	)

	// STEP 3: mapping store
	ctx := context.Background()
	store, cleanup, err := buildStore(ctx, cfg, appLogger.Logger)
	if err != nil {
		appLogger.Error("Failed to initialize store", "backend", cfg.Store.Backend, "error", err)
		cleanup()
		os.Exit(1)
	}
	defer cleanup()

	// STEP 4: service layer
	codes, err := service.NewRandomCodeGenerator(service.DefaultAlphabet, cfg.App.ShortCodeLength)
	if err != nil {
		appLogger.Error("Invalid short code settings", "error", err)
		os.Exit(1)
	}
	appLogger.Info("Short code space", "length", cfg.App.ShortCodeLength, "capacity", codes.Capacity())

	shortener := service.NewShortenerService(store, codes, service.Options{
		BaseURL:     cfg.App.BaseURL,
		MaxAttempts: cfg.App.MaxAttempts,
	}, appLogger.Logger)

	// STEP 5: routes and middleware
	handler := httpHandler.NewHandler(shortener, appLogger, cfg.App.RedirectPermanent)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	if cfg.App.EnableMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	finalHandler := httpHandler.Chain(
		httpHandler.RecoveryMiddleware(appLogger.Logger),
		httpHandler.RequestIDMiddleware,
		httpHandler.LoggingMiddleware(appLogger.Logger),
		httpHandler.MetricsMiddleware,
		httpHandler.CORSMiddleware,
	)(mux)

	// STEP 6: serve until SIGINT/SIGTERM
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      finalHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Server starting", "address", server.Addr, "base_url", cfg.App.BaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Shutting down server", "signal", sig.String())
	case err := <-serverErr:
		appLogger.Error("Server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
		return
	}

	appLogger.Info("Server exited gracefully")
}

// buildStore opens the configured backend and, when enabled, puts the Redis
// read-through cache in front of it. The returned cleanup releases every
// connection that was opened.
func buildStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (repository.MappingStore, func(), error) {
	var (
		closers []func()
		store   repository.MappingStore
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		client, err := redisrepo.InitRedis(cfg.Redis.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, cleanup, fmt.Errorf("redis: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		redisClient = client
		log.Info("Redis connection established", "addr", cfg.Redis.RedisAddr())
	}

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		pool, err := postgres.InitDB(ctx,
			cfg.Database.DatabaseDSN(),
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime,
		)
		if err != nil {
			return nil, cleanup, fmt.Errorf("postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		log.Info("Database connection established")

		if cfg.Database.RunMigrations {
			applied, err := postgres.Migrate(ctx, pool)
			if err != nil {
				return nil, cleanup, fmt.Errorf("postgres migrations: %w", err)
			}
			log.Info("Migrations applied", "files", applied)
		}
		store = postgres.NewURLRepository(pool)

	case config.BackendMemory:
		log.Warn("Using in-memory store; mappings are lost on restart")
		store = memory.NewStore()

	case config.BackendRedis:
		store = redisrepo.NewStore(redisClient)

	case config.BackendMongoDB:
		client, mongoStore, err := mongodb.Connect(ctx, mongodb.StoreOpts{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		})
		if err != nil {
			return nil, cleanup, fmt.Errorf("mongodb: %w", err)
		}
		closers = append(closers, func() { _ = client.Disconnect(context.Background()) })
		log.Info("MongoDB connection established", "database", cfg.Mongo.Database)
		store = mongoStore

	default:
		return nil, cleanup, fmt.Errorf("unknown backend %q", cfg.Store.Backend)
	}

	if cfg.Store.CacheEnabled {
		store = redisrepo.NewCachedStore(store, redisClient, cfg.Redis.CacheTTL, log)
		log.Info("Read-through cache enabled", "ttl", cfg.Redis.CacheTTL)
	}

	return store, cleanup, nil
}
