package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/koios/jokeview/internal/config"
	"github.com/koios/jokeview/internal/eventloop"
	"github.com/koios/jokeview/internal/handlers"
	"github.com/koios/jokeview/internal/jokes"
	"github.com/koios/jokeview/internal/orchestrator"
	"github.com/koios/jokeview/internal/presentation"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	loop := eventloop.New(logger)
	loop.Start()

	endpoint := cfg.EndpointURL()
	page := presentation.NewPage(endpoint)
	client := &http.Client{Timeout: time.Duration(cfg.Endpoint.Timeout) * time.Second}
	pipeline := orchestrator.NewPipeline(page, loop, client, endpoint, logger)

	router := mux.NewRouter()
	demo := handlers.NewDemoHandler(page, pipeline, logger)
	demo.RegisterRoutes(router)

	var closeStore func() error
	if cfg.Jokes.Enabled {
		store, closer, err := newJokeStore(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize joke store", zap.Error(err))
		}
		closeStore = closer
		if rs, ok := store.(*jokes.RedisStore); ok {
			demo.AddHealthCheck("redis", rs)
		}
		handlers.NewJokeHandler(store, logger).RegisterRoutes(router.PathPrefix("/api").Subrouter())
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start HTTP server
	go func() {
		logger.Info("Starting HTTP server", zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.Int("port", cfg.Server.Port),
		zap.String("endpoint", endpoint),
		zap.Bool("jokes_api", cfg.Jokes.Enabled))

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Give outstanding requests a deadline for completion
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	loop.Stop()

	if closeStore != nil {
		if err := closeStore(); err != nil {
			logger.Warn("Failed to close joke store", zap.Error(err))
		}
	}

	logger.Info("Server shutdown complete")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

// newJokeStore picks Redis when it is configured and reachable, the in-memory catalog otherwise
func newJokeStore(cfg *config.Config, logger *zap.Logger) (jokes.Store, func() error, error) {
	catalog, err := jokes.LoadCatalog(cfg.Jokes.CatalogPath)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Redis.Addr != "" {
		logger.Info("Initializing joke store with Redis",
			zap.String("redis_addr", cfg.Redis.Addr),
			zap.Int("redis_db", cfg.Redis.DB))

		store, err := jokes.NewRedisStore(cfg.Redis, logger)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.Seed(ctx, catalog); err != nil {
				store.Close()
				return nil, nil, err
			}
			return store, store.Close, nil
		}
		logger.Warn("Redis unavailable, falling back to in-memory joke store", zap.Error(err))
	}

	logger.Info("Initializing joke store with in-memory catalog", zap.Int("jokes", len(catalog.Jokes)))
	return jokes.NewMemoryStore(catalog), nil, nil
}
