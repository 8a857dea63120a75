// Package main provides the order engine API server entrypoint.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/despensa-ai/order-engine/internal/cache"
	"github.com/despensa-ai/order-engine/internal/catalog"
	"github.com/despensa-ai/order-engine/internal/config"
	"github.com/despensa-ai/order-engine/internal/observability"
	"github.com/despensa-ai/order-engine/internal/pipeline"
	"github.com/despensa-ai/order-engine/internal/storage"
	"github.com/despensa-ai/order-engine/internal/ticket"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		cfgPath = os.Args[2]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: "order-engine",
	})

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("catalog", cfg.Catalog.BaseURL).
		Str("cache", cfg.Cache.Driver).
		Msg("Starting order engine API")

	var cacheClient cache.Client
	if cfg.Cache.Driver == "redis" {
		redisClient, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, falling back to in-memory cache")
			cacheClient = cache.NewMemoryClient()
		} else {
			cacheClient = redisClient
		}
	} else {
		cacheClient = cache.NewMemoryClient()
	}
	defer cacheClient.Close()

	client := catalog.NewClient(catalog.ClientConfig{
		BaseURL:      cfg.Catalog.BaseURL,
		RequestDelay: cfg.Catalog.RequestDelay,
		Timeout:      cfg.Catalog.Timeout,
		UserAgent:    cfg.Catalog.UserAgent,
	}, logger)
	builder := catalog.NewBuilder(client, logger, catalog.BuilderConfig{Workers: cfg.Catalog.Workers})
	provider := catalog.NewProvider(builder, cacheClient, cfg.Catalog.IndexTTL, logger)

	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open order history database")
	}
	defer db.Close()
	orders := storage.NewOrderRepository(db)

	var exporter *ticket.Exporter
	if cfg.Export.Enabled {
		exporter = ticket.NewExporter(cfg.Export.Dir, logger)
	}

	p := pipeline.New(pipeline.Config{
		Provider: provider,
		Exporter: exporter,
		Orders:   orders,
		Logger:   logger,
	})

	router := NewRouter(logger, cfg.Server.ReadTimeout, AppDeps{
		Pipeline:  p,
		Provider:  provider,
		Orders:    orders,
		TicketDir: cfg.Export.Dir,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
}
