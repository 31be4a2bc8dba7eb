package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/af-corp/relay/internal/cache"
	"github.com/af-corp/relay/internal/config"
	"github.com/af-corp/relay/internal/costs"
	"github.com/af-corp/relay/internal/dispatch"
	"github.com/af-corp/relay/internal/providers"
	"github.com/af-corp/relay/internal/server"
	"github.com/af-corp/relay/internal/telemetry"
)

var version = "dev"

func main() {
	configDir := flag.String("config", "configs", "path to configuration directory")
	flag.Parse()

	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	loader := config.NewLoader(*configDir, bootLogger)
	if err := loader.Load(); err != nil {
		bootLogger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	cfg := loader.Config()
	logger := buildLogger(cfg.Telemetry)
	slog.SetDefault(logger)

	if err := loader.Watch(); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}

	// Response cache
	var store cache.Store
	if cfg.Cache.Enabled {
		switch cfg.Cache.Backend {
		case "redis":
			rdb := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Address,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				PoolSize: cfg.Redis.PoolSize,
			})
			if err := rdb.Ping(context.Background()).Err(); err != nil {
				logger.Warn("redis not reachable, falling back to memory cache", "error", err)
				store = cache.NewMemory(cfg.Cache.TTL, cfg.Cache.MaxEntries)
			} else {
				logger.Info("redis connected", "addr", cfg.Redis.Address)
				store = cache.NewRedis(rdb, cfg.Cache.TTL)
			}
		default:
			store = cache.NewMemory(cfg.Cache.TTL, cfg.Cache.MaxEntries)
		}
	}

	// Provider registry, rebuilt on config reload
	registry := providers.BuildFromConfig(loader.Providers(), cfg.Dispatch.MockMode)
	loader.OnReload(func() {
		newRegistry := providers.BuildFromConfig(loader.Providers(), loader.Config().Dispatch.MockMode)
		registry.ReplaceFrom(newRegistry)
		logger.Info("provider registry reloaded")
	})

	if cfg.Dispatch.MockMode {
		logger.Warn("mock mode enabled, no upstream calls will be made")
	}

	tracker := costs.NewTracker(loader.Routing().Pricing, cfg.Dispatch.DefaultTokenPrice, cfg.Dispatch.BaselineModel)
	health := providers.NewHealthTracker(3)
	metrics := telemetry.NewMetrics()

	policy := providers.RetryPolicy{
		MaxRetries:     cfg.Dispatch.MaxRetries,
		BackoffBase:    cfg.Dispatch.BackoffBase,
		BackoffCap:     cfg.Dispatch.BackoffCap,
		AttemptTimeout: cfg.Dispatch.Timeout,
	}

	svc := dispatch.NewService(registry, health, store, tracker, loader.Routing, policy, metrics, logger)

	server.SetVersion(version)
	handler := server.NewHandler(svc, tracker, health, logger)

	// Metrics endpoint on its own port
	if cfg.Telemetry.MetricsPort > 0 {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			addr := fmt.Sprintf(":%d", cfg.Telemetry.MetricsPort)
			logger.Info("metrics server starting", "addr", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("relay starting", "addr", addr, "version", version)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("relay stopped")
}

func buildLogger(cfg config.TelemetryConfig) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
