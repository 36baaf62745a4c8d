// Package app provides the main application struct for centralized dependency
// management and lifecycle control of the cache console server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"gemcache/config"
	"gemcache/internal/gemini"
	"gemcache/internal/inventory"
	"gemcache/internal/server"
	"gemcache/internal/usage"
)

// App represents the main application with all its dependencies.
// It provides centralized lifecycle management for all components.
type App struct {
	config *config.Config
	client *gemini.Client
	inv    inventory.Store
	usage  *usage.Result
	server *server.Server

	shutdownMu sync.Mutex
	shutdown   bool
}

// New creates a new App with all dependencies initialized.
// The caller must call Shutdown to release resources.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	app := &App{config: cfg}

	// The provider client is fatal to miss; everything else degrades.
	client, err := gemini.Initialize(ctx, cfg.Gemini.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider client: %w", err)
	}
	client.DownloadSkipExisting = cfg.Staging.SkipExisting
	app.client = client

	inv, err := newInventoryStore(cfg.Inventory)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize inventory store: %w", err)
	}
	app.inv = inv

	usageResult, err := usage.New(ctx, cfg)
	if err != nil {
		closeErr := inv.Close()
		if closeErr != nil {
			return nil, fmt.Errorf("failed to initialize usage tracking: %w (also: inventory close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize usage tracking: %w", err)
	}
	app.usage = usageResult

	app.logStartupInfo()

	handler := server.NewHandler(server.HandlerConfig{
		Console:     client,
		Inventory:   inv,
		Freshness:   cfg.Inventory.Freshness,
		UsageLogger: usageResult.Logger,
		UsageStore:  usageResult.Store,
		StagingDir:  cfg.Staging.Dir,
	})

	app.server = server.New(handler, &server.Config{
		MasterKey:      cfg.Server.MasterKey,
		MetricsEnabled: cfg.Server.MetricsEnabled,
	})

	return app, nil
}

// Client returns the provider client.
func (a *App) Client() *gemini.Client {
	return a.client
}

// UsageLogger returns the usage logger interface.
func (a *App) UsageLogger() usage.LoggerInterface {
	if a.usage == nil {
		return nil
	}
	return a.usage.Logger
}

// Start starts the HTTP server on the given address.
// This is a blocking call that returns when the server stops.
func (a *App) Start(addr string) error {
	if a.server == nil {
		return fmt.Errorf("server is not initialized")
	}
	slog.Info("starting server", "address", addr)
	if err := a.server.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
			return nil
		}
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully tears down app components in dependency order.
// Order:
// 1. HTTP server shutdown via server.Shutdown(ctx), honoring the passed context.
// 2. Usage logger close (flushes pending usage records and its storage).
// 3. Inventory store close.
//
// Shutdown is idempotent and safe for repeated calls; after the first call,
// subsequent calls are no-ops. It attempts every close step, aggregates
// failures, and returns a joined error if any step fails.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()

	slog.Info("shutting down application...")

	var errs []error

	// 1. Shutdown HTTP server first (stop accepting new requests)
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}

	// 2. Close usage tracking (flushes pending entries)
	if a.usage != nil {
		if err := a.usage.Close(); err != nil {
			slog.Error("usage logger close error", "error", err)
			errs = append(errs, fmt.Errorf("usage close: %w", err))
		}
	}

	// 3. Close the inventory store
	if a.inv != nil {
		if err := a.inv.Close(); err != nil {
			slog.Error("inventory store close error", "error", err)
			errs = append(errs, fmt.Errorf("inventory close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	slog.Info("application shutdown complete")
	return nil
}

// logStartupInfo logs the application configuration on startup.
func (a *App) logStartupInfo() {
	cfg := a.config

	// Security warnings
	if cfg.Server.MasterKey == "" {
		slog.Warn("SECURITY WARNING: GEMCACHE_MASTER_KEY not set - server running in UNSAFE MODE",
			"security_risk", "unauthenticated access allowed",
			"recommendation", "set GEMCACHE_MASTER_KEY environment variable to secure this console")
	} else {
		slog.Info("authentication enabled", "mode", "master_key")
	}

	// Metrics configuration
	if cfg.Server.MetricsEnabled {
		slog.Info("prometheus metrics enabled", "endpoint", "/metrics")
	} else {
		slog.Info("prometheus metrics disabled")
	}

	slog.Info("inventory snapshots configured",
		"backend", cfg.Inventory.Backend,
		"freshness", cfg.Inventory.Freshness,
	)

	// Usage tracking configuration
	if cfg.Usage.Enabled {
		slog.Info("usage tracking enabled",
			"storage_type", cfg.Storage.Type,
			"buffer_size", cfg.Usage.BufferSize,
			"flush_interval", cfg.Usage.FlushInterval,
			"retention_days", cfg.Usage.RetentionDays,
		)
	} else {
		slog.Info("usage tracking disabled")
	}
}

// newInventoryStore creates the snapshot store named by the configuration.
func newInventoryStore(cfg config.InventoryConfig) (inventory.Store, error) {
	switch cfg.Backend {
	case "", "local":
		return inventory.NewLocalStore(cfg.Dir), nil
	case "redis":
		return inventory.NewRedisStore(inventory.RedisConfig{URL: cfg.RedisURL})
	default:
		return nil, fmt.Errorf("unknown inventory backend: %s (valid: local, redis)", cfg.Backend)
	}
}
