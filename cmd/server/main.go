// Geotrack - Real-time Location Tracking and Broadcast
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geotrack

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/geotrack/internal/api"
	"github.com/tomtom215/geotrack/internal/config"
	"github.com/tomtom215/geotrack/internal/logging"
	"github.com/tomtom215/geotrack/internal/notifier"
	"github.com/tomtom215/geotrack/internal/scheduler"
	"github.com/tomtom215/geotrack/internal/store"
	"github.com/tomtom215/geotrack/internal/supervisor"
	"github.com/tomtom215/geotrack/internal/supervisor/services"
	"github.com/tomtom215/geotrack/internal/sweeper"
	"github.com/tomtom215/geotrack/internal/tracking"
	"github.com/tomtom215/geotrack/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("Invalid configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("version", version).Msg("Starting Geotrack")

	badgerStore, err := store.OpenBadger(store.BadgerConfig{
		Path:               cfg.Store.Path,
		InMemory:           cfg.Store.InMemory,
		SyncWrites:         cfg.Store.SyncWrites,
		MaxConflictRetries: cfg.Store.MaxConflictRetries,
		GCDiscardRatio:     cfg.Store.GCDiscardRatio,
	})
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("Failed to open user store")
	}
	defer func() {
		if err := badgerStore.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing user store")
		}
	}()

	var userStore store.Store = badgerStore
	if cfg.Breaker.Enabled {
		breakerCfg := store.DefaultBreakerConfig()
		breakerCfg.MaxRequests = cfg.Breaker.MaxRequests
		breakerCfg.Interval = cfg.Breaker.Interval
		breakerCfg.Timeout = cfg.Breaker.Timeout
		breakerCfg.ConsecutiveFailures = cfg.Breaker.ConsecutiveFailures
		userStore = store.NewResilientStore(badgerStore, breakerCfg)
		logging.Info().
			Uint32("consecutive_failures", breakerCfg.ConsecutiveFailures).
			Dur("open_timeout", breakerCfg.Timeout).
			Msg("Circuit breaker enabled for user store")
	}

	// Validate already rejected a bad timezone.
	loc, err := cfg.Sweep.Location()
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid sweep timezone")
	}

	hub := notifier.New(notifier.Config{BufferSize: cfg.Notifier.BufferSize})
	sweep := sweeper.New(userStore, sweeper.Config{
		InactiveDays: cfg.Sweep.InactiveDays,
		Location:     loc,
	})
	service := tracking.NewService(userStore, hub, sweep)

	sched, err := scheduler.New(sweep, scheduler.Config{
		Schedule:         cfg.Sweep.Schedule,
		Location:         loc,
		ExecutionTimeout: cfg.Sweep.ExecutionTimeout,
		Enabled:          cfg.Sweep.Enabled,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create sweep scheduler")
	}

	wsHandler := websocket.NewHandler(hub, cfg.Security.CORSOrigins)
	handler := api.NewHandler(service, wsHandler, hub, version)
	router := api.NewRouter(handler, &api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		CORSMaxAge:         api.DefaultChiMiddlewareConfig().CORSMaxAge,
		RateLimitRequests:  cfg.Security.RateLimitReqs,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
		RateLimitDisabled:  cfg.Security.RateLimitDisabled,
	})

	// No WriteTimeout: subscriptions hold their connection open indefinitely
	// and the write pump sets its own deadlines.
	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slogLogger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if !cfg.Store.InMemory && cfg.Store.GCInterval > 0 {
		tree.AddDataService(services.NewStoreGCService(badgerStore, cfg.Store.GCInterval))
		logging.Info().Dur("interval", cfg.Store.GCInterval).Msg("Store GC service added")
	}

	tree.AddMessagingService(services.NewNotifierService(hub))
	logging.Info().Int("buffer_size", cfg.Notifier.BufferSize).Msg("Notifier service added")

	tree.AddMessagingService(services.NewSweepSchedulerService(sched))
	logging.Info().
		Bool("enabled", cfg.Sweep.Enabled).
		Str("schedule", cfg.Sweep.Schedule).
		Int("inactive_days", cfg.Sweep.InactiveDays).
		Msg("Sweep scheduler service added")

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		treeErr = <-errCh
	case treeErr = <-errCh:
	}
	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		logging.Error().Err(treeErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
