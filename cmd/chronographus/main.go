// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/chronographus/internal/api"
	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/dispatcher"
	"github.com/tomtom215/chronographus/internal/feed"
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/poller"
	"github.com/tomtom215/chronographus/internal/query"
	"github.com/tomtom215/chronographus/internal/store"
	"github.com/tomtom215/chronographus/internal/supervisor"
	"github.com/tomtom215/chronographus/internal/supervisor/services"
	ws "github.com/tomtom215/chronographus/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Chronographus with supervisor tree")

	if cfg.Poller.Enabled {
		logging.Info().
			Str("feed_url", cfg.Poller.FeedURL).
			Str("storage_path", cfg.Storage.Path).
			Bool("authenticated", cfg.Poller.Token != "").
			Msg("Configuration loaded")
	} else {
		logging.Info().
			Bool("poller_enabled", false).
			Str("storage_path", cfg.Storage.Path).
			Msg("Configuration loaded (query-only mode)")
	}

	// Open the event store
	db, err := store.Open(&cfg.Storage)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open event store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event store")
		}
	}()
	logging.Info().Msg("Event store opened")

	events := store.NewEventStore(db)
	counters := store.NewCounterStore(db)
	cursors := store.NewCursorStore(db)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create structured logger for supervisor using our slog adapter
	// This bridges zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	// Create supervisor tree
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Create WebSocket hub for real-time updates (before the stream so
	// the event bridge can broadcast through it)
	wsHub := ws.NewHub()

	// Create query engine over the stores
	queries, err := query.New(events, counters, &cfg.Query)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create query engine")
	}

	handler := api.NewHandler(queries, cfg, wsHub)
	handler.SetStoreCheck(func() bool { return !db.IsClosed() })

	// Initialize stream processing: embedded JetStream, Watermill router,
	// and the processor that feeds the stores
	streamComponents, err := InitStream(cfg, events, counters, wsHub)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event stream")
	}
	handler.SetQueueCheck(streamComponents.Connected)

	// Stream components are started/managed by the supervisor, not manually
	AddStreamToSupervisor(tree, streamComponents)

	router := api.NewRouter(handler, &cfg.API)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Data layer services
	tree.AddDataService(store.NewGarbageCollector(db, &cfg.Storage))
	logging.Info().Dur("interval", cfg.Storage.GCInterval).Msg("Store garbage collector added to supervisor tree")

	// Messaging layer services
	tree.AddMessagingService(wsHub)
	tree.AddMessagingService(streamComponents.Bridge())
	logging.Info().Msg("WebSocket hub and event bridge added to supervisor tree")

	if cfg.Poller.Enabled {
		client := feed.NewClient(&cfg.Poller)
		disp := dispatcher.New(streamComponents.Publisher(), &cfg.Poller)
		feedPoller, err := poller.New(client, disp, cursors, &cfg.Poller)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create feed poller")
		}
		tree.AddMessagingService(feedPoller)
		logging.Info().
			Dur("interval", cfg.Poller.Interval).
			Int("per_page", cfg.Poller.PerPage).
			Msg("Feed poller added to supervisor tree")
	} else {
		logging.Info().Msg("Feed polling disabled (POLLER_ENABLED=false)")
	}

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	stats := streamComponents.ProcessorStats()
	logging.Info().
		Int64("received", stats.Received).
		Int64("inserted", stats.Inserted).
		Int64("duplicates", stats.Duplicates).
		Msg("Application stopped gracefully")
}
