// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/chronographus/internal/logging"
)

// defaultShutdownTimeout bounds the connection drain when the caller
// does not specify one.
const defaultShutdownTimeout = 10 * time.Second

// HTTPServer is the lifecycle surface the service needs from
// *http.Server. Tests substitute a double; production passes the real
// server carrying the query API router.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService bridges http.Server's blocking ListenAndServe to
// suture's context-aware Serve. ListenAndServe runs in a goroutine;
// when the supervision context is canceled the service drains active
// connections via Shutdown under its own timeout, then reports
// ctx.Err() so suture records a clean stop.
//
// Example:
//
//	server := &http.Server{Addr: ":8080", Handler: router}
//	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	name            string
}

// NewHTTPServerService wraps an HTTP server for supervision. A zero or
// negative shutdownTimeout falls back to ten seconds.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	return &HTTPServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		name:            "http-server",
	}
}

// Serve implements suture.Service. A listen failure (bad address, port
// in use) returns an error so suture restarts the service; a canceled
// context drains connections and returns ctx.Err().
func (h *HTTPServerService) Serve(ctx context.Context) error {
	// The goroutine forwards every ListenAndServe result, including the
	// ErrServerClosed that follows a Shutdown call; the receive sites
	// decide what counts as a failure.
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- h.server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		// Closed from outside this service; nothing left to drain.
		return nil

	case <-ctx.Done():
	}

	// The supervision context is already canceled, so the drain needs
	// its own deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
	defer cancel()

	logging.Info().
		Dur("timeout", h.shutdownTimeout).
		Msg("Draining HTTP connections")

	if err := h.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}

	<-serveErr
	return ctx.Err()
}

// String implements fmt.Stringer; suture uses it in supervision logs.
func (h *HTTPServerService) String() string {
	return h.name
}
