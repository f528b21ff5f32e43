// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package services

import (
	"context"
	"fmt"
	"time"
)

// StreamRunner interface matches the StreamComponents lifecycle.
//
// This interface allows the StreamService to work with StreamComponents
// without importing the main package, avoiding circular dependencies.
//
// Satisfied by *StreamComponents from cmd/chronographus/stream_init.go:
//   - Start(ctx context.Context) error - starts the Watermill router and subscribers
//   - Shutdown(ctx context.Context) - stops the router, connection, and embedded server
//   - IsRunning() bool - returns running state
type StreamRunner interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context)
	IsRunning() bool
}

// StreamService wraps the JetStream components as a supervised service.
//
// It adapts the Start/Shutdown lifecycle pattern to suture's Serve pattern:
//  1. Calls Start(ctx) to begin all stream components
//  2. Waits for context cancellation
//  3. Calls Shutdown(ctx) for graceful cleanup
//
// The service manages multiple subsystems including:
//   - Embedded NATS server (if configured)
//   - JetStream connection and stream provisioning
//   - Watermill Router (dedup, counting, and fan-out handlers)
//   - Raw and poison event publishers
//
// Example usage:
//
//	streamComponents, _ := InitStream(cfg, store, hub)
//	svc := services.NewStreamService(streamComponents)
//	tree.AddMessagingService(svc)
type StreamService struct {
	components      StreamRunner
	shutdownTimeout time.Duration
	name            string
}

// NewStreamService creates a new stream components service wrapper.
//
// Uses a default shutdown timeout of 10 seconds, matching the router
// close timeout default in the eventstream package.
func NewStreamService(components StreamRunner) *StreamService {
	return &StreamService{
		components:      components,
		shutdownTimeout: 10 * time.Second,
		name:            "event-stream",
	}
}

// NewStreamServiceWithTimeout creates a stream service with custom shutdown timeout.
func NewStreamServiceWithTimeout(components StreamRunner, shutdownTimeout time.Duration) *StreamService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &StreamService{
		components:      components,
		shutdownTimeout: shutdownTimeout,
		name:            "event-stream",
	}
}

// Serve implements suture.Service.
//
// This method:
//  1. Starts all stream components (router, subscribers)
//  2. Blocks until the context is canceled
//  3. Shuts down all components with the configured timeout
//
// If Start() fails, the error is returned immediately, causing suture to
// restart the service according to its backoff policy.
func (s *StreamService) Serve(ctx context.Context) error {
	// Start all stream components
	if err := s.components.Start(ctx); err != nil {
		return fmt.Errorf("stream components start failed: %w", err)
	}

	// Wait for shutdown signal
	<-ctx.Done()

	// Shutdown with timeout - use fresh context since original is canceled
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.components.Shutdown(shutdownCtx)

	return ctx.Err()
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *StreamService) String() string {
	return s.name
}
