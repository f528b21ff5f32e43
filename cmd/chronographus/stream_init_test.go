// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package main

import (
	"context"
	"testing"
	"time"
)

// TestStreamComponents_IsRunning tests the IsRunning method.
func TestStreamComponents_IsRunning(t *testing.T) {
	t.Run("nil components", func(t *testing.T) {
		var c *StreamComponents
		if c.IsRunning() {
			t.Error("IsRunning() should return false for nil components")
		}
	})

	t.Run("not running", func(t *testing.T) {
		c := &StreamComponents{}
		if c.IsRunning() {
			t.Error("IsRunning() should return false when not running")
		}
	})

	t.Run("running", func(t *testing.T) {
		c := &StreamComponents{running: true}
		if !c.IsRunning() {
			t.Error("IsRunning() should return true when running")
		}
	})
}

// TestStreamComponents_Shutdown tests the Shutdown method.
func TestStreamComponents_Shutdown(t *testing.T) {
	t.Run("nil components", func(t *testing.T) {
		var c *StreamComponents
		// Should not panic
		c.Shutdown(context.Background())
	})

	t.Run("not running", func(t *testing.T) {
		c := &StreamComponents{}
		// Should not panic
		c.Shutdown(context.Background())
	})

	t.Run("shutdown completes", func(t *testing.T) {
		c := &StreamComponents{
			running:          true,
			shutdownComplete: make(chan struct{}),
		}

		done := make(chan struct{})
		go func() {
			c.Shutdown(context.Background())
			close(done)
		}()

		select {
		case <-done:
			// Good - shutdown completed
		case <-time.After(time.Second):
			t.Error("Shutdown blocked for too long")
		}

		if c.IsRunning() {
			t.Error("Should not be running after shutdown")
		}
	})
}

// TestStreamComponents_Start tests the Start method.
func TestStreamComponents_Start(t *testing.T) {
	t.Run("nil components", func(t *testing.T) {
		var c *StreamComponents
		err := c.Start(context.Background())
		if err != nil {
			t.Errorf("Start() should return nil for nil components, got %v", err)
		}
	})

	t.Run("nil router", func(t *testing.T) {
		c := &StreamComponents{}
		err := c.Start(context.Background())
		if err != nil {
			t.Errorf("Start() should return nil for nil router, got %v", err)
		}
	})
}

// TestStreamComponents_Accessors tests the nil-safe accessors main
// relies on when wiring the supervisor tree.
func TestStreamComponents_Accessors(t *testing.T) {
	t.Run("nil components", func(t *testing.T) {
		var c *StreamComponents
		if c.Connected() {
			t.Error("Connected() should return false for nil components")
		}
		if c.Publisher() != nil {
			t.Error("Publisher() should return nil for nil components")
		}
		if c.Bridge() != nil {
			t.Error("Bridge() should return nil for nil components")
		}
		if got := c.ProcessorStats(); got.Received != 0 {
			t.Errorf("ProcessorStats().Received = %d, want 0", got.Received)
		}
	})

	t.Run("no connection", func(t *testing.T) {
		c := &StreamComponents{}
		if c.Connected() {
			t.Error("Connected() should return false without a NATS connection")
		}
	})
}
