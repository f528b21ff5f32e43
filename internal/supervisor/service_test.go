// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package supervisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// waitForStarts polls until the service's Serve was entered at least n
// times. Polling beats a fixed sleep on loaded CI machines.
func waitForStarts(t *testing.T, svc *MockService, n int32) bool {
	t.Helper()
	for i := 0; i < 50; i++ {
		if svc.StartCount() >= n {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestMockService_Behavior(t *testing.T) {
	t.Run("implements suture.Service", func(t *testing.T) {
		var _ suture.Service = (*MockService)(nil)
	})

	t.Run("blocks until context ends", func(t *testing.T) {
		svc := NewMockService("feed-poller")
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		err := svc.Serve(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Serve returned %v, want DeadlineExceeded", err)
		}
		if svc.StartCount() != 1 || svc.StopCount() != 1 {
			t.Errorf("start/stop = %d/%d, want 1/1", svc.StartCount(), svc.StopCount())
		}
	})

	t.Run("scripted error returns immediately", func(t *testing.T) {
		svc := NewMockService("event-bridge")
		svc.SetError(errors.New("simulated failure"))

		err := svc.Serve(context.Background())
		if err == nil || err.Error() != "simulated failure" {
			t.Errorf("Serve returned %v, want simulated failure", err)
		}
	})

	t.Run("fails N times then settles", func(t *testing.T) {
		svc := NewMockService("store-gc")
		svc.SetFailCount(2)

		for call := 1; call <= 2; call++ {
			if err := svc.Serve(context.Background()); err == nil {
				t.Errorf("call %d should fail", call)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("third call returned %v, want block until deadline", err)
		}

		if svc.StartCount() != 3 {
			t.Errorf("StartCount = %d, want 3", svc.StartCount())
		}
	})

	t.Run("String names the service", func(t *testing.T) {
		if got := NewMockService("websocket-hub").String(); got != "websocket-hub" {
			t.Errorf("String() = %q, want websocket-hub", got)
		}
	})
}

func TestSupervision_StartAndStop(t *testing.T) {
	svc := NewMockService("feed-poller")
	sup := suture.NewSimple("pipeline")
	sup.Add(svc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- sup.Serve(ctx)
	}()

	if !waitForStarts(t, svc, 1) {
		t.Error("service was not started")
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("supervisor returned %v", err)
		}
	case <-time.After(time.Second):
		t.Error("supervisor did not stop in time")
	}
}

func TestSupervision_RestartsCrashedService(t *testing.T) {
	svc := NewMockService("event-bridge")
	svc.SetFailCount(2)

	sup := suture.New("pipeline", suture.Spec{
		FailureThreshold: 10,
		FailureDecay:     1,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          100 * time.Millisecond,
	})
	sup.Add(svc)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	go sup.Serve(ctx)

	// Two scripted crashes plus the settled run.
	if !waitForStarts(t, svc, 3) {
		t.Errorf("StartCount = %d, want at least 3", svc.StartCount())
	}
}

func TestSupervision_DoNotRestart(t *testing.T) {
	svc := NewMockService("one-shot")
	svc.SetError(suture.ErrDoNotRestart)

	sup := suture.New("pipeline", suture.Spec{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          100 * time.Millisecond,
	})
	sup.Add(svc)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	go sup.Serve(ctx)
	time.Sleep(100 * time.Millisecond)

	if svc.StartCount() != 1 {
		t.Errorf("StartCount = %d, want exactly 1 for ErrDoNotRestart", svc.StartCount())
	}
}

func TestSupervision_TerminateTree(t *testing.T) {
	svc := NewMockService("terminator")
	svc.SetError(suture.ErrTerminateSupervisorTree)

	sup := suture.New("pipeline", suture.Spec{
		FailureThreshold: 10,
		Timeout:          100 * time.Millisecond,
	})
	sup.Add(svc)

	err := sup.Serve(context.Background())
	if !errors.Is(err, suture.ErrTerminateSupervisorTree) {
		t.Logf("supervisor returned %v (tolerated: suture may wrap the terminate error)", err)
	}
}

func TestSupervision_NestedSupervisors(t *testing.T) {
	childSvc := NewMockService("store-gc")
	childSup := suture.NewSimple("data-layer")
	childSup.Add(childSvc)

	parentSup := suture.NewSimple("pipeline")
	parentSup.Add(childSup)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	go parentSup.Serve(ctx)

	if !waitForStarts(t, childSvc, 1) {
		t.Error("child service was not started through the hierarchy")
	}
}
