// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// errSimulatedFailure is what a failure-scripted MockService returns.
var errSimulatedFailure = errors.New("simulated failure")

// MockService is a scriptable suture.Service for supervisor tests. By
// default it blocks until its context is canceled; SetError and
// SetFailCount script failures to exercise restart behavior.
type MockService struct {
	name string

	startCount atomic.Int32
	stopCount  atomic.Int32
	failsLeft  atomic.Int32

	// err holds an error to return on every Serve call.
	err atomic.Value
}

// NewMockService creates a mock service identified by name in
// supervision logs.
func NewMockService(name string) *MockService {
	return &MockService{name: name}
}

// Serve implements suture.Service. Scripted failures are consumed
// first, then a configured error, then the default block-until-cancel
// behavior.
func (m *MockService) Serve(ctx context.Context) error {
	m.startCount.Add(1)
	defer m.stopCount.Add(1)

	if m.failsLeft.Load() > 0 && m.failsLeft.Add(-1) >= 0 {
		return errSimulatedFailure
	}

	if err, ok := m.err.Load().(error); ok && err != nil {
		return err
	}

	<-ctx.Done()
	return ctx.Err()
}

// SetError makes every subsequent Serve call return err immediately.
func (m *MockService) SetError(err error) {
	m.err.Store(err)
}

// SetFailCount makes the next n Serve calls fail before the service
// settles into its normal behavior.
func (m *MockService) SetFailCount(n int) {
	m.failsLeft.Store(int32(n))
}

// StartCount returns how many times Serve was entered.
func (m *MockService) StartCount() int32 {
	return m.startCount.Load()
}

// StopCount returns how many times Serve returned.
func (m *MockService) StopCount() int32 {
	return m.stopCount.Load()
}

// String implements fmt.Stringer; suture uses it in supervision logs.
func (m *MockService) String() string {
	return m.name
}
