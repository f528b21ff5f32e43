// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package main

import (
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/supervisor"
	"github.com/tomtom215/chronographus/internal/supervisor/services"
)

// AddStreamToSupervisor adds the stream components service to the
// supervisor tree's messaging layer for automatic lifecycle management.
//
// The stream components include:
//   - Embedded NATS server (if configured)
//   - JetStream stream provisioning and the raw/processed/poison topics
//   - Watermill Router running the event processor
//   - Event publisher with circuit breaker protection
//
// When added to the supervisor tree:
//   - Start() is called when the supervisor starts
//   - Shutdown() is called when the supervisor stops
//   - The service is automatically restarted on failure
func AddStreamToSupervisor(tree *supervisor.SupervisorTree, components *StreamComponents) {
	if components == nil {
		return
	}
	tree.AddMessagingService(services.NewStreamService(components))
	logging.Info().Msg("Stream components added to supervisor tree (messaging layer)")
}
