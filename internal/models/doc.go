// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package models defines the domain records shared across the pipeline:
// raw feed events, normalized processed events, the poll cursor, repository
// counters, and the API response envelope with its result payloads.
package models
