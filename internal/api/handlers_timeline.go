// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/chronographus/internal/cache"
	"github.com/tomtom215/chronographus/internal/models"
	"github.com/tomtom215/chronographus/internal/validation"
)

// Defaults applied when the timeline parameters are absent.
const (
	defaultTimelineHours           = 24
	defaultTimelineIntervalMinutes = 60
)

// Timeline handles GET /api/v1/visualization/timeline requests, and the
// British-spelled alias route.
//
// Returns per-category counts bucketed into intervals over the trailing
// hours, shaped for direct line-chart rendering. The bucket count is
// capped at 100, keeping the most recent activity. A bucket cell that
// fails or times out degrades to zero and flags the response metadata.
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}
	start := time.Now()

	hours, err := getIntParam(r, "hours", defaultTimelineHours)
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Hours must be a valid integer", nil)
		return
	}
	interval, err := getIntParam(r, "interval", defaultTimelineIntervalMinutes)
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Interval must be a valid integer", nil)
		return
	}

	req := TimelineRequest{Hours: hours, IntervalMinutes: interval}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, timelineValidationMessage(verr), nil)
		return
	}

	cacheKey := cache.GenerateKey("Timeline", req)
	if cached, found := h.cache.Get(cacheKey); found {
		if result, ok := cached.(*models.TimelineResult); ok {
			h.respondTimeline(w, result, start)
			return
		}
	}

	result, err := h.queries.Timeline(r.Context(), hours, interval)
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to generate timeline visualization", err)
		return
	}

	// Degraded results are not cached, so recovery shows immediately.
	if !result.Degraded {
		h.cache.Set(cacheKey, result)
	}
	h.respondTimeline(w, result, start)
}

func (h *Handler) respondTimeline(w http.ResponseWriter, result *models.TimelineResult, start time.Time) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: models.ResponseStatusOK,
		Data:   result,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Degraded:    result.Degraded,
		},
	})
}

// timelineValidationMessage maps the first failing timeline parameter
// to its public message.
func timelineValidationMessage(verr *validation.RequestValidationError) string {
	for _, fieldErr := range verr.Errors() {
		switch fieldErr.Field() {
		case "Hours":
			return "Hours must be between 1 and 168 (1 week)"
		case "IntervalMinutes":
			return "Interval must be between 1 and 1440 minutes"
		}
	}
	return verr.Error()
}
