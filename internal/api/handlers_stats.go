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
)

// defaultCountOffsetMinutes is the trailing window applied when the
// offset parameter is absent.
const defaultCountOffsetMinutes = 10

// EventCount handles GET /api/v1/metrics/events/count requests.
//
// Returns per-category event counts over the trailing window given by
// the offset parameter (minutes, default 10). A missing category in the
// store counts as zero; a failing category degrades to zero and flags
// the response metadata as degraded.
func (h *Handler) EventCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}
	start := time.Now()

	offset, err := getIntParam(r, "offset", defaultCountOffsetMinutes)
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Offset must be a valid integer", nil)
		return
	}

	req := EventCountRequest{OffsetMinutes: offset}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Offset must be a positive number", nil)
		return
	}

	cacheKey := cache.GenerateKey("EventCount", req)
	if cached, found := h.cache.Get(cacheKey); found {
		if result, ok := cached.(*models.EventCountsResult); ok {
			h.respondEventCounts(w, result, start)
			return
		}
	}

	result, err := h.queries.CountsInWindow(r.Context(), offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to retrieve event counts", err)
		return
	}

	// Degraded results are not cached, so recovery shows immediately.
	if !result.Degraded {
		h.cache.Set(cacheKey, result)
	}
	h.respondEventCounts(w, result, start)
}

func (h *Handler) respondEventCounts(w http.ResponseWriter, result *models.EventCountsResult, start time.Time) {
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

// PRAverage handles GET /api/v1/metrics/pr-average requests.
//
// With a repo parameter it returns the average time between pull
// request events for that repository. Without one it returns the
// repositories with enough opened-PR history to answer, or null data
// when none qualify. Repository names are validated before any store
// access.
func (h *Handler) PRAverage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}
	start := time.Now()

	repo := r.URL.Query().Get("repo")
	if repo == "" {
		h.respondRepositories(w, r, start)
		return
	}

	req := PRAverageRequest{Repo: repo}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeValidation, "Invalid repository name format. Expected owner/repo", nil)
		return
	}

	cacheKey := cache.GenerateKey("PRAverage", req)
	if cached, found := h.cache.Get(cacheKey); found {
		if result, ok := cached.(*models.PRAverageResult); ok {
			h.respondPRAverage(w, result, start)
			return
		}
	}

	result, err := h.queries.PRInterval(r.Context(), repo)
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to calculate statistics", err)
		return
	}

	h.cache.Set(cacheKey, result)
	h.respondPRAverage(w, result, start)
}

func (h *Handler) respondPRAverage(w http.ResponseWriter, result *models.PRAverageResult, start time.Time) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: models.ResponseStatusOK,
		Data:   result,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// respondRepositories answers the repo-less form of the PR average
// endpoint. A nil result marshals as null data, which tells the caller
// no repository has enough history yet.
func (h *Handler) respondRepositories(w http.ResponseWriter, r *http.Request, start time.Time) {
	cacheKey := cache.GenerateKey("Repositories", nil)
	if cached, found := h.cache.Get(cacheKey); found {
		if result, ok := cached.(*models.RepositoriesResult); ok {
			h.respondRepositoriesResult(w, result, start)
			return
		}
	}

	result, err := h.queries.Repositories(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to retrieve repositories", err)
		return
	}

	h.cache.Set(cacheKey, result)
	h.respondRepositoriesResult(w, result, start)
}

func (h *Handler) respondRepositoriesResult(w http.ResponseWriter, result *models.RepositoriesResult, start time.Time) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: models.ResponseStatusOK,
		Data:   result,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}
