// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library to provide a thread-safe
// singleton validator instance with custom validators and user-friendly error
// messages. It integrates with the application's API error format for consistent
// error responses.
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - A repo_name custom validator matching GitHub's owner/repo constraints
//   - Comprehensive error translation to human-readable messages
//   - APIError conversion matching the application's error format
//
// # Quick Start
//
//	type CountRequest struct {
//	    OffsetMinutes int    `validate:"gt=0"`
//	    Repository    string `validate:"omitempty,repo_name"`
//	}
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    req := CountRequest{...}
//	    if verr := validation.ValidateStruct(&req); verr != nil {
//	        apiErr := verr.ToAPIError()
//	        respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	        return
//	    }
//	    // proceed with valid request
//	}
//
// # Repository Names
//
// The repo_name tag (and the standalone IsValidRepoName function) enforces
// the GitHub fully-qualified repository form:
//   - exactly one '/' separating owner and repo
//   - no '..' sequences, no leading or trailing '/'
//   - each segment starts and ends with an alphanumeric, with '.', '_', '-'
//     allowed in between
//   - owner at most 39 characters, repo at most 100
//
// # Thread Safety
//
// The singleton validator is initialized once and safe for concurrent use:
//
//	validate := validation.GetValidator()  // Thread-safe
//	err := validation.ValidateStruct(&req) // Thread-safe
//
// # See Also
//
//   - internal/api: Request handlers using validation
//   - github.com/go-playground/validator/v10: Underlying library
package validation
