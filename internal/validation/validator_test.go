// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	// Test that GetValidator returns the same instance
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}

	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

func TestIsValidRepoName(t *testing.T) {
	tests := []struct {
		name string
		repo string
		want bool
	}{
		{"simple", "golang/go", true},
		{"hyphenated owner", "open-telemetry/opentelemetry-go", true},
		{"dots and underscores", "my.org/my_repo.v2", true},
		{"single char segments", "a/b", true},
		{"owner at limit", strings.Repeat("a", 39) + "/repo", true},
		{"repo at limit", "owner/" + strings.Repeat("b", 100), true},

		{"empty", "", false},
		{"no slash", "golanggo", false},
		{"two slashes", "golang/go/src", false},
		{"leading slash", "/golang/go", false},
		{"trailing slash", "golang/go/", false},
		{"path traversal", "../etc/passwd", false},
		{"dotdot inside segment", "gol..ang/go", false},
		{"empty owner", "/go", false},
		{"empty repo", "golang/", false},
		{"leading hyphen", "-golang/go", false},
		{"trailing dot", "golang/go.", false},
		{"space in segment", "gol ang/go", false},
		{"owner over limit", strings.Repeat("a", 40) + "/repo", false},
		{"repo over limit", "owner/" + strings.Repeat("b", 101), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidRepoName(tt.repo); got != tt.want {
				t.Errorf("IsValidRepoName(%q) = %v, want %v", tt.repo, got, tt.want)
			}
		})
	}
}

// repoRequest exercises the registered repo_name tag.
type repoRequest struct {
	Repository string `validate:"required,repo_name"`
}

func TestRepoNameTag(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		if err := ValidateStruct(&repoRequest{Repository: "golang/go"}); err != nil {
			t.Errorf("ValidateStruct() returned unexpected error: %v", err)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		err := ValidateStruct(&repoRequest{Repository: "not-a-repo"})
		if err == nil {
			t.Fatal("Expected validation error for malformed repository name")
		}
		errs := err.Errors()
		if len(errs) != 1 {
			t.Fatalf("Expected 1 validation error, got %d", len(errs))
		}
		if errs[0].Tag() != "repo_name" {
			t.Errorf("Expected tag 'repo_name', got %q", errs[0].Tag())
		}
	})
}

// windowRequest covers the numeric tags used by the query endpoints.
type windowRequest struct {
	OffsetMinutes   int `validate:"gt=0"`
	Hours           int `validate:"gte=1,lte=168"`
	IntervalMinutes int `validate:"gte=1,lte=1440"`
}

func TestValidateStruct_WindowBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     windowRequest
		wantField string
		wantTag   string
	}{
		{
			name:  "valid window",
			input: windowRequest{OffsetMinutes: 10, Hours: 24, IntervalMinutes: 60},
		},
		{
			name:  "bounds inclusive",
			input: windowRequest{OffsetMinutes: 1, Hours: 168, IntervalMinutes: 1440},
		},
		{
			name:      "zero offset",
			input:     windowRequest{OffsetMinutes: 0, Hours: 24, IntervalMinutes: 60},
			wantField: "OffsetMinutes",
			wantTag:   "gt",
		},
		{
			name:      "hours over a week",
			input:     windowRequest{OffsetMinutes: 10, Hours: 169, IntervalMinutes: 60},
			wantField: "Hours",
			wantTag:   "lte",
		},
		{
			name:      "interval over a day",
			input:     windowRequest{OffsetMinutes: 10, Hours: 24, IntervalMinutes: 1441},
			wantField: "IntervalMinutes",
			wantTag:   "lte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("ValidateStruct() returned unexpected error: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatal("Expected validation error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("Expected 1 validation error, got %d", len(errs))
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Expected field %q, got %q", tt.wantField, errs[0].Field())
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Expected tag %q, got %q", tt.wantTag, errs[0].Tag())
			}
		})
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	err := ValidateStruct(&windowRequest{OffsetMinutes: 0, Hours: 24, IntervalMinutes: 60})
	if err == nil {
		t.Fatal("Expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected code 'VALIDATION_ERROR', got %q", apiErr.Code)
	}
	if apiErr.Message != "OffsetMinutes must be greater than 0" {
		t.Errorf("Unexpected message: %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "OffsetMinutes" {
		t.Errorf("Expected field detail 'OffsetMinutes', got %v", apiErr.Details["field"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&windowRequest{OffsetMinutes: 0, Hours: 0, IntervalMinutes: 0})
	if err == nil {
		t.Fatal("Expected validation errors")
	}
	if len(err.Errors()) != 3 {
		t.Fatalf("Expected 3 validation errors, got %d", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected code 'VALIDATION_ERROR', got %q", apiErr.Code)
	}

	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("Expected fields detail, got %T", apiErr.Details["fields"])
	}
	if len(fields) != 3 {
		t.Errorf("Expected 3 field entries, got %d", len(fields))
	}
	if !strings.Contains(apiErr.Message, ";") {
		t.Errorf("Expected combined message, got %q", apiErr.Message)
	}
}

func TestTranslateError_RepoNameMessage(t *testing.T) {
	err := ValidateStruct(&repoRequest{Repository: "bad//name"})
	if err == nil {
		t.Fatal("Expected validation error")
	}
	msg := err.Errors()[0].Error()
	if msg != "Repository must be a repository name in owner/repo format" {
		t.Errorf("Unexpected message: %q", msg)
	}
}
