package dto

import (
	"errors"
	"net/http"
	"testing"
)

func TestAPIError(t *testing.T) {
	t.Run("NewAPIError", func(t *testing.T) {
		err := NewAPIError(http.StatusNotFound, ErrorCodeNotFound, "resource not found")
		if err.StatusCode() != http.StatusNotFound {
			t.Errorf("Expected status code %d, got %d", http.StatusNotFound, err.StatusCode())
		}
		if err.Code() != ErrorCodeNotFound {
			t.Errorf("Expected code %s, got %s", ErrorCodeNotFound, err.Code())
		}
		if err.Error() != "resource not found" {
			t.Errorf("Expected message 'resource not found', got '%s'", err.Error())
		}
		if err.Details() == nil {
			t.Error("Expected Details() to return non-nil map")
		}
	})
	t.Run("WithDetails initializes nil map", func(t *testing.T) {
		err := (&APIError{statusCode: http.StatusBadRequest, code: ErrorCodeValidationFailed, message: "test"}).
			WithDetails(map[string]any{"key": "value"})
		if err.Details()["key"] != "value" {
			t.Error("Expected WithDetails to initialize nil map")
		}
	})
	t.Run("Wrap", func(t *testing.T) {
		origErr := errors.New("original error")
		err := Internal("wrapped error").Wrap(origErr)
		if !errors.Is(err, origErr) {
			t.Error("Expected errors.Is to find the original error")
		}
		if err.Error() != "wrapped error: original error" {
			t.Errorf("Error() = %q", err.Error())
		}
	})
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *APIError
		status int
		code   ErrorCode
	}{
		{"NotFound", NotFound("page"), http.StatusNotFound, ErrorCodeNotFound},
		{"RunNotFound", RunNotFound("a1"), http.StatusNotFound, ErrorCodeRunNotFound},
		{"UnknownExport", UnknownExport("pdf"), http.StatusNotFound, ErrorCodeUnknownExport},
		{"BadRequest", BadRequest("bad"), http.StatusBadRequest, ErrorCodeValidationFailed},
		{"MissingField", MissingField("name"), http.StatusBadRequest, ErrorCodeMissingField},
		{"Internal", Internal("boom"), http.StatusInternalServerError, ErrorCodeInternal},
		{"Unavailable", Unavailable("busy"), http.StatusServiceUnavailable, ErrorCodeUnavailable},
		{"PayloadTooLarge", PayloadTooLarge(10), http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge},
		{"RateLimitExceeded", RateLimitExceeded(3), http.StatusTooManyRequests, ErrorCodeRateLimitExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.StatusCode() != tt.status {
				t.Errorf("StatusCode() = %d, want %d", tt.err.StatusCode(), tt.status)
			}
			if tt.err.Code() != tt.code {
				t.Errorf("Code() = %s, want %s", tt.err.Code(), tt.code)
			}
		})
	}
	if got := MissingField("name").Error(); got != "Missing required field: name" {
		t.Errorf("MissingField message = %q", got)
	}
	if got := RateLimitExceeded(3).Details()["retry_after"]; got != 3 {
		t.Errorf("retry_after = %v", got)
	}
}

func TestCreateProjectRequest_Validate(t *testing.T) {
	tests := []struct {
		name  string
		req   CreateProjectRequest
		field string
	}{
		{"ok", CreateProjectRequest{Name: "n", Description: "d", Owner: "o"}, ""},
		{"no name", CreateProjectRequest{Description: "d", Owner: "o"}, "name"},
		{"blank description", CreateProjectRequest{Name: "n", Description: "  ", Owner: "o"}, "description"},
		{"no owner", CreateProjectRequest{Name: "n", Description: "d"}, "owner"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() = %v", err)
				}
				return
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.Code() != ErrorCodeMissingField {
				t.Fatalf("Validate() = %v, want MissingField", err)
			}
			if want := "Missing required field: " + tt.field; apiErr.Error() != want {
				t.Errorf("Error() = %q, want %q", apiErr.Error(), want)
			}
		})
	}
}
