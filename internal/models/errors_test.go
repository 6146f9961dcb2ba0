package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		sentinel   error
		code       string
		statusCode int
		message    string
	}{
		{"not found", NewNotFoundError("order"), ErrNotFound, "NOT_FOUND", 404, "order not found"},
		{"validation", NewValidationError("quantity", "must not be negative"), ErrInvalidInput, "VALIDATION_ERROR", 400, "invalid quantity: must not be negative"},
		{"conflict", NewConflictError("order changed since the session started"), ErrConflict, "CONFLICT", 409, "order changed since the session started"},
		{"not applicable", NewNotApplicableError("session already resolved"), ErrNotApplicable, "NOT_APPLICABLE", 409, "session already resolved"},
		{"upstream", NewUpstreamError("catalog service", errors.New("connection refused")), ErrUpstream, "UPSTREAM_ERROR", 502, "catalog service request failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.sentinel)
			}
			if tt.err.Code != tt.code {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.code)
			}
			if tt.err.StatusCode != tt.statusCode {
				t.Errorf("StatusCode = %d, want %d", tt.err.StatusCode, tt.statusCode)
			}
			if tt.err.Message != tt.message {
				t.Errorf("Message = %q, want %q", tt.err.Message, tt.message)
			}
		})
	}
}

func TestAPIErrorUnwrapsThroughWrapping(t *testing.T) {
	inner := NewConflictError("an active change session already exists for this order")
	wrapped := fmt.Errorf("starting session: %w", inner)

	if !errors.Is(wrapped, ErrConflict) {
		t.Error("wrapped error lost its conflict sentinel")
	}

	var apiErr *APIError
	if !errors.As(wrapped, &apiErr) {
		t.Fatal("errors.As failed to recover *APIError")
	}
	if apiErr.StatusCode != 409 {
		t.Errorf("StatusCode = %d, want 409", apiErr.StatusCode)
	}
}

func TestInternalErrorKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := NewInternalError(cause)

	if !errors.Is(err, cause) {
		t.Error("internal error lost its cause")
	}
	if err.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", err.StatusCode)
	}
}
