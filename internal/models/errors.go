package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the staging protocol's failure taxonomy.
// Use errors.Is() to check against these.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrConflict      = errors.New("conflict")
	ErrNotApplicable = errors.New("not applicable")
	ErrUpstream      = errors.New("upstream error")
)

// APIError represents a structured error for API responses.
// Implements error interface and supports unwrapping.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"` // HTTP status, not serialized
	Err        error  `json:"-"` // Wrapped error, not serialized
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a 404 error for missing or stale resources.
// A stale session id is a NotFound: the caller must re-discover the
// active session, not retry blindly.
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: 404,
		Err:        ErrNotFound,
	}
}

// NewValidationError creates a 400 error for invalid input.
// Validation failures are rejected at the boundary and never reach the
// store or the network.
func NewValidationError(field, reason string) *APIError {
	return &APIError{
		Code:       "VALIDATION_ERROR",
		Message:    fmt.Sprintf("invalid %s: %s", field, reason),
		StatusCode: 400,
		Err:        ErrInvalidInput,
	}
}

// NewConflictError creates a 409 error for protocol conflicts: a second
// session start on an order that already has one, or a version mismatch
// at confirm time.
func NewConflictError(reason string) *APIError {
	return &APIError{
		Code:       "CONFLICT",
		Message:    reason,
		StatusCode: 409,
		Err:        ErrConflict,
	}
}

// NewNotApplicableError creates a 409 error for lifecycle operations
// that no longer apply because the resource progressed past the state
// the operation targets. Drives the exchange cancel fallback.
func NewNotApplicableError(reason string) *APIError {
	return &APIError{
		Code:       "NOT_APPLICABLE",
		Message:    reason,
		StatusCode: 409,
		Err:        ErrNotApplicable,
	}
}

// NewUpstreamError creates a 502 error for collaborator failures.
func NewUpstreamError(service string, err error) *APIError {
	return &APIError{
		Code:       "UPSTREAM_ERROR",
		Message:    fmt.Sprintf("%s request failed", service),
		StatusCode: 502,
		Err:        fmt.Errorf("%w: %v", ErrUpstream, err),
	}
}

// NewInternalError creates a 500 error for unexpected failures.
func NewInternalError(err error) *APIError {
	return &APIError{
		Code:       "INTERNAL_ERROR",
		Message:    "an internal error occurred",
		StatusCode: 500,
		Err:        err,
	}
}
