package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases.
// Use errors.Is() to check against these.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidPolicy  = errors.New("invalid policy")
	ErrInvalidProduct = errors.New("invalid product state")
	ErrSessionClosed  = errors.New("session closed")
	ErrUpstreamError  = errors.New("upstream error")
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

// NewNotFoundError creates a 404 error for missing resources.
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: 404,
		Err:        ErrNotFound,
	}
}

// NewValidationError creates a 400 error for invalid input.
func NewValidationError(field, reason string) *APIError {
	return &APIError{
		Code:       "VALIDATION_ERROR",
		Message:    fmt.Sprintf("invalid %s: %s", field, reason),
		StatusCode: 400,
		Err:        ErrInvalidRequest,
	}
}

// NewInvalidPolicyError creates a 422 error for a policy update that
// violates the ordering invariant. Names the offending field so admins
// can see which value was rejected.
func NewInvalidPolicyError(field, reason string) *APIError {
	return &APIError{
		Code:       "INVALID_POLICY",
		Message:    fmt.Sprintf("policy field %s: %s", field, reason),
		StatusCode: 422,
		Err:        ErrInvalidPolicy,
	}
}

// NewInvalidProductError creates a 422 error for missing or malformed
// product data. The negotiation turn is rejected; the session is untouched.
func NewInvalidProductError(reason string) *APIError {
	return &APIError{
		Code:       "INVALID_PRODUCT",
		Message:    reason,
		StatusCode: 422,
		Err:        ErrInvalidProduct,
	}
}

// NewSessionClosedError creates a 409 error for input to a terminal session.
// A resolved or abandoned negotiation is immutable; the caller must open a
// fresh session to haggle again over the same product.
func NewSessionClosedError(status string) *APIError {
	return &APIError{
		Code:       "SESSION_CLOSED",
		Message:    fmt.Sprintf("negotiation already %s", status),
		StatusCode: 409,
		Err:        ErrSessionClosed,
	}
}

// NewUpstreamError creates a 502 error for collaborator failures.
func NewUpstreamError(service string, err error) *APIError {
	return &APIError{
		Code:       "UPSTREAM_ERROR",
		Message:    fmt.Sprintf("%s request failed", service),
		StatusCode: 502,
		Err:        fmt.Errorf("%w: %v", ErrUpstreamError, err),
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
