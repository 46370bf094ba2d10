package store

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCode classifies store failures so callers can branch on them
// without string matching.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a referenced row does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeDimensionMismatch indicates an embedding vector length
	// disagrees with the store-wide dimensionality.
	ErrCodeDimensionMismatch ErrorCode = "DIMENSION_MISMATCH"
	// ErrCodeConstraintViolation indicates a store-level constraint failure,
	// e.g. a malformed date range or an out-of-range search threshold.
	ErrCodeConstraintViolation ErrorCode = "CONSTRAINT_VIOLATION"
	// ErrCodeConnectionFailed indicates a transient infrastructure failure.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
)

// StoreError is a structured error carrying a stable code.
// All store operations surface failures as *StoreError, unmodified,
// except HealthCheck which converts every failure into false.
type StoreError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// NotFound creates a not found error.
func NotFound(format string, args ...any) *StoreError {
	return &StoreError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// DimensionMismatch creates a dimension mismatch error.
func DimensionMismatch(want, got int) *StoreError {
	return &StoreError{
		Code:    ErrCodeDimensionMismatch,
		Message: fmt.Sprintf("embedding dimension mismatch: store expects %d, got %d", want, got),
	}
}

// ConstraintViolation creates a constraint violation error.
func ConstraintViolation(format string, args ...any) *StoreError {
	return &StoreError{Code: ErrCodeConstraintViolation, Message: fmt.Sprintf(format, args...)}
}

// ConnectionFailed wraps a transient infrastructure failure.
func ConnectionFailed(cause error, msg string) *StoreError {
	return &StoreError{Code: ErrCodeConnectionFailed, Message: msg, Cause: cause}
}

// WrapError attaches a code to an existing error.
func WrapError(cause error, code ErrorCode, msg string) *StoreError {
	return &StoreError{Code: code, Message: msg, Cause: cause}
}

// IsCode reports whether err carries the given store error code.
func IsCode(err error, code ErrorCode) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code == code
	}
	return false
}
