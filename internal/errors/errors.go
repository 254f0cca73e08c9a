package errors

import (
	"context"
	"errors"
	"fmt"
)

// Domain-specific error types
var (
	// ErrStoreUnavailable indicates the column store could not be reached
	// or did not answer in time
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates a missing or unparseable request field
	ErrInvalidInput = errors.New("invalid input")

	// ErrPartialDelivery indicates a send reached only some of its folders
	ErrPartialDelivery = errors.New("message partially delivered")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal server error")
)

// Error codes for API responses
const (
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidInput     = "INVALID_INPUT"
	CodePartialDelivery  = "PARTIAL_DELIVERY"
	CodeInternalError    = "INTERNAL_ERROR"
)

// AppError represents an application error with context
type AppError struct {
	Err     error
	Message string
	Code    string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(err error, message string, code string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}

// InvalidInput returns an ErrInvalidInput describing the offending field
func InvalidInput(field, reason string) error {
	return NewAppError(ErrInvalidInput, fmt.Sprintf("%s %s", field, reason), CodeInvalidInput)
}

// Unavailable wraps a store failure so that it matches ErrStoreUnavailable
// while keeping the driver error in the chain
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s: %w: %w", op, ErrStoreUnavailable, err)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput checks if the error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsStoreUnavailable reports whether err came from an unreachable or slow store.
// Context deadline errors count as unavailability.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, context.DeadlineExceeded)
}

// GetErrorCode returns the appropriate error code for an error
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}
	switch {
	case IsInvalidInput(err):
		return CodeInvalidInput
	case IsNotFound(err):
		return CodeNotFound
	case errors.Is(err, ErrPartialDelivery):
		return CodePartialDelivery
	case IsStoreUnavailable(err):
		return CodeStoreUnavailable
	default:
		return CodeInternalError
	}
}
