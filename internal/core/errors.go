package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatValidation ErrorCategory = "validation" // Invalid input
	ErrCatState      ErrorCategory = "state"      // Conversation state conflict
	ErrCatNetwork    ErrorCategory = "network"    // Network connectivity
	ErrCatTimeout    ErrorCategory = "timeout"    // Request timed out
	ErrCatBackend    ErrorCategory = "backend"    // Assistant endpoint returned non-2xx
	ErrCatInternal   ErrorCategory = "internal"   // Unexpected internal error
)

// DomainError represents a structured error from the domain layer.
type DomainError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches on category and code so sentinel comparisons work with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// ErrInvalidMode rejects a mode identifier outside the closed set.
func ErrInvalidMode(id string) *DomainError {
	return &DomainError{
		Category: ErrCatValidation,
		Code:     "INVALID_MODE",
		Message:  fmt.Sprintf("unknown support mode %q", id),
	}
}

// ErrModeAlreadySet rejects a second mode selection.
func ErrModeAlreadySet(current Mode) *DomainError {
	return &DomainError{
		Category: ErrCatState,
		Code:     "MODE_ALREADY_SET",
		Message:  fmt.Sprintf("mode already set to %q", current),
	}
}

// ErrBusy rejects a submission while a request is in flight.
func ErrBusy() *DomainError {
	return &DomainError{
		Category:  ErrCatState,
		Code:      "BUSY",
		Message:   "an assistant request is already in flight",
		Retryable: true,
	}
}

// ErrNetwork creates a connectivity error.
func ErrNetwork(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatNetwork,
		Code:      "NETWORK",
		Message:   message,
		Retryable: true,
	}
}

// ErrTimeout creates a timeout error.
func ErrTimeout(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatTimeout,
		Code:      "TIMEOUT",
		Message:   message,
		Retryable: true,
	}
}

// ErrBackend creates an error for a non-2xx assistant response. When the
// response carried no usable body the message falls back to
// "Backend error (status)".
func ErrBackend(status int, message string) *DomainError {
	if message == "" {
		message = fmt.Sprintf("Backend error (%d)", status)
	}
	return &DomainError{
		Category:  ErrCatBackend,
		Code:      fmt.Sprintf("HTTP_%d", status),
		Message:   message,
		Retryable: status >= 500,
	}
}

// ErrInternal creates an unexpected internal error.
func ErrInternal(message string) *DomainError {
	return &DomainError{
		Category: ErrCatInternal,
		Code:     "INTERNAL",
		Message:  message,
	}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Retryable
	}
	return false
}

// CategoryOf extracts the category of a domain error, or ErrCatInternal for
// anything else.
func CategoryOf(err error) ErrorCategory {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Category
	}
	return ErrCatInternal
}
