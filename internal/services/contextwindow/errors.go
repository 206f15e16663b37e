// File: internal/services/contextwindow/errors.go
package contextwindow

import (
	"errors"
	"fmt"
)

// ErrDataMissing signals that no precomputed evidence exists yet for
// the resolved range. Callers should trigger preprocessing and retry
// rather than treat this as a hard failure.
var ErrDataMissing = errors.New("context-window-data-missing")

type ErrorType string

const (
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypeStore       ErrorType = "STORE"
	ErrTypeDataMissing ErrorType = "DATA_MISSING"
)

type ContextError struct {
	Type      ErrorType
	Operation string
	Message   string
	BookID    uint
	Cause     error
}

func (e *ContextError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("context window %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("context window %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ContextError) Unwrap() error {
	return e.Cause
}

func NewValidationError(operation, msg string) *ContextError {
	return &ContextError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

// NewStoreError wraps an upstream store failure unchanged; the engine
// performs no retry or suppression of its own.
func NewStoreError(operation string, bookID uint, cause error) *ContextError {
	return &ContextError{
		Type:      ErrTypeStore,
		Operation: operation,
		Message:   "evidence store fetch failed",
		BookID:    bookID,
		Cause:     cause,
	}
}

// NewDataMissingError wraps ErrDataMissing so callers can test it with
// errors.Is.
func NewDataMissingError(operation string, bookID uint) *ContextError {
	return &ContextError{
		Type:      ErrTypeDataMissing,
		Operation: operation,
		Message:   "no summaries or chunks exist for the resolved window",
		BookID:    bookID,
		Cause:     ErrDataMissing,
	}
}
