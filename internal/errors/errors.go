package errors

import (
	"errors"
	"fmt"
)

// WikiError is the structured error type for wikidex.
// It carries a stable code, a category, and a severity so callers can decide
// between abort, retry, and degraded operation without string matching.
type WikiError struct {
	// Code is the unique error code (e.g., "ERR_203_PUBLISH_FAILED").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Storage, Embedding, ...).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *WikiError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *WikiError) Unwrap() error {
	return e.Cause
}

// Is matches WikiErrors by code so errors.Is works across wrap boundaries.
func (e *WikiError) Is(target error) bool {
	if t, ok := target.(*WikiError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *WikiError) WithDetail(key, value string) *WikiError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new WikiError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *WikiError {
	return &WikiError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a WikiError from an existing error.
// Returns nil when err is nil.
func Wrap(code string, err error) *WikiError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// StorageError creates a storage-related error.
func StorageError(message string, cause error) *WikiError {
	return New(ErrCodeStorageFailed, message, cause)
}

// PublishError creates a fatal version-publish error.
func PublishError(message string, cause error) *WikiError {
	return New(ErrCodePublishFailed, message, cause)
}

// EmbeddingUnavailable creates the degraded-mode embedding error.
// Callers must treat it as a signal to skip the semantic stream, not to fail.
func EmbeddingUnavailable(message string, cause error) *WikiError {
	return New(ErrCodeEmbedderUnavailable, message, cause)
}

// QueryError creates a query validation error.
func QueryError(message string, cause error) *WikiError {
	return New(ErrCodeInvalidQuery, message, cause)
}

// IsUnavailable reports whether err is an embedding-unavailable error.
func IsUnavailable(err error) bool {
	var we *WikiError
	if errors.As(err, &we) {
		return we.Code == ErrCodeEmbedderUnavailable
	}
	return false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var we *WikiError
	if errors.As(err, &we) {
		return we.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors must abort the current operation.
func IsFatal(err error) bool {
	var we *WikiError
	if errors.As(err, &we) {
		return we.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a WikiError anywhere in the chain.
// Returns empty string for non-WikiErrors.
func GetCode(err error) string {
	var we *WikiError
	if errors.As(err, &we) {
		return we.Code
	}
	return ""
}
