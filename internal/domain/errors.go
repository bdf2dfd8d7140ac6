// Package domain contains the core domain models and types.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure cases.
var (
	// ErrValidation indicates the submission failed one or more checks.
	ErrValidation = errors.New("submission failed validation")

	// ErrDeliveryFailed indicates at least one notification send failed.
	ErrDeliveryFailed = errors.New("notification delivery failed")

	// ErrMailTimeout indicates the email provider did not respond in time.
	ErrMailTimeout = errors.New("email provider timeout")

	// ErrMailUnavailable indicates the email provider is not available.
	ErrMailUnavailable = errors.New("email provider unavailable")

	// ErrAITimeout indicates the AI service did not respond in time.
	ErrAITimeout = errors.New("AI service timeout")

	// ErrAIUnavailable indicates the AI service is not available.
	ErrAIUnavailable = errors.New("AI service unavailable")

	// ErrInvalidAIResponse indicates the AI response failed validation.
	ErrInvalidAIResponse = errors.New("invalid AI response format")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrUnknownSession indicates the chat session ID is absent or expired.
	ErrUnknownSession = errors.New("unknown chat session")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// IntakeError wraps an error with additional context.
type IntakeError struct {
	// Op is the operation that failed.
	Op string

	// Err is the underlying error.
	Err error

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *IntakeError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *IntakeError) Unwrap() error {
	return e.Err
}

// WrapError creates a new IntakeError with context.
func WrapError(op string, err error, retryable bool) *IntakeError {
	return &IntakeError{
		Op:        op,
		Err:       err,
		Retryable: retryable,
	}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var ie *IntakeError
	if errors.As(err, &ie) {
		return ie.Retryable
	}
	return false
}
