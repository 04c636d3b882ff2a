package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrFeedUnavailable indicates that a feed could not be fetched or parsed.
	// A run treats this as a per-feed failure and continues with the rest.
	ErrFeedUnavailable = errors.New("feed unavailable")

	// ErrScoringTimeout indicates that a scorer backend exceeded its budget
	ErrScoringTimeout = errors.New("scoring timeout")

	// ErrScoringBackend indicates that a scorer backend returned an error
	// or an unparseable response
	ErrScoringBackend = errors.New("scoring backend error")

	// ErrNotificationTransport indicates that every configured push
	// transport failed to deliver
	ErrNotificationTransport = errors.New("notification transport error")

	// ErrConfiguration indicates invalid or missing configuration.
	// This is the only error class that is fatal before the loop starts.
	ErrConfiguration = errors.New("configuration error")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
