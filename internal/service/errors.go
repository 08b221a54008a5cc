package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for the chat service. Handlers map these onto HTTP status
// codes, so chat failures caused by the LLM backend stay distinguishable from
// bad requests.
var (
	// ErrInvalidInput is returned when a chat request fails validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrExternalService is returned when the LLM backend call fails.
	ErrExternalService = errors.New("external service error")
)

// ValidationError reports which field of a chat request was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
