package services

import (
	"fmt"

	"github.com/dmitrijs2005/pennywise/internal/client/client"
)

// ValidationError reports input refused before any network call. It matches
// client.ErrValidation under errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return client.ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
