package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every ValidationError through errors.Is
var ErrValidation = errors.New("validation failed")

// ValidationError reports a missing or malformed required field.
// It is surfaced to callers as a rejected request and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsValidation reports whether err (or anything it wraps) is a ValidationError
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
