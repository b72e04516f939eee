package validate

import (
	"errors"
	"fmt"
)

// ValidationError is returned by write operations when the chain fails.
// Message is the first failing rule's message.
type ValidationError struct {
	Entity  string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s", e.Entity, e.Message)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
