package roster

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by roster operations.
var (
	// ErrNotFound is returned when an index or lookup matches no student.
	ErrNotFound = errors.New("student not found")

	// ErrInvalidInput is matched by every *ValidationError.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError describes a value rejected by a field validator
type ValidationError struct {
	Field  Field
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field < 0 {
		return fmt.Sprintf("invalid input %q: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// IsValidation reports whether err carries a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
