package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for an unknown strategy id.
	ErrNotFound = errors.New("not found")
	// ErrUnknownField is returned when an edit names a field outside the
	// active schema.
	ErrUnknownField = errors.New("unknown field")
)

// ValidationError describes a local input problem. It is raised before any
// request is built and never travels over the wire.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

func (ve *ValidationError) Unwrap() error {
	return ve.Err
}

// NotFound builds the error returned for an unknown strategy or ticker id.
func NotFound(field, id string) error {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%q not found", id),
		Err:     ErrNotFound,
	}
}

// UnknownField builds the error returned for an edit outside the schema.
func UnknownField(name string) error {
	return &ValidationError{
		Field:   name,
		Message: "not part of the active form",
		Err:     ErrUnknownField,
	}
}
