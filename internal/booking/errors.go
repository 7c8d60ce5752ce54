package booking

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrInvalidInput matches every *ValidationError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict means the requested (date, slot) is already booked.
	ErrConflict = errors.New("time slot already booked")
	// ErrUnauthenticated means an owner was required but none was given.
	ErrUnauthenticated = errors.New("authentication required")
)

// ValidationError carries one error per offending input field, keyed by
// the form field name.
type ValidationError struct {
	Fields map[string]error
}

func (e *ValidationError) add(field string, err error) {
	if e.Fields == nil {
		e.Fields = make(map[string]error)
	}
	e.Fields[field] = err
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k].Error()
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Unwrap exposes the field errors so callers can test for a specific
// parse failure with errors.Is.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Fields))
	for _, err := range e.Fields {
		errs = append(errs, err)
	}
	return errs
}

// FieldMessages returns the user-facing message for each field.
func (e *ValidationError) FieldMessages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for k, err := range e.Fields {
		out[k] = err.Error()
	}
	return out
}
