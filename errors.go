package instrument

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this module wraps exactly one of them,
// test with errors.Is.
var (
	// ErrNotFound reports an unknown id, symbol or alias.
	ErrNotFound = errors.New("not found")
	// ErrConflict reports an alias or symbol already bound to another instrument.
	ErrConflict = errors.New("conflict")
	// ErrInvalidArgument reports a caller error: non-positive quantity, malformed query...
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConfiguration reports invalid catalog metadata (bad pip size, contract size...).
	ErrConfiguration = errors.New("configuration error")
	// ErrEmptyCatalog reports a resolver without usable catalog data.
	ErrEmptyCatalog = fmt.Errorf("empty or uninitialized catalog: %w", ErrConfiguration)
)

// FieldError names the field responsible for an error.
type FieldError struct {
	Field  string // e.g. "quantity", "pip_size"
	Reason string
	Err    error // the error kind
}

// NewFieldError returns a FieldError of kind 'kind'.
func NewFieldError(kind error, field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...), Err: kind}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Field, e.Reason, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
