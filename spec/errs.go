package spec

import "errors"

var (
	// ErrSchema is returned for malformed schema descriptions.
	ErrSchema = errors.New("schema error")
	// ErrInvalidValue is returned when a literal does not satisfy a value
	// constraint.
	ErrInvalidValue = errors.New("invalid value")
)
