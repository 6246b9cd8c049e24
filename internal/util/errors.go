package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrOutOfRange indicates a row-buffer column index beyond the width ceiling
	ErrOutOfRange = errors.New("column index out of range")

	// ErrMalformedTemplate indicates a template's persisted headers or mappings cannot be parsed
	ErrMalformedTemplate = errors.New("malformed template")

	// ErrUnresolvedMapping indicates a required canonical field has no resolvable source column
	ErrUnresolvedMapping = errors.New("unresolved mapping")

	// ErrValidation indicates a manual entry failed required-field or referential checks
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a required record was not found
	ErrNotFound = errors.New("not found")

	// ErrRestricted indicates a delete was blocked by existing references
	ErrRestricted = errors.New("delete restricted by existing references")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")
)
