package store

import "errors"

// Taxonomy surfaced synchronously to write callers. All of these are
// caller-correctable; none are retried.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidReference = errors.New("invalid reference")
	ErrValidation       = errors.New("validation failed")
)
