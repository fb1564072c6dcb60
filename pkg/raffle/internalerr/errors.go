package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrMissingResource = errors.New("missing resource")
	ErrInvalidCategory = errors.New("invalid category")
	ErrEmptyPool       = errors.New("no tags available - no matching taglists found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidConfig   = errors.New("invalid configuration")
)
