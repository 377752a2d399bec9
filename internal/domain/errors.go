package domain

import "errors"

var (
	// ErrNotFound is returned when an operation references an id absent from the catalog.
	ErrNotFound = errors.New("item not found")

	// ErrValidationFailed is returned for requests the catalog refuses to apply.
	ErrValidationFailed = errors.New("validation failed")
)
