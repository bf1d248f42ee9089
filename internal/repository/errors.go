package repository

import "errors"

var (
	// ErrNotFound is returned when no row matches the lookup, including
	// rows that exist but belong to another user.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint would be violated.
	ErrConflict = errors.New("conflict")
)
