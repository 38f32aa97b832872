package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned when an optimistic update lost the race.
	ErrVersionConflict = errors.New("version conflict")
)
