package store

import "errors"

var (
	// ErrNotFound is returned for an unknown bin or schedule identifier.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyCompleted is returned when completing a schedule that is already completed.
	ErrAlreadyCompleted = errors.New("schedule already completed")

	// ErrDuplicateID is returned when a seed contains the same identifier twice.
	ErrDuplicateID = errors.New("duplicate identifier")
)
