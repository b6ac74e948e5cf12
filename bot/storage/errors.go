package storage

import "errors"

var (
	// ErrInvalidAmount rejects non-positive amounts before they reach the database.
	ErrInvalidAmount = errors.New("storage: amount must be positive")
	// ErrMissingReference indicates a dangling user, account or category reference.
	ErrMissingReference = errors.New("storage: referenced row does not exist")
	// ErrNotFound is returned by single-row lookups with no match.
	ErrNotFound = errors.New("storage: not found")
)
