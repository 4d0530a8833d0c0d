package entity

import "errors"

var (
	// ErrNotFound is returned when an operation targets a record that does not exist
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when an operation is not allowed in the record's
	// current state (re-approval, disallowed workflow transition, duplicate id)
	ErrConflict = errors.New("operation conflicts with current state")

	// ErrValidation is returned for malformed or missing input
	ErrValidation = errors.New("invalid input")

	// ErrStoreUnavailable is returned when the backing store is unreachable or
	// a store operation timed out; safe to retry with backoff
	ErrStoreUnavailable = errors.New("store unavailable")
)
