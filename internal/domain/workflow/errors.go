package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a trigger is not permitted in the
	// current state
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a state is not a known workflow state
	ErrInvalidState = errors.New("invalid state")
)
