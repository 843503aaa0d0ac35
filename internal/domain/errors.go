package domain

import "errors"

var (
	// ErrActivityNotFound is returned when the activity name is not in the catalog.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrAlreadyRegistered is returned when the participant is already on the roster.
	ErrAlreadyRegistered = errors.New("participant already registered")
	// ErrCapacityExceeded is returned when the roster is full.
	ErrCapacityExceeded = errors.New("activity is at capacity")
	// ErrNotRegistered is returned when unregistering someone who is not on the roster.
	ErrNotRegistered = errors.New("participant not registered")
	// ErrInvalidParticipant is returned for a blank participant identifier.
	ErrInvalidParticipant = errors.New("participant identifier is required")
)

// Outcome labels used for metrics and logs.
const (
	OutcomeOK                = "ok"
	OutcomeNotFound          = "not_found"
	OutcomeAlreadyRegistered = "already_registered"
	OutcomeCapacityExceeded  = "capacity_exceeded"
	OutcomeNotRegistered     = "not_registered"
	OutcomeInvalid           = "invalid_participant"
	OutcomeError             = "error"
)

// OutcomeOf maps an operation error to its outcome label.
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrActivityNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrAlreadyRegistered):
		return OutcomeAlreadyRegistered
	case errors.Is(err, ErrCapacityExceeded):
		return OutcomeCapacityExceeded
	case errors.Is(err, ErrNotRegistered):
		return OutcomeNotRegistered
	case errors.Is(err, ErrInvalidParticipant):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
