package domain

import "errors"

// Sentinel errors shared across the registration core. The HTTP layer maps
// these to status codes: ErrNotFound -> 404, the conflict family -> 409,
// ErrTokenExpired -> 410, validation errors -> 400, anything else -> 500.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")

	// Conflict family: the request names a real entity but its state
	// forbids the operation. Never retried automatically.
	ErrDuplicateRegistration = errors.New("person already has an active registration for this event")
	ErrAlreadyCancelled      = errors.New("registration is already cancelled")
	ErrAlreadyCheckedIn      = errors.New("check-in was already completed for this registration")
	ErrNotActive             = errors.New("registration is not active")
	ErrAlreadyIssued         = errors.New("a certificate was already issued for this registration")
	ErrNotAttended           = errors.New("registration has no completed check-in")

	// Token lifecycle.
	ErrTokenNotFound   = errors.New("check-in token not found")
	ErrTokenExpired    = errors.New("check-in token expired")
	ErrAlreadyConsumed = errors.New("check-in token was already consumed")

	// Validation.
	ErrEventNotOpen = errors.New("event is not open for registration")

	// ErrInternal marks state-machine violations that should not occur,
	// e.g. a consumed token whose registration cannot be marked attended.
	ErrInternal = errors.New("internal inconsistency")
)
