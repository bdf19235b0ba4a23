package domain

import (
	"context"
	"time"
)

// RegistrationState is the lifecycle state of a registration.
type RegistrationState string

const (
	RegistrationActive    RegistrationState = "active"
	RegistrationCancelled RegistrationState = "cancelled"
)

// Registration represents one person's seat on one event. At most one active
// registration may exist per (event, person); re-registering after a
// cancellation creates a new record. CheckinToken is present only while the
// token is unused; it is cleared on consumption.
// swagger:model Registration
type Registration struct {
	ID             string            `json:"id"`
	EventID        string            `json:"event_id"`
	PersonID       string            `json:"person_id"`
	State          RegistrationState `json:"state"`
	Attended       bool              `json:"attended"`
	AttendedAt     *time.Time        `json:"attended_at,omitempty"`
	CheckinToken   *string           `json:"checkin_token,omitempty"`
	TokenExpiresAt *time.Time        `json:"token_expires_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// RegistrationRepository defines storage operations for registrations.
// Methods that change state use conditional updates so concurrent callers
// cannot repeat a transition.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	GetByToken(ctx context.Context, token string) (*Registration, error)
	CountActiveByEventID(ctx context.Context, eventID string) (int, error)
	HasActive(ctx context.Context, eventID, personID string) (bool, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Registration, error)
	ListByPersonID(ctx context.Context, personID string) ([]*Registration, error)
	ListAttendedByEventID(ctx context.Context, eventID string) ([]*Registration, error)
	// SetCancelled flips state active -> cancelled. Returns false when the
	// row exists but was not active.
	SetCancelled(ctx context.Context, id string) (bool, error)
	// SetAttended sets the attendance flag and timestamp and clears the
	// check-in token. Returns false when the registration was already
	// attended or not active.
	SetAttended(ctx context.Context, id string, at time.Time) (bool, error)
	// SetToken stores a freshly minted check-in token and its expiry.
	SetToken(ctx context.Context, id, token string, expiresAt *time.Time) error
	// ClearToken removes the token from the registration only if it still
	// holds exactly this token and has not attended. Returns false when a
	// concurrent consume got there first.
	ClearToken(ctx context.Context, id, token string) (bool, error)
}

// RegistrationLedger enforces the one-active-registration-per-person
// invariant and owns registration state transitions.
type RegistrationLedger interface {
	CountActive(ctx context.Context, eventID string) (int, error)
	HasActive(ctx context.Context, eventID, personID string) (bool, error)
	// AddActive creates a new active registration. Fails with
	// ErrDuplicateRegistration when the person already holds an active seat.
	AddActive(ctx context.Context, eventID, personID string) (*Registration, error)
	// Cancel moves an active registration to cancelled. Fails with
	// ErrNotFound or ErrAlreadyCancelled.
	Cancel(ctx context.Context, registrationID string) (*Registration, error)
	// MarkAttended records a completed check-in. Fails with
	// ErrAlreadyCheckedIn or ErrNotActive.
	MarkAttended(ctx context.Context, registrationID string, at time.Time) (*Registration, error)
	Get(ctx context.Context, registrationID string) (*Registration, error)
	ListByEvent(ctx context.Context, eventID string) ([]*Registration, error)
	ListByPerson(ctx context.Context, personID string) ([]*Registration, error)
}
