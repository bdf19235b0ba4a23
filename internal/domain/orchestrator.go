package domain

import "context"

// RegisterStatus is the outcome of a registration attempt.
type RegisterStatus string

const (
	StatusRegistered RegisterStatus = "registered"
	StatusWaitlisted RegisterStatus = "waitlisted"
)

// RegisterResult is the outcome of Register: either a confirmed seat with a
// check-in token, or a waitlist position.
// swagger:model RegisterResult
type RegisterResult struct {
	Status       RegisterStatus `json:"status"`
	Registration *Registration  `json:"registration,omitempty"`
	Token        string         `json:"token,omitempty"`
	QRCodeURL    string         `json:"qr_code_url,omitempty"`
	Position     int            `json:"position,omitempty"`
}

// CancelResult is the outcome of Cancel: the cancelled registration and, when
// the waitlist was non-empty, the promoted head entry's new registration.
// swagger:model CancelResult
type CancelResult struct {
	Cancelled *Registration `json:"cancelled"`
	Promoted  *Registration `json:"promoted,omitempty"`
}

// Transactor runs fn inside a single storage transaction. Repository calls
// made with the ctx passed to fn join that transaction; when fn returns an
// error nothing is committed.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RegistrationOrchestrator coordinates registry, ledger, waitlist, token
// service and certificate issuer. It is the sole writer of cross-entity
// invariants (capacity, FIFO promotion, token lifecycle, certificate
// uniqueness); external callers go through it rather than the components.
type RegistrationOrchestrator interface {
	// Register attempts a registration, diverting overflow to the waitlist.
	// Fails with ErrNotFound, ErrEventNotOpen or ErrDuplicateRegistration.
	Register(ctx context.Context, eventID, personID string) (*RegisterResult, error)
	// Cancel cancels a registration and promotes the waitlist head into the
	// freed slot, minting it a fresh token. A failed promotion surfaces the
	// error and leaves the entry in place; it is never silently skipped.
	Cancel(ctx context.Context, registrationID string) (*CancelResult, error)
	// CheckIn consumes the token and marks the owning registration attended.
	CheckIn(ctx context.Context, token string) (*Registration, error)
	IssueCertificate(ctx context.Context, registrationID, issuerID string, tier CertificateTier) (*Certificate, error)
	IssueCertificatesForEvent(ctx context.Context, eventID, issuerID string, tier CertificateTier) (int, error)
}
