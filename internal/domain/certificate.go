package domain

import (
	"context"
	"time"
)

// CertificateTier ranks who issued a certificate and with what weight.
type CertificateTier string

const (
	TierPresence CertificateTier = "presence"
	TierElevated CertificateTier = "elevated"
)

// AuthorityLevel returns the numeric authority level of the tier
// (presence=1, elevated=2). Unknown tiers are level 0.
func (t CertificateTier) AuthorityLevel() int {
	switch t {
	case TierPresence:
		return 1
	case TierElevated:
		return 2
	default:
		return 0
	}
}

// Valid reports whether the tier is one of the known values.
func (t CertificateTier) Valid() bool {
	return t == TierPresence || t == TierElevated
}

// Certificate proves attendance of one registration. Exactly one certificate
// may exist per registration; tier and code are immutable after issuance.
// swagger:model Certificate
type Certificate struct {
	ID               string          `json:"id"`
	RegistrationID   string          `json:"registration_id"`
	Tier             CertificateTier `json:"tier"`
	VerificationCode string          `json:"verification_code"`
	IssuedByID       string          `json:"issued_by_id"`
	IssuedAt         time.Time       `json:"issued_at"`
}

// CertificateRepository defines storage operations for certificates. The
// registration_id uniqueness is a storage constraint; Create returns
// ErrAlreadyIssued on conflict.
type CertificateRepository interface {
	Create(ctx context.Context, cert *Certificate) error
	GetByRegistrationID(ctx context.Context, registrationID string) (*Certificate, error)
	GetByCode(ctx context.Context, code string) (*Certificate, error)
	ExistsByRegistrationID(ctx context.Context, registrationID string) (bool, error)
	ListByPersonID(ctx context.Context, personID string) ([]*Certificate, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Certificate, error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
}

// CertificateIssuer issues at most one certificate per registration. The tier
// reflects the caller's authority and is supplied by the caller; which roles
// may use which tier is enforced at the HTTP boundary, not here.
type CertificateIssuer interface {
	// Issue creates a certificate for an attended registration. When one
	// already exists it is returned alongside ErrAlreadyIssued and is never
	// overwritten. Fails with ErrNotAttended before check-in.
	Issue(ctx context.Context, registrationID, issuerID string, tier CertificateTier) (*Certificate, error)
	// IssueBulk issues certificates for every attended registration of the
	// event that has none yet, skipping existing ones. Returns the count of
	// newly issued certificates.
	IssueBulk(ctx context.Context, eventID, issuerID string, tier CertificateTier) (int, error)
	// VerifyByCode is the public lookup by verification code.
	VerifyByCode(ctx context.Context, code string) (*Certificate, error)
	ListByPerson(ctx context.Context, personID string) ([]*Certificate, error)
	ListByEvent(ctx context.Context, eventID string) ([]*Certificate, error)
}
