package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusevents/internal/domain"
)

type certificateIssuer struct {
	certRepo domain.CertificateRepository
	regRepo  domain.RegistrationRepository
}

// NewCertificateIssuer creates the issuer that guarantees at most one
// certificate per registration.
func NewCertificateIssuer(certRepo domain.CertificateRepository, regRepo domain.RegistrationRepository) domain.CertificateIssuer {
	return &certificateIssuer{certRepo: certRepo, regRepo: regRepo}
}

func (s *certificateIssuer) Issue(ctx context.Context, registrationID, issuerID string, tier domain.CertificateTier) (*domain.Certificate, error) {
	if !tier.Valid() {
		return nil, domain.ErrInvalidInput
	}

	if existing, err := s.certRepo.GetByRegistrationID(ctx, registrationID); err == nil {
		// Never overwritten, tier stays as issued. The existing certificate
		// is returned so callers can show it.
		return existing, domain.ErrAlreadyIssued
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("look up certificate: %w", err)
	}

	reg, err := s.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if !reg.Attended {
		return nil, domain.ErrNotAttended
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, fmt.Errorf("generate verification code: %w", err)
	}
	cert := &domain.Certificate{
		RegistrationID:   registrationID,
		Tier:             tier,
		VerificationCode: code,
		IssuedByID:       issuerID,
		IssuedAt:         time.Now(),
	}
	if err := s.certRepo.Create(ctx, cert); err != nil {
		if errors.Is(err, domain.ErrAlreadyIssued) {
			// Lost a race against a concurrent issue; report the winner.
			if existing, getErr := s.certRepo.GetByRegistrationID(ctx, registrationID); getErr == nil {
				return existing, domain.ErrAlreadyIssued
			}
			return nil, domain.ErrAlreadyIssued
		}
		return nil, fmt.Errorf("create certificate: %w", err)
	}
	return cert, nil
}

func (s *certificateIssuer) IssueBulk(ctx context.Context, eventID, issuerID string, tier domain.CertificateTier) (int, error) {
	if !tier.Valid() {
		return 0, domain.ErrInvalidInput
	}

	regs, err := s.regRepo.ListAttendedByEventID(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("list attended registrations: %w", err)
	}

	issued := 0
	for _, reg := range regs {
		_, err := s.Issue(ctx, reg.ID, issuerID, tier)
		if err != nil {
			// Existing certificates are skipped, not failures.
			if errors.Is(err, domain.ErrAlreadyIssued) {
				continue
			}
			return issued, err
		}
		issued++
	}
	return issued, nil
}

func (s *certificateIssuer) VerifyByCode(ctx context.Context, code string) (*domain.Certificate, error) {
	return s.certRepo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

func (s *certificateIssuer) ListByPerson(ctx context.Context, personID string) ([]*domain.Certificate, error) {
	return s.certRepo.ListByPersonID(ctx, personID)
}

func (s *certificateIssuer) ListByEvent(ctx context.Context, eventID string) ([]*domain.Certificate, error) {
	return s.certRepo.ListByEventID(ctx, eventID)
}

// generateVerificationCode returns 16 uppercase hex characters from a CSPRNG.
func generateVerificationCode() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}
