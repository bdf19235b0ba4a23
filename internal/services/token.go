package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"campusevents/internal/domain"
)

// tokenPrefix marks check-in tokens in QR payloads and logs.
const tokenPrefix = "CHK-"

type checkinTokenService struct {
	regRepo domain.RegistrationRepository
	now     func() time.Time
}

// NewCheckinTokenService creates the single-use check-in token service.
func NewCheckinTokenService(regRepo domain.RegistrationRepository) domain.CheckinTokenService {
	return &checkinTokenService{regRepo: regRepo, now: time.Now}
}

func (s *checkinTokenService) IssueToken(ctx context.Context, registrationID string, expiresAt *time.Time) (string, error) {
	token := tokenPrefix + uuid.NewString()
	if err := s.regRepo.SetToken(ctx, registrationID, token, expiresAt); err != nil {
		return "", fmt.Errorf("store check-in token: %w", err)
	}
	return token, nil
}

func (s *checkinTokenService) ConsumeToken(ctx context.Context, token string) (string, error) {
	reg, err := s.regRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrTokenNotFound
		}
		return "", fmt.Errorf("look up token: %w", err)
	}

	// An expired token is reported but left in place so an operator can see
	// the stale state.
	if reg.TokenExpiresAt != nil && s.now().After(*reg.TokenExpiresAt) {
		return "", domain.ErrTokenExpired
	}
	if reg.Attended {
		return "", domain.ErrAlreadyConsumed
	}

	// Single-use: the conditional clear loses against a concurrent consume.
	ok, err := s.regRepo.ClearToken(ctx, reg.ID, token)
	if err != nil {
		return "", fmt.Errorf("clear check-in token: %w", err)
	}
	if !ok {
		return "", domain.ErrAlreadyConsumed
	}
	return reg.ID, nil
}
