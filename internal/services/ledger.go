package services

import (
	"context"
	"fmt"
	"time"

	"campusevents/internal/domain"
)

type registrationLedger struct {
	regRepo domain.RegistrationRepository
}

// NewRegistrationLedger creates the ledger that owns registration state
// transitions and the one-active-seat-per-person invariant.
func NewRegistrationLedger(regRepo domain.RegistrationRepository) domain.RegistrationLedger {
	return &registrationLedger{regRepo: regRepo}
}

func (l *registrationLedger) CountActive(ctx context.Context, eventID string) (int, error) {
	return l.regRepo.CountActiveByEventID(ctx, eventID)
}

func (l *registrationLedger) HasActive(ctx context.Context, eventID, personID string) (bool, error) {
	return l.regRepo.HasActive(ctx, eventID, personID)
}

func (l *registrationLedger) AddActive(ctx context.Context, eventID, personID string) (*domain.Registration, error) {
	has, err := l.regRepo.HasActive(ctx, eventID, personID)
	if err != nil {
		return nil, fmt.Errorf("check active registration: %w", err)
	}
	if has {
		return nil, domain.ErrDuplicateRegistration
	}

	reg := &domain.Registration{
		EventID:   eventID,
		PersonID:  personID,
		State:     domain.RegistrationActive,
		CreatedAt: time.Now(),
	}
	// The partial unique index backs up this check; a race surfaces as
	// ErrDuplicateRegistration from Create.
	if err := l.regRepo.Create(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func (l *registrationLedger) Cancel(ctx context.Context, registrationID string) (*domain.Registration, error) {
	reg, err := l.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.State == domain.RegistrationCancelled {
		return nil, domain.ErrAlreadyCancelled
	}
	ok, err := l.regRepo.SetCancelled(ctx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("cancel registration: %w", err)
	}
	if !ok {
		return nil, domain.ErrAlreadyCancelled
	}
	reg.State = domain.RegistrationCancelled
	return reg, nil
}

func (l *registrationLedger) MarkAttended(ctx context.Context, registrationID string, at time.Time) (*domain.Registration, error) {
	reg, err := l.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.State != domain.RegistrationActive {
		return nil, domain.ErrNotActive
	}
	if reg.Attended {
		return nil, domain.ErrAlreadyCheckedIn
	}
	ok, err := l.regRepo.SetAttended(ctx, registrationID, at)
	if err != nil {
		return nil, fmt.Errorf("mark attended: %w", err)
	}
	if !ok {
		return nil, domain.ErrAlreadyCheckedIn
	}
	reg.Attended = true
	reg.AttendedAt = &at
	reg.CheckinToken = nil
	reg.TokenExpiresAt = nil
	return reg, nil
}

func (l *registrationLedger) Get(ctx context.Context, registrationID string) (*domain.Registration, error) {
	return l.regRepo.GetByID(ctx, registrationID)
}

func (l *registrationLedger) ListByEvent(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	return l.regRepo.ListByEventID(ctx, eventID)
}

func (l *registrationLedger) ListByPerson(ctx context.Context, personID string) ([]*domain.Registration, error) {
	return l.regRepo.ListByPersonID(ctx, personID)
}
