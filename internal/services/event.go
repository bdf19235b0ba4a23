package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campusevents/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	venueRepo      domain.VenueRepository
	regRepo        domain.RegistrationRepository
	waitlistRepo   domain.WaitlistRepository
	certRepo       domain.CertificateRepository
	contextTimeout time.Duration
}

// NewEventService creates the event lifecycle service.
func NewEventService(
	eventRepo domain.EventRepository,
	venueRepo domain.VenueRepository,
	regRepo domain.RegistrationRepository,
	waitlistRepo domain.WaitlistRepository,
	certRepo domain.CertificateRepository,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		venueRepo:      venueRepo,
		regRepo:        regRepo,
		waitlistRepo:   waitlistRepo,
		certRepo:       certRepo,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateEvent(event); err != nil {
		return err
	}
	if _, err := s.venueRepo.GetByID(ctx, event.VenueID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("venue %s: %w", event.VenueID, domain.ErrInvalidInput)
		}
		return fmt.Errorf("get venue: %w", err)
	}

	if event.State == "" {
		event.State = domain.EventDraft
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.GetByID(ctx, id)
}

func (s *eventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.List(ctx)
}

func (s *eventService) ListEventsByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.ListByOrganizerID(ctx, organizerID)
}

func (s *eventService) UpdateEvent(ctx context.Context, event *domain.Event, callerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	current, err := s.eventRepo.GetByID(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	if current.OrganizerID != callerID {
		return nil, domain.ErrForbidden
	}
	if err := validateEvent(event); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.eventRepo.GetByID(ctx, event.ID)
}

func (s *eventService) PublishEvent(ctx context.Context, id, callerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != callerID {
		return nil, domain.ErrForbidden
	}
	return s.eventRepo.SetState(ctx, id, domain.EventPublished, nil)
}

func (s *eventService) CancelEvent(ctx context.Context, id, callerID, reason string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != callerID {
		return nil, domain.ErrForbidden
	}
	var reasonArg *string
	if r := strings.TrimSpace(reason); r != "" {
		reasonArg = &r
	}
	return s.eventRepo.SetState(ctx, id, domain.EventCancelled, reasonArg)
}

func (s *eventService) GetEventStats(ctx context.Context, id string) (*domain.EventStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	regs, err := s.regRepo.ListByEventID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	stats := &domain.EventStats{
		EventID:    event.ID,
		EventTitle: event.Title,
		Capacity:   event.Capacity,
	}
	for _, reg := range regs {
		stats.TotalRegistrations++
		switch reg.State {
		case domain.RegistrationActive:
			stats.ActiveRegistrations++
		case domain.RegistrationCancelled:
			stats.CancelledRegistrations++
		}
		if reg.Attended {
			stats.CheckIns++
		}
	}

	stats.AvailableSlots = -1
	if event.Capacity != nil {
		stats.AvailableSlots = max(0, *event.Capacity-stats.ActiveRegistrations)
		if *event.Capacity > 0 {
			stats.OccupancyPercent = float64(stats.ActiveRegistrations) * 100.0 / float64(*event.Capacity)
		}
	}

	stats.CertificatesIssued, err = s.certRepo.CountByEventID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count certificates: %w", err)
	}
	stats.WaitlistSize, err = s.waitlistRepo.CountByEventID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count waitlist: %w", err)
	}
	return stats, nil
}

func validateEvent(event *domain.Event) error {
	if strings.TrimSpace(event.Title) == "" {
		return fmt.Errorf("title is required: %w", domain.ErrInvalidInput)
	}
	if event.StartsAt == nil || event.EndsAt == nil {
		return fmt.Errorf("start and end dates are required: %w", domain.ErrInvalidInput)
	}
	if event.EndsAt.Before(*event.StartsAt) {
		return fmt.Errorf("end date cannot be before start date: %w", domain.ErrInvalidInput)
	}
	if event.Capacity != nil && *event.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive when set: %w", domain.ErrInvalidInput)
	}
	if event.OrganizerID == "" {
		return fmt.Errorf("organizer is required: %w", domain.ErrInvalidInput)
	}
	if event.VenueID == "" {
		return fmt.Errorf("venue is required: %w", domain.ErrInvalidInput)
	}
	return nil
}
