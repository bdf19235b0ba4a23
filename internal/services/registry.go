package services

import (
	"context"
	"time"

	"campusevents/internal/domain"
)

type eventRegistry struct {
	eventRepo domain.EventRepository
}

// NewEventRegistry creates the read-side registry the orchestrator consults
// before touching the ledger or waitlist.
func NewEventRegistry(eventRepo domain.EventRepository) domain.EventRegistry {
	return &eventRegistry{eventRepo: eventRepo}
}

func (r *eventRegistry) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	return r.eventRepo.GetByID(ctx, id)
}

func (r *eventRegistry) GetEventForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	return r.eventRepo.GetByIDForUpdate(ctx, id)
}

func (r *eventRegistry) IsOpenForRegistration(event *domain.Event, now time.Time) bool {
	if event == nil || event.State != domain.EventPublished {
		return false
	}
	// A published event with no start date yet stays open.
	if event.StartsAt != nil && !now.Before(*event.StartsAt) {
		return false
	}
	return true
}
