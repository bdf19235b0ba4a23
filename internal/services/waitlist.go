package services

import (
	"context"
	"fmt"
	"time"

	"campusevents/internal/domain"
)

type waitlistQueue struct {
	waitlistRepo domain.WaitlistRepository
}

// NewWaitlistQueue creates the FIFO queue consulted when an event is full.
// Position assignment must run under the caller's per-event lock so two
// concurrent enqueues cannot claim the same position.
func NewWaitlistQueue(waitlistRepo domain.WaitlistRepository) domain.WaitlistQueue {
	return &waitlistQueue{waitlistRepo: waitlistRepo}
}

func (q *waitlistQueue) Enqueue(ctx context.Context, eventID, personID string) (*domain.WaitlistEntry, error) {
	max, err := q.waitlistRepo.MaxPosition(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("max waitlist position: %w", err)
	}
	entry := &domain.WaitlistEntry{
		EventID:   eventID,
		PersonID:  personID,
		Position:  max + 1,
		EnteredAt: time.Now(),
	}
	if err := q.waitlistRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create waitlist entry: %w", err)
	}
	return entry, nil
}

func (q *waitlistQueue) PeekFirst(ctx context.Context, eventID string) (*domain.WaitlistEntry, error) {
	return q.waitlistRepo.First(ctx, eventID)
}

func (q *waitlistQueue) Remove(ctx context.Context, entryID string) error {
	return q.waitlistRepo.Delete(ctx, entryID)
}

func (q *waitlistQueue) ListByEvent(ctx context.Context, eventID string) ([]*domain.WaitlistEntry, error) {
	entries, err := q.waitlistRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list waitlist entries: %w", err)
	}
	return entries, nil
}
