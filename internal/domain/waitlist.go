package domain

import (
	"context"
	"time"
)

// WaitlistEntry is one person waiting for a seat on a full event. Position is
// assigned monotonically per event starting at 1; only relative order matters,
// positions are never renumbered after a promotion.
// swagger:model WaitlistEntry
type WaitlistEntry struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	PersonID  string    `json:"person_id"`
	Position  int       `json:"position"`
	EnteredAt time.Time `json:"entered_at"`
}

// WaitlistRepository defines storage operations for waitlist entries.
type WaitlistRepository interface {
	Create(ctx context.Context, entry *WaitlistEntry) error
	// MaxPosition returns the highest assigned position for the event, 0 when
	// the waitlist is empty. Must run under the same event lock as Create.
	MaxPosition(ctx context.Context, eventID string) (int, error)
	// First returns the entry with the lowest position, or ErrNotFound.
	First(ctx context.Context, eventID string) (*WaitlistEntry, error)
	Delete(ctx context.Context, id string) error
	ListByEventID(ctx context.Context, eventID string) ([]*WaitlistEntry, error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
}

// WaitlistQueue is the FIFO queue consulted when an event is full.
type WaitlistQueue interface {
	Enqueue(ctx context.Context, eventID, personID string) (*WaitlistEntry, error)
	// PeekFirst returns the head entry or ErrNotFound when the list is empty.
	PeekFirst(ctx context.Context, eventID string) (*WaitlistEntry, error)
	Remove(ctx context.Context, entryID string) error
	ListByEvent(ctx context.Context, eventID string) ([]*WaitlistEntry, error)
}
