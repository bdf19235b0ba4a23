package domain

import (
	"context"
	"time"
)

// EventState is the lifecycle state of an event.
type EventState string

const (
	EventDraft     EventState = "draft"
	EventPublished EventState = "published"
	EventCancelled EventState = "cancelled"
	EventConcluded EventState = "concluded"
)

// Event represents an institutional event with a finite-capacity venue.
// Capacity nil means unlimited. StartsAt/EndsAt may be nil on drafts.
// swagger:model Event
type Event struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	StartsAt     *time.Time `json:"starts_at"`
	EndsAt       *time.Time `json:"ends_at"`
	Capacity     *int       `json:"capacity"`
	State        EventState `json:"state"`
	Kind         string     `json:"kind"`
	ThematicArea string     `json:"thematic_area"`
	OrganizerID  string     `json:"organizer_id"`
	VenueID      string     `json:"venue_id"`
	CancelReason *string    `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// EventStats summarizes registration activity for one event.
// AvailableSlots is -1 for unlimited-capacity events.
type EventStats struct {
	EventID                string  `json:"event_id"`
	EventTitle             string  `json:"event_title"`
	TotalRegistrations     int     `json:"total_registrations"`
	ActiveRegistrations    int     `json:"active_registrations"`
	CancelledRegistrations int     `json:"cancelled_registrations"`
	CheckIns               int     `json:"check_ins"`
	Capacity               *int    `json:"capacity"`
	AvailableSlots         int     `json:"available_slots"`
	OccupancyPercent       float64 `json:"occupancy_percent"`
	CertificatesIssued     int     `json:"certificates_issued"`
	WaitlistSize           int     `json:"waitlist_size"`
}

// EventRepository defines storage operations for events.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// GetByIDForUpdate reads the event inside the current transaction with a
	// row-level lock, serializing capacity checks per event.
	GetByIDForUpdate(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*Event, error)
	Update(ctx context.Context, event *Event) error
	SetState(ctx context.Context, id string, state EventState, cancelReason *string) (*Event, error)
}

// EventRegistry is the read-side contract the orchestrator uses to decide
// whether a registration attempt may proceed.
type EventRegistry interface {
	GetEvent(ctx context.Context, id string) (*Event, error)
	// GetEventForUpdate locks the event row for the rest of the enclosing
	// transaction. Must only be called inside Transactor.InTx.
	GetEventForUpdate(ctx context.Context, id string) (*Event, error)
	// IsOpenForRegistration reports whether the event accepts registrations
	// now: state is published and the event has not started yet.
	IsOpenForRegistration(event *Event, now time.Time) bool
}

// EventService owns event lifecycle operations (create, edit, publish,
// cancel) and per-event statistics. Registration flows live on the
// RegistrationOrchestrator instead.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListEvents(ctx context.Context) ([]*Event, error)
	ListEventsByOrganizer(ctx context.Context, organizerID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, event *Event, callerID string) (*Event, error)
	PublishEvent(ctx context.Context, id, callerID string) (*Event, error)
	CancelEvent(ctx context.Context, id, callerID, reason string) (*Event, error)
	GetEventStats(ctx context.Context, id string) (*EventStats, error)
}
