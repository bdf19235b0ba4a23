package domain

import "context"

// Venue is a physical location events are scheduled at. Venue management is
// owned elsewhere; the core only needs existence lookups when creating events.
// swagger:model Venue
type Venue struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Capacity int    `json:"capacity"`
}

// VenueRepository defines read operations for venues.
type VenueRepository interface {
	GetByID(ctx context.Context, id string) (*Venue, error)
	List(ctx context.Context) ([]*Venue, error)
}
