package domain

import (
	"context"
	"time"
)

// CheckinWindow is how long after the event start a check-in token stays
// valid when the event has a known start time.
const CheckinWindow = 2 * time.Hour

// CheckinTokenService mints and consumes single-use check-in tokens. A token
// moves Issued -> Consumed or Issued -> Expired (detected lazily at consume
// time); neither state can be left. A new IssueToken call always produces a
// fresh token value.
type CheckinTokenService interface {
	// IssueToken generates an opaque unguessable token, stores it on the
	// registration with the given expiry (nil means no expiry) and returns it.
	IssueToken(ctx context.Context, registrationID string, expiresAt *time.Time) (string, error)
	// ConsumeToken validates the token and clears it, returning the owning
	// registration id. Fails with ErrTokenNotFound, ErrTokenExpired (token is
	// left in place for operator inspection) or ErrAlreadyConsumed.
	ConsumeToken(ctx context.Context, token string) (string, error)
}

// TokenExpiry computes the expiry for a check-in token on the given event:
// start + CheckinWindow, or nil when the start time is unknown.
func TokenExpiry(event *Event) *time.Time {
	if event == nil || event.StartsAt == nil {
		return nil
	}
	t := event.StartsAt.Add(CheckinWindow)
	return &t
}

// QRCodeRenderer turns a check-in token into a scannable payload URL.
// The image encoding itself is delegated to an external renderer.
type QRCodeRenderer interface {
	URL(token string) string
}
