package domain

import (
	"context"
	"time"
)

// Audit action names emitted by the orchestrator. An external listener owns
// persistence of the audit trail; the core only emits.
const (
	AuditRegistrationCreated   = "registration_created"
	AuditRegistrationCancelled = "registration_cancelled"
	AuditWaitlistJoined        = "waitlist_joined"
	AuditWaitlistPromoted      = "waitlist_promoted"
	AuditCheckInCompleted      = "check_in_completed"
	AuditCertificateIssued     = "certificate_issued"
)

// AuditEvent describes one business-level state change.
type AuditEvent struct {
	Action     string
	EntityKind string
	EntityID   string
	EventID    string
	PersonID   string
	OccurredAt time.Time
	Detail     string
}

// AuditSink receives audit events. Implementations must not fail the calling
// operation; recording is best effort.
type AuditSink interface {
	Record(ctx context.Context, event AuditEvent)
}
