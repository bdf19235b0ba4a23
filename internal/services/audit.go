package services

import (
	"context"
	"log/slog"

	"campusevents/internal/domain"
)

type slogAuditSink struct {
	logger *slog.Logger
}

// NewSlogAuditSink returns an AuditSink that emits audit events as structured
// log records. Persisting the trail is an external listener's job; the core
// only emits.
func NewSlogAuditSink(logger *slog.Logger) domain.AuditSink {
	return &slogAuditSink{logger: logger}
}

func (s *slogAuditSink) Record(ctx context.Context, event domain.AuditEvent) {
	s.logger.InfoContext(ctx, "audit",
		"action", event.Action,
		"entity_kind", event.EntityKind,
		"entity_id", event.EntityID,
		"event_id", event.EventID,
		"person_id", event.PersonID,
		"occurred_at", event.OccurredAt,
		"detail", event.Detail,
	)
}
