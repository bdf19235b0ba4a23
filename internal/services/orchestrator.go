package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campusevents/internal/domain"
)

type registrationOrchestrator struct {
	tx       domain.Transactor
	registry domain.EventRegistry
	ledger   domain.RegistrationLedger
	waitlist domain.WaitlistQueue
	tokens   domain.CheckinTokenService
	certs    domain.CertificateIssuer
	qr       domain.QRCodeRenderer
	audit    domain.AuditSink
	notifier domain.NotificationService
	logger   *slog.Logger

	contextTimeout time.Duration
	now            func() time.Time
}

// NewRegistrationOrchestrator composes the registration core. Every mutation
// group runs in a single transaction via the Transactor; the event row lock
// taken through GetEventForUpdate serializes Register and Cancel per event
// without cross-event contention.
func NewRegistrationOrchestrator(
	tx domain.Transactor,
	registry domain.EventRegistry,
	ledger domain.RegistrationLedger,
	waitlist domain.WaitlistQueue,
	tokens domain.CheckinTokenService,
	certs domain.CertificateIssuer,
	qr domain.QRCodeRenderer,
	audit domain.AuditSink,
	notifier domain.NotificationService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RegistrationOrchestrator {
	return &registrationOrchestrator{
		tx:             tx,
		registry:       registry,
		ledger:         ledger,
		waitlist:       waitlist,
		tokens:         tokens,
		certs:          certs,
		qr:             qr,
		audit:          audit,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (o *registrationOrchestrator) Register(ctx context.Context, eventID, personID string) (*domain.RegisterResult, error) {
	ctx, cancel := context.WithTimeout(ctx, o.contextTimeout)
	defer cancel()

	var result *domain.RegisterResult
	err := o.tx.InTx(ctx, func(ctx context.Context) error {
		event, err := o.registry.GetEventForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if !o.registry.IsOpenForRegistration(event, o.now()) {
			return domain.ErrEventNotOpen
		}

		has, err := o.ledger.HasActive(ctx, eventID, personID)
		if err != nil {
			return fmt.Errorf("check duplicate registration: %w", err)
		}
		if has {
			return domain.ErrDuplicateRegistration
		}

		full, err := o.eventFull(ctx, event)
		if err != nil {
			return err
		}
		if full {
			entry, err := o.waitlist.Enqueue(ctx, eventID, personID)
			if err != nil {
				return err
			}
			result = &domain.RegisterResult{
				Status:   domain.StatusWaitlisted,
				Position: entry.Position,
			}
			return nil
		}

		reg, err := o.ledger.AddActive(ctx, eventID, personID)
		if err != nil {
			return err
		}
		token, err := o.tokens.IssueToken(ctx, reg.ID, domain.TokenExpiry(event))
		if err != nil {
			return err
		}
		result = &domain.RegisterResult{
			Status:       domain.StatusRegistered,
			Registration: reg,
			Token:        token,
			QRCodeURL:    o.qr.URL(token),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Status == domain.StatusRegistered {
		o.audit.Record(ctx, domain.AuditEvent{
			Action:     domain.AuditRegistrationCreated,
			EntityKind: "registration",
			EntityID:   result.Registration.ID,
			EventID:    eventID,
			PersonID:   personID,
			OccurredAt: o.now(),
		})
		go o.notifyRegistered(context.WithoutCancel(ctx), eventID, personID, result.QRCodeURL)
	} else {
		o.audit.Record(ctx, domain.AuditEvent{
			Action:     domain.AuditWaitlistJoined,
			EntityKind: "waitlist_entry",
			EventID:    eventID,
			PersonID:   personID,
			OccurredAt: o.now(),
			Detail:     fmt.Sprintf("position %d", result.Position),
		})
	}
	return result, nil
}

func (o *registrationOrchestrator) Cancel(ctx context.Context, registrationID string) (*domain.CancelResult, error) {
	ctx, cancel := context.WithTimeout(ctx, o.contextTimeout)
	defer cancel()

	var result *domain.CancelResult
	var promotedQR string
	err := o.tx.InTx(ctx, func(ctx context.Context) error {
		reg, err := o.ledger.Get(ctx, registrationID)
		if err != nil {
			return err
		}

		// Lock the event so the promotion cannot race a concurrent Register
		// or another Cancel for the same event.
		event, err := o.registry.GetEventForUpdate(ctx, reg.EventID)
		if err != nil {
			return fmt.Errorf("lock event: %w", err)
		}

		cancelled, err := o.ledger.Cancel(ctx, registrationID)
		if err != nil {
			return err
		}
		result = &domain.CancelResult{Cancelled: cancelled}

		entry, err := o.waitlist.PeekFirst(ctx, reg.EventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("peek waitlist: %w", err)
		}

		// Exactly one slot was freed, so the promotion does not re-check
		// capacity. If AddActive fails the whole transaction rolls back and
		// the entry stays in place for operator inspection.
		promoted, err := o.ledger.AddActive(ctx, reg.EventID, entry.PersonID)
		if err != nil {
			return fmt.Errorf("promote waitlist entry %s: %w", entry.ID, err)
		}
		if _, err := o.tokens.IssueToken(ctx, promoted.ID, domain.TokenExpiry(event)); err != nil {
			return err
		}
		if err := o.waitlist.Remove(ctx, entry.ID); err != nil {
			return fmt.Errorf("remove promoted waitlist entry: %w", err)
		}
		promoted, err = o.ledger.Get(ctx, promoted.ID)
		if err != nil {
			return err
		}
		result.Promoted = promoted
		if promoted.CheckinToken != nil {
			promotedQR = o.qr.URL(*promoted.CheckinToken)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.audit.Record(ctx, domain.AuditEvent{
		Action:     domain.AuditRegistrationCancelled,
		EntityKind: "registration",
		EntityID:   result.Cancelled.ID,
		EventID:    result.Cancelled.EventID,
		PersonID:   result.Cancelled.PersonID,
		OccurredAt: o.now(),
	})
	if result.Promoted != nil {
		o.audit.Record(ctx, domain.AuditEvent{
			Action:     domain.AuditWaitlistPromoted,
			EntityKind: "registration",
			EntityID:   result.Promoted.ID,
			EventID:    result.Promoted.EventID,
			PersonID:   result.Promoted.PersonID,
			OccurredAt: o.now(),
		})
		go o.notifyPromoted(context.WithoutCancel(ctx), result.Promoted.EventID, result.Promoted.PersonID, promotedQR)
	}
	return result, nil
}

func (o *registrationOrchestrator) CheckIn(ctx context.Context, token string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, o.contextTimeout)
	defer cancel()

	var reg *domain.Registration
	err := o.tx.InTx(ctx, func(ctx context.Context) error {
		registrationID, err := o.tokens.ConsumeToken(ctx, token)
		if err != nil {
			return err
		}
		reg, err = o.ledger.MarkAttended(ctx, registrationID, o.now())
		if err != nil {
			// The token was valid a moment ago; a failure here means the
			// state machine was violated. Rolling back un-consumes the token.
			return fmt.Errorf("%w: token consumed but attendance mark failed for registration %s: %v",
				domain.ErrInternal, registrationID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.audit.Record(ctx, domain.AuditEvent{
		Action:     domain.AuditCheckInCompleted,
		EntityKind: "registration",
		EntityID:   reg.ID,
		EventID:    reg.EventID,
		PersonID:   reg.PersonID,
		OccurredAt: o.now(),
	})
	return reg, nil
}

func (o *registrationOrchestrator) IssueCertificate(ctx context.Context, registrationID, issuerID string, tier domain.CertificateTier) (*domain.Certificate, error) {
	ctx, cancel := context.WithTimeout(ctx, o.contextTimeout)
	defer cancel()

	cert, err := o.certs.Issue(ctx, registrationID, issuerID, tier)
	if err != nil {
		return cert, err
	}
	o.audit.Record(ctx, domain.AuditEvent{
		Action:     domain.AuditCertificateIssued,
		EntityKind: "certificate",
		EntityID:   cert.ID,
		PersonID:   issuerID,
		OccurredAt: o.now(),
		Detail:     string(tier),
	})
	return cert, nil
}

func (o *registrationOrchestrator) IssueCertificatesForEvent(ctx context.Context, eventID, issuerID string, tier domain.CertificateTier) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, o.contextTimeout)
	defer cancel()

	var count int
	err := o.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		count, err = o.certs.IssueBulk(ctx, eventID, issuerID, tier)
		return err
	})
	if err != nil {
		return 0, err
	}
	if count > 0 {
		o.audit.Record(ctx, domain.AuditEvent{
			Action:     domain.AuditCertificateIssued,
			EntityKind: "event",
			EntityID:   eventID,
			PersonID:   issuerID,
			OccurredAt: o.now(),
			Detail:     fmt.Sprintf("bulk issued %d (%s)", count, tier),
		})
	}
	return count, nil
}

func (o *registrationOrchestrator) eventFull(ctx context.Context, event *domain.Event) (bool, error) {
	if event.Capacity == nil {
		return false, nil
	}
	active, err := o.ledger.CountActive(ctx, event.ID)
	if err != nil {
		return false, fmt.Errorf("count active registrations: %w", err)
	}
	return active >= *event.Capacity, nil
}

func (o *registrationOrchestrator) notifyRegistered(ctx context.Context, eventID, personID, qrURL string) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.SendRegistrationConfirmed(ctx, eventID, personID, qrURL); err != nil {
		o.logger.Error("registration confirmation email failed", "event_id", eventID, "person_id", personID, "err", err)
	}
}

func (o *registrationOrchestrator) notifyPromoted(ctx context.Context, eventID, personID, qrURL string) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.SendWaitlistPromoted(ctx, eventID, personID, qrURL); err != nil {
		o.logger.Error("waitlist promotion email failed", "event_id", eventID, "person_id", personID, "err", err)
	}
}
