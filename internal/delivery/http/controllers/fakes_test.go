package controllers

import (
	"context"
	"io"
	"log/slog"
	"time"

	"campusevents/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeOrchestrator implements domain.RegistrationOrchestrator for handler tests.
type fakeOrchestrator struct {
	registerResult *domain.RegisterResult
	registerErr    error
	cancelResult   *domain.CancelResult
	cancelErr      error
	checkInResult  *domain.Registration
	checkInErr     error
	issueResult    *domain.Certificate
	issueErr       error
	issueBulkCount int
	issueBulkErr   error

	lastRegisterEventID  string
	lastRegisterPersonID string
	lastCancelRegID      string
	lastCheckInToken     string
	lastIssueRegID       string
	lastIssueIssuerID    string
	lastIssueTier        domain.CertificateTier
	lastBulkEventID      string
	lastBulkTier         domain.CertificateTier
}

func (f *fakeOrchestrator) Register(ctx context.Context, eventID, personID string) (*domain.RegisterResult, error) {
	f.lastRegisterEventID = eventID
	f.lastRegisterPersonID = personID
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registerResult, nil
}

func (f *fakeOrchestrator) Cancel(ctx context.Context, registrationID string) (*domain.CancelResult, error) {
	f.lastCancelRegID = registrationID
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	return f.cancelResult, nil
}

func (f *fakeOrchestrator) CheckIn(ctx context.Context, token string) (*domain.Registration, error) {
	f.lastCheckInToken = token
	if f.checkInErr != nil {
		return nil, f.checkInErr
	}
	return f.checkInResult, nil
}

func (f *fakeOrchestrator) IssueCertificate(ctx context.Context, registrationID, issuerID string, tier domain.CertificateTier) (*domain.Certificate, error) {
	f.lastIssueRegID = registrationID
	f.lastIssueIssuerID = issuerID
	f.lastIssueTier = tier
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	return f.issueResult, nil
}

func (f *fakeOrchestrator) IssueCertificatesForEvent(ctx context.Context, eventID, issuerID string, tier domain.CertificateTier) (int, error) {
	f.lastBulkEventID = eventID
	f.lastBulkTier = tier
	if f.issueBulkErr != nil {
		return 0, f.issueBulkErr
	}
	return f.issueBulkCount, nil
}

// fakeLedger implements domain.RegistrationLedger. Only the read methods the
// controllers use are configurable; the rest return their zero values.
type fakeLedger struct {
	getResult        *domain.Registration
	getErr           error
	listByPersonRes  []*domain.Registration
	listByPersonErr  error
	listByEventRes   []*domain.Registration
	listByEventErr   error
	lastGetID        string
	lastListPersonID string
	lastListEventID  string
}

func (f *fakeLedger) CountActive(ctx context.Context, eventID string) (int, error) { return 0, nil }
func (f *fakeLedger) HasActive(ctx context.Context, eventID, personID string) (bool, error) {
	return false, nil
}
func (f *fakeLedger) AddActive(ctx context.Context, eventID, personID string) (*domain.Registration, error) {
	return nil, nil
}
func (f *fakeLedger) Cancel(ctx context.Context, registrationID string) (*domain.Registration, error) {
	return nil, nil
}
func (f *fakeLedger) MarkAttended(ctx context.Context, registrationID string, at time.Time) (*domain.Registration, error) {
	return nil, nil
}

func (f *fakeLedger) Get(ctx context.Context, registrationID string) (*domain.Registration, error) {
	f.lastGetID = registrationID
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getResult, nil
}

func (f *fakeLedger) ListByEvent(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	f.lastListEventID = eventID
	if f.listByEventErr != nil {
		return nil, f.listByEventErr
	}
	return f.listByEventRes, nil
}

func (f *fakeLedger) ListByPerson(ctx context.Context, personID string) ([]*domain.Registration, error) {
	f.lastListPersonID = personID
	if f.listByPersonErr != nil {
		return nil, f.listByPersonErr
	}
	return f.listByPersonRes, nil
}

// fakeWaitlist implements domain.WaitlistQueue.
type fakeWaitlist struct {
	listResult []*domain.WaitlistEntry
	listErr    error
}

func (f *fakeWaitlist) Enqueue(ctx context.Context, eventID, personID string) (*domain.WaitlistEntry, error) {
	return nil, nil
}
func (f *fakeWaitlist) PeekFirst(ctx context.Context, eventID string) (*domain.WaitlistEntry, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeWaitlist) Remove(ctx context.Context, entryID string) error { return nil }
func (f *fakeWaitlist) ListByEvent(ctx context.Context, eventID string) ([]*domain.WaitlistEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listResult, nil
}

// fakeEventService implements domain.EventService.
type fakeEventService struct {
	createErr       error
	getResult       *domain.Event
	getErr          error
	listResult      []*domain.Event
	listErr         error
	listMineResult  []*domain.Event
	listMineErr     error
	updateResult    *domain.Event
	updateErr       error
	publishResult   *domain.Event
	publishErr      error
	cancelResult    *domain.Event
	cancelErr       error
	statsResult     *domain.EventStats
	statsErr        error
	lastCreated     *domain.Event
	lastPublishID   string
	lastPublisherID string
	lastCancelID    string
	lastCancelBy    string
	lastReason      string
	lastMineOrgID   string
}

func (f *fakeEventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	f.lastCreated = event
	if f.createErr != nil {
		return f.createErr
	}
	event.ID = "event-created"
	event.State = domain.EventDraft
	return nil
}

func (f *fakeEventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.getResult == nil {
		return nil, domain.ErrNotFound
	}
	return f.getResult, nil
}

func (f *fakeEventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listResult, nil
}

func (f *fakeEventService) ListEventsByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	f.lastMineOrgID = organizerID
	if f.listMineErr != nil {
		return nil, f.listMineErr
	}
	return f.listMineResult, nil
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, event *domain.Event, callerID string) (*domain.Event, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.updateResult != nil {
		return f.updateResult, nil
	}
	return event, nil
}

func (f *fakeEventService) PublishEvent(ctx context.Context, id, callerID string) (*domain.Event, error) {
	f.lastPublishID = id
	f.lastPublisherID = callerID
	if f.publishErr != nil {
		return nil, f.publishErr
	}
	return f.publishResult, nil
}

func (f *fakeEventService) CancelEvent(ctx context.Context, id, callerID, reason string) (*domain.Event, error) {
	f.lastCancelID = id
	f.lastCancelBy = callerID
	f.lastReason = reason
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	return f.cancelResult, nil
}

func (f *fakeEventService) GetEventStats(ctx context.Context, id string) (*domain.EventStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.statsResult, nil
}

// fakeIssuer implements domain.CertificateIssuer.
type fakeIssuer struct {
	verifyResult    *domain.Certificate
	verifyErr       error
	listPersonRes   []*domain.Certificate
	listPersonErr   error
	listEventRes    []*domain.Certificate
	listEventErr    error
	lastVerifyCode  string
	lastListPerson  string
	lastListEventID string
}

func (f *fakeIssuer) Issue(ctx context.Context, registrationID, issuerID string, tier domain.CertificateTier) (*domain.Certificate, error) {
	return nil, nil
}
func (f *fakeIssuer) IssueBulk(ctx context.Context, eventID, issuerID string, tier domain.CertificateTier) (int, error) {
	return 0, nil
}

func (f *fakeIssuer) VerifyByCode(ctx context.Context, code string) (*domain.Certificate, error) {
	f.lastVerifyCode = code
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.verifyResult, nil
}

func (f *fakeIssuer) ListByPerson(ctx context.Context, personID string) ([]*domain.Certificate, error) {
	f.lastListPerson = personID
	if f.listPersonErr != nil {
		return nil, f.listPersonErr
	}
	return f.listPersonRes, nil
}

func (f *fakeIssuer) ListByEvent(ctx context.Context, eventID string) ([]*domain.Certificate, error) {
	f.lastListEventID = eventID
	if f.listEventErr != nil {
		return nil, f.listEventErr
	}
	return f.listEventRes, nil
}

// fakeAuthService implements domain.AuthService.
type fakeAuthService struct {
	signUpResult *domain.User
	signUpErr    error
	loginToken   string
	loginUser    *domain.User
	loginErr     error
	lastEmail    string
	lastRole     string
}

func (f *fakeAuthService) SignUp(ctx context.Context, email, password, name, role string) (*domain.User, error) {
	f.lastEmail = email
	f.lastRole = role
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return f.signUpResult, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	f.lastEmail = email
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return f.loginToken, f.loginUser, nil
}

// fakeQR implements domain.QRCodeRenderer.
type fakeQR struct{}

func (fakeQR) URL(token string) string { return "https://qr.test/?data=" + token }
