package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"campusevents/internal/domain"
)

// fakeRegistrationRepo is an in-memory RegistrationRepository for tests.
type fakeRegistrationRepo struct {
	mu        sync.Mutex
	regs      map[string]*domain.Registration
	idSeq     int
	createErr error
	getErr    error
	tokenErr  error
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{regs: make(map[string]*domain.Registration), idSeq: 1}
}

func (f *fakeRegistrationRepo) Create(ctx context.Context, reg *domain.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, r := range f.regs {
		if r.EventID == reg.EventID && r.PersonID == reg.PersonID && r.State == domain.RegistrationActive {
			return domain.ErrDuplicateRegistration
		}
	}
	reg.ID = fmt.Sprintf("reg-%d", f.idSeq)
	f.idSeq++
	cp := *reg
	f.regs[reg.ID] = &cp
	return nil
}

func (f *fakeRegistrationRepo) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	r, ok := f.regs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRegistrationRepo) GetByToken(ctx context.Context, token string) (*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.regs {
		if r.CheckinToken != nil && *r.CheckinToken == token {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) CountActiveByEventID(ctx context.Context, eventID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.regs {
		if r.EventID == eventID && r.State == domain.RegistrationActive {
			n++
		}
	}
	return n, nil
}

func (f *fakeRegistrationRepo) HasActive(ctx context.Context, eventID, personID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.regs {
		if r.EventID == eventID && r.PersonID == personID && r.State == domain.RegistrationActive {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRegistrationRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Registration
	for _, r := range f.regs {
		if r.EventID == eventID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRegistrationRepo) ListByPersonID(ctx context.Context, personID string) ([]*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Registration
	for _, r := range f.regs {
		if r.PersonID == personID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRegistrationRepo) ListAttendedByEventID(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Registration
	for _, r := range f.regs {
		if r.EventID == eventID && r.Attended {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRegistrationRepo) SetCancelled(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.regs[id]
	if !ok || r.State != domain.RegistrationActive {
		return false, nil
	}
	r.State = domain.RegistrationCancelled
	return true, nil
}

func (f *fakeRegistrationRepo) SetAttended(ctx context.Context, id string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.regs[id]
	if !ok || r.Attended || r.State != domain.RegistrationActive {
		return false, nil
	}
	r.Attended = true
	r.AttendedAt = &at
	r.CheckinToken = nil
	r.TokenExpiresAt = nil
	return true, nil
}

func (f *fakeRegistrationRepo) SetToken(ctx context.Context, id, token string, expiresAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tokenErr != nil {
		return f.tokenErr
	}
	r, ok := f.regs[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.CheckinToken = &token
	r.TokenExpiresAt = expiresAt
	return nil
}

func (f *fakeRegistrationRepo) ClearToken(ctx context.Context, id, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.regs[id]
	if !ok || r.Attended || r.CheckinToken == nil || *r.CheckinToken != token {
		return false, nil
	}
	r.CheckinToken = nil
	return true, nil
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	events map[string]*domain.Event
	getErr error
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	f := &fakeEventRepo{events: make(map[string]*domain.Event)}
	for _, e := range events {
		f.events[e.ID] = e
	}
	return f
}

func (f *fakeEventRepo) Create(ctx context.Context, event *domain.Event) error {
	event.ID = fmt.Sprintf("event-%d", len(f.events)+1)
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	e, ok := f.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (f *fakeEventRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeEventRepo) List(ctx context.Context) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEventRepo) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.events {
		if e.OrganizerID == organizerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, event *domain.Event) error {
	if _, ok := f.events[event.ID]; !ok {
		return domain.ErrNotFound
	}
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventRepo) SetState(ctx context.Context, id string, state domain.EventState, cancelReason *string) (*domain.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.State = state
	e.CancelReason = cancelReason
	return e, nil
}

// fakeWaitlistRepo is an in-memory WaitlistRepository for tests.
type fakeWaitlistRepo struct {
	entries   map[string]*domain.WaitlistEntry
	idSeq     int
	createErr error
	deleteErr error
}

func newFakeWaitlistRepo() *fakeWaitlistRepo {
	return &fakeWaitlistRepo{entries: make(map[string]*domain.WaitlistEntry), idSeq: 1}
}

func (f *fakeWaitlistRepo) Create(ctx context.Context, entry *domain.WaitlistEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	entry.ID = fmt.Sprintf("wl-%d", f.idSeq)
	f.idSeq++
	cp := *entry
	f.entries[entry.ID] = &cp
	return nil
}

func (f *fakeWaitlistRepo) MaxPosition(ctx context.Context, eventID string) (int, error) {
	max := 0
	for _, e := range f.entries {
		if e.EventID == eventID && e.Position > max {
			max = e.Position
		}
	}
	return max, nil
}

func (f *fakeWaitlistRepo) First(ctx context.Context, eventID string) (*domain.WaitlistEntry, error) {
	var first *domain.WaitlistEntry
	for _, e := range f.entries {
		if e.EventID != eventID {
			continue
		}
		if first == nil || e.Position < first.Position {
			first = e
		}
	}
	if first == nil {
		return nil, domain.ErrNotFound
	}
	cp := *first
	return &cp, nil
}

func (f *fakeWaitlistRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.entries[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeWaitlistRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.WaitlistEntry, error) {
	var out []*domain.WaitlistEntry
	for _, e := range f.entries {
		if e.EventID == eventID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeWaitlistRepo) CountByEventID(ctx context.Context, eventID string) (int, error) {
	n := 0
	for _, e := range f.entries {
		if e.EventID == eventID {
			n++
		}
	}
	return n, nil
}

// fakeCertificateRepo is an in-memory CertificateRepository for tests. It
// enforces the one-certificate-per-registration constraint like the unique
// index does.
type fakeCertificateRepo struct {
	certs     map[string]*domain.Certificate
	idSeq     int
	createErr error
	// eventOf maps registration id to event id for the listing joins.
	eventOf  map[string]string
	personOf map[string]string
}

func newFakeCertificateRepo() *fakeCertificateRepo {
	return &fakeCertificateRepo{
		certs:    make(map[string]*domain.Certificate),
		idSeq:    1,
		eventOf:  make(map[string]string),
		personOf: make(map[string]string),
	}
}

func (f *fakeCertificateRepo) Create(ctx context.Context, cert *domain.Certificate) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, c := range f.certs {
		if c.RegistrationID == cert.RegistrationID {
			return domain.ErrAlreadyIssued
		}
	}
	cert.ID = fmt.Sprintf("cert-%d", f.idSeq)
	f.idSeq++
	cp := *cert
	f.certs[cert.ID] = &cp
	return nil
}

func (f *fakeCertificateRepo) GetByRegistrationID(ctx context.Context, registrationID string) (*domain.Certificate, error) {
	for _, c := range f.certs {
		if c.RegistrationID == registrationID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCertificateRepo) GetByCode(ctx context.Context, code string) (*domain.Certificate, error) {
	for _, c := range f.certs {
		if c.VerificationCode == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCertificateRepo) ExistsByRegistrationID(ctx context.Context, registrationID string) (bool, error) {
	_, err := f.GetByRegistrationID(ctx, registrationID)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (f *fakeCertificateRepo) ListByPersonID(ctx context.Context, personID string) ([]*domain.Certificate, error) {
	var out []*domain.Certificate
	for _, c := range f.certs {
		if f.personOf[c.RegistrationID] == personID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeCertificateRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Certificate, error) {
	var out []*domain.Certificate
	for _, c := range f.certs {
		if f.eventOf[c.RegistrationID] == eventID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeCertificateRepo) CountByEventID(ctx context.Context, eventID string) (int, error) {
	certs, _ := f.ListByEventID(ctx, eventID)
	return len(certs), nil
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	users map[string]*domain.User
	roles map[string][]string
	idSeq int
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[string]*domain.User), roles: make(map[string][]string), idSeq: 1}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	user.ID = fmt.Sprintf("user-%d", f.idSeq)
	f.idSeq++
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) AssignRole(ctx context.Context, userID, roleCode string) error {
	f.roles[userID] = append(f.roles[userID], roleCode)
	return nil
}

func (f *fakeUserRepo) ListRolesByUserID(ctx context.Context, userID string) ([]string, error) {
	return f.roles[userID], nil
}

// fakeVenueRepo is an in-memory VenueRepository for tests.
type fakeVenueRepo struct {
	venues map[string]*domain.Venue
}

func newFakeVenueRepo(venues ...*domain.Venue) *fakeVenueRepo {
	f := &fakeVenueRepo{venues: make(map[string]*domain.Venue)}
	for _, v := range venues {
		f.venues[v.ID] = v
	}
	return f
}

func (f *fakeVenueRepo) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	v, ok := f.venues[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (f *fakeVenueRepo) List(ctx context.Context) ([]*domain.Venue, error) {
	var out []*domain.Venue
	for _, v := range f.venues {
		out = append(out, v)
	}
	return out, nil
}

// fakeTx runs the function directly; the in-memory fakes have no transactions
// so rollback semantics are asserted through state checks instead.
type fakeTx struct {
	calls int
}

func (f *fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

// fakeQR renders a deterministic payload URL.
type fakeQR struct{}

func (fakeQR) URL(token string) string { return "qr://" + token }

// fakeAudit records every emitted audit event.
type fakeAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (f *fakeAudit) Record(ctx context.Context, event domain.AuditEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeAudit) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Action
	}
	return out
}

// fakeNotifier records notification calls.
type fakeNotifier struct {
	mu        sync.Mutex
	confirmed []string
	promoted  []string
	done      chan struct{}
}

func newFakeNotifier(capacity int) *fakeNotifier {
	return &fakeNotifier{done: make(chan struct{}, capacity)}
}

func (f *fakeNotifier) SendRegistrationConfirmed(ctx context.Context, eventID, personID, qrURL string) error {
	f.mu.Lock()
	f.confirmed = append(f.confirmed, personID)
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

func (f *fakeNotifier) SendWaitlistPromoted(ctx context.Context, eventID, personID, qrURL string) error {
	f.mu.Lock()
	f.promoted = append(f.promoted, personID)
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

// fakeMailer records sent emails.
type fakeMailer struct {
	to       []string
	subjects []string
	sendErr  error
}

func (f *fakeMailer) Send(to, subject, html, text string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.to = append(f.to, to)
	f.subjects = append(f.subjects, subject)
	return nil
}

// fakeRenderer returns canned subject and bodies.
type fakeRenderer struct {
	renderErr error
	names     []string
}

func (f *fakeRenderer) Render(templateName string, data interface{}) (string, string, string, error) {
	if f.renderErr != nil {
		return "", "", "", f.renderErr
	}
	f.names = append(f.names, templateName)
	return "subject:" + templateName, "<html>", "text", nil
}

// fakeHasher implements PasswordHasher without real bcrypt cost.
type fakeHasher struct {
	saltErr error
	hashErr error
}

func (f *fakeHasher) GenerateSalt() (string, error) {
	if f.saltErr != nil {
		return "", f.saltErr
	}
	return "salt", nil
}

func (f *fakeHasher) Hash(salt, password string) (string, error) {
	if f.hashErr != nil {
		return "", f.hashErr
	}
	return "hash:" + salt + ":" + password, nil
}

func (f *fakeHasher) Compare(hash, salt, password string) error {
	if hash == "hash:"+salt+":"+password {
		return nil
	}
	return fmt.Errorf("password mismatch")
}

// fakeIssuer implements TokenIssuer.
type fakeIssuer struct {
	issueErr error
}

func (f *fakeIssuer) Issue(userID, email string, roles []string, expiry time.Duration) (string, error) {
	if f.issueErr != nil {
		return "", f.issueErr
	}
	return "jwt:" + userID, nil
}
