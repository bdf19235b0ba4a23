package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"campusevents/internal/domain"
)

type certificateRepository struct {
	store *Store
}

func NewCertificateRepository(store *Store) domain.CertificateRepository {
	return &certificateRepository{store: store}
}

const certificateColumns = `id, registration_id, tier, verification_code, issued_by_id, issued_at`

func (r *certificateRepository) Create(ctx context.Context, cert *domain.Certificate) error {
	query := `
		INSERT INTO certificates (registration_id, tier, verification_code, issued_by_id, issued_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.store.querier(ctx).QueryRowContext(ctx, query,
		cert.RegistrationID, cert.Tier, cert.VerificationCode, cert.IssuedByID, cert.IssuedAt,
	).Scan(&cert.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrAlreadyIssued
		}
		return err
	}
	return nil
}

func (r *certificateRepository) GetByRegistrationID(ctx context.Context, registrationID string) (*domain.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE registration_id = $1`
	return r.scanOne(r.store.querier(ctx).QueryRowContext(ctx, query, registrationID))
}

func (r *certificateRepository) GetByCode(ctx context.Context, code string) (*domain.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE verification_code = $1`
	return r.scanOne(r.store.querier(ctx).QueryRowContext(ctx, query, code))
}

func (r *certificateRepository) ExistsByRegistrationID(ctx context.Context, registrationID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM certificates WHERE registration_id = $1)`
	var exists bool
	err := r.store.querier(ctx).QueryRowContext(ctx, query, registrationID).Scan(&exists)
	return exists, err
}

func (r *certificateRepository) ListByPersonID(ctx context.Context, personID string) ([]*domain.Certificate, error) {
	query := `
		SELECT c.id, c.registration_id, c.tier, c.verification_code, c.issued_by_id, c.issued_at
		FROM certificates c
		JOIN registrations reg ON reg.id = c.registration_id
		WHERE reg.person_id = $1
		ORDER BY c.issued_at DESC
	`
	return r.list(ctx, query, personID)
}

func (r *certificateRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Certificate, error) {
	query := `
		SELECT c.id, c.registration_id, c.tier, c.verification_code, c.issued_by_id, c.issued_at
		FROM certificates c
		JOIN registrations reg ON reg.id = c.registration_id
		WHERE reg.event_id = $1
		ORDER BY c.issued_at DESC
	`
	return r.list(ctx, query, eventID)
}

func (r *certificateRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM certificates c
		JOIN registrations reg ON reg.id = c.registration_id
		WHERE reg.event_id = $1
	`
	var count int
	err := r.store.querier(ctx).QueryRowContext(ctx, query, eventID).Scan(&count)
	return count, err
}

func (r *certificateRepository) scanOne(row *sql.Row) (*domain.Certificate, error) {
	cert := &domain.Certificate{}
	err := row.Scan(&cert.ID, &cert.RegistrationID, &cert.Tier, &cert.VerificationCode, &cert.IssuedByID, &cert.IssuedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return cert, nil
}

func (r *certificateRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Certificate, error) {
	rows, err := r.store.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	certs := make([]*domain.Certificate, 0)
	for rows.Next() {
		cert := &domain.Certificate{}
		if err := rows.Scan(&cert.ID, &cert.RegistrationID, &cert.Tier, &cert.VerificationCode, &cert.IssuedByID, &cert.IssuedAt); err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	return certs, rows.Err()
}
