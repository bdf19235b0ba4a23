package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"campusevents/internal/domain"
)

type registrationRepository struct {
	store *Store
}

func NewRegistrationRepository(store *Store) domain.RegistrationRepository {
	return &registrationRepository{store: store}
}

const registrationColumns = `id, event_id, person_id, state, attended, attended_at, checkin_token, token_expires_at, created_at`

// uniqueViolation is the Postgres error code for unique constraint conflicts.
const uniqueViolation = "23505"

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (event_id, person_id, state, attended, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.store.querier(ctx).QueryRowContext(ctx, query,
		reg.EventID, reg.PersonID, reg.State, reg.Attended, reg.CreatedAt,
	).Scan(&reg.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateRegistration
		}
		return err
	}
	return nil
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	return r.scanOne(r.store.querier(ctx).QueryRowContext(ctx, query, id))
}

func (r *registrationRepository) GetByToken(ctx context.Context, token string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE checkin_token = $1`
	return r.scanOne(r.store.querier(ctx).QueryRowContext(ctx, query, token))
}

func (r *registrationRepository) CountActiveByEventID(ctx context.Context, eventID string) (int, error) {
	query := `SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND state = $2`
	var count int
	err := r.store.querier(ctx).QueryRowContext(ctx, query, eventID, domain.RegistrationActive).Scan(&count)
	return count, err
}

func (r *registrationRepository) HasActive(ctx context.Context, eventID, personID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM registrations
			WHERE event_id = $1 AND person_id = $2 AND state = $3
		)
	`
	var exists bool
	err := r.store.querier(ctx).QueryRowContext(ctx, query, eventID, personID, domain.RegistrationActive).Scan(&exists)
	return exists, err
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE event_id = $1 ORDER BY created_at ASC`
	return r.list(ctx, query, eventID)
}

func (r *registrationRepository) ListByPersonID(ctx context.Context, personID string) ([]*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE person_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, personID)
}

func (r *registrationRepository) ListAttendedByEventID(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE event_id = $1 AND attended = TRUE ORDER BY created_at ASC`
	return r.list(ctx, query, eventID)
}

func (r *registrationRepository) SetCancelled(ctx context.Context, id string) (bool, error) {
	query := `UPDATE registrations SET state = $1 WHERE id = $2 AND state = $3`
	result, err := r.store.querier(ctx).ExecContext(ctx, query,
		domain.RegistrationCancelled, id, domain.RegistrationActive)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *registrationRepository) SetAttended(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `
		UPDATE registrations
		SET attended = TRUE, attended_at = $1, checkin_token = NULL, token_expires_at = NULL
		WHERE id = $2 AND attended = FALSE AND state = $3
	`
	result, err := r.store.querier(ctx).ExecContext(ctx, query, at, id, domain.RegistrationActive)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *registrationRepository) SetToken(ctx context.Context, id, token string, expiresAt *time.Time) error {
	query := `UPDATE registrations SET checkin_token = $1, token_expires_at = $2 WHERE id = $3`
	result, err := r.store.querier(ctx).ExecContext(ctx, query, token, expiresAt, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *registrationRepository) ClearToken(ctx context.Context, id, token string) (bool, error) {
	query := `
		UPDATE registrations
		SET checkin_token = NULL, token_expires_at = NULL
		WHERE id = $1 AND checkin_token = $2 AND attended = FALSE
	`
	result, err := r.store.querier(ctx).ExecContext(ctx, query, id, token)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *registrationRepository) scan(row rowScanner) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var attendedNull sql.NullTime
	var tokenNull sql.NullString
	var expiryNull sql.NullTime
	err := row.Scan(
		&reg.ID, &reg.EventID, &reg.PersonID, &reg.State, &reg.Attended,
		&attendedNull, &tokenNull, &expiryNull, &reg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if attendedNull.Valid {
		reg.AttendedAt = &attendedNull.Time
	}
	if tokenNull.Valid {
		reg.CheckinToken = &tokenNull.String
	}
	if expiryNull.Valid {
		reg.TokenExpiresAt = &expiryNull.Time
	}
	return reg, nil
}

func (r *registrationRepository) scanOne(row *sql.Row) (*domain.Registration, error) {
	reg, err := r.scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Registration, error) {
	rows, err := r.store.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}
