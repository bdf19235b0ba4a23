package postgres

import (
	"context"
	"database/sql"
	"errors"

	"campusevents/internal/domain"
)

type waitlistRepository struct {
	store *Store
}

func NewWaitlistRepository(store *Store) domain.WaitlistRepository {
	return &waitlistRepository{store: store}
}

const waitlistColumns = `id, event_id, person_id, position, entered_at`

func (r *waitlistRepository) Create(ctx context.Context, entry *domain.WaitlistEntry) error {
	query := `
		INSERT INTO waitlist_entries (event_id, person_id, position, entered_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.store.querier(ctx).QueryRowContext(ctx, query,
		entry.EventID, entry.PersonID, entry.Position, entry.EnteredAt,
	).Scan(&entry.ID)
}

func (r *waitlistRepository) MaxPosition(ctx context.Context, eventID string) (int, error) {
	query := `SELECT COALESCE(MAX(position), 0) FROM waitlist_entries WHERE event_id = $1`
	var max int
	err := r.store.querier(ctx).QueryRowContext(ctx, query, eventID).Scan(&max)
	return max, err
}

func (r *waitlistRepository) First(ctx context.Context, eventID string) (*domain.WaitlistEntry, error) {
	query := `
		SELECT ` + waitlistColumns + `
		FROM waitlist_entries
		WHERE event_id = $1
		ORDER BY position ASC
		LIMIT 1
	`
	entry := &domain.WaitlistEntry{}
	err := r.store.querier(ctx).QueryRowContext(ctx, query, eventID).Scan(
		&entry.ID, &entry.EventID, &entry.PersonID, &entry.Position, &entry.EnteredAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (r *waitlistRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM waitlist_entries WHERE id = $1`
	result, err := r.store.querier(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *waitlistRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.WaitlistEntry, error) {
	query := `
		SELECT ` + waitlistColumns + `
		FROM waitlist_entries
		WHERE event_id = $1
		ORDER BY position ASC
	`
	rows, err := r.store.querier(ctx).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]*domain.WaitlistEntry, 0)
	for rows.Next() {
		entry := &domain.WaitlistEntry{}
		if err := rows.Scan(&entry.ID, &entry.EventID, &entry.PersonID, &entry.Position, &entry.EnteredAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *waitlistRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	query := `SELECT COUNT(*) FROM waitlist_entries WHERE event_id = $1`
	var count int
	err := r.store.querier(ctx).QueryRowContext(ctx, query, eventID).Scan(&count)
	return count, err
}
