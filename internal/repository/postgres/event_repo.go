package postgres

import (
	"context"
	"database/sql"
	"errors"

	"campusevents/internal/domain"
)

type eventRepository struct {
	store *Store
}

func NewEventRepository(store *Store) domain.EventRepository {
	return &eventRepository{store: store}
}

const eventColumns = `id, title, description, starts_at, ends_at, capacity, state, kind, thematic_area, organizer_id, venue_id, cancel_reason, created_at, updated_at`

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, starts_at, ends_at, capacity, state, kind, thematic_area, organizer_id, venue_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	return r.store.querier(ctx).QueryRowContext(ctx, query,
		e.Title, e.Description, e.StartsAt, e.EndsAt, e.Capacity, e.State,
		e.Kind, e.ThematicArea, e.OrganizerID, e.VenueID, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return r.scanOne(r.store.querier(ctx).QueryRowContext(ctx, query, id))
}

func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.store.querier(ctx).QueryRowContext(ctx, query, id))
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC`
	rows, err := r.store.querier(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *eventRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE organizer_id = $1 ORDER BY created_at DESC`
	rows, err := r.store.querier(ctx).QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, starts_at = $3, ends_at = $4, capacity = $5,
		    kind = $6, thematic_area = $7, venue_id = $8, updated_at = NOW()
		WHERE id = $9
	`
	result, err := r.store.querier(ctx).ExecContext(ctx, query,
		e.Title, e.Description, e.StartsAt, e.EndsAt, e.Capacity,
		e.Kind, e.ThematicArea, e.VenueID, e.ID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) SetState(ctx context.Context, id string, state domain.EventState, cancelReason *string) (*domain.Event, error) {
	query := `
		UPDATE events SET state = $1, cancel_reason = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + eventColumns
	return r.scanOne(r.store.querier(ctx).QueryRowContext(ctx, query, state, cancelReason, id))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *eventRepository) scan(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var startsNull, endsNull sql.NullTime
	var capNull sql.NullInt64
	var reasonNull sql.NullString
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &startsNull, &endsNull, &capNull,
		&e.State, &e.Kind, &e.ThematicArea, &e.OrganizerID, &e.VenueID,
		&reasonNull, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if startsNull.Valid {
		e.StartsAt = &startsNull.Time
	}
	if endsNull.Valid {
		e.EndsAt = &endsNull.Time
	}
	if capNull.Valid {
		c := int(capNull.Int64)
		e.Capacity = &c
	}
	if reasonNull.Valid {
		e.CancelReason = &reasonNull.String
	}
	return e, nil
}

func (r *eventRepository) scanOne(row *sql.Row) (*domain.Event, error) {
	e, err := r.scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) scanAll(rows *sql.Rows) ([]*domain.Event, error) {
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
