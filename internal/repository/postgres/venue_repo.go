package postgres

import (
	"context"
	"database/sql"
	"errors"

	"campusevents/internal/domain"
)

type venueRepository struct {
	store *Store
}

func NewVenueRepository(store *Store) domain.VenueRepository {
	return &venueRepository{store: store}
}

func (r *venueRepository) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	query := `SELECT id, name, address, capacity FROM venues WHERE id = $1`
	v := &domain.Venue{}
	err := r.store.querier(ctx).QueryRowContext(ctx, query, id).Scan(&v.ID, &v.Name, &v.Address, &v.Capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *venueRepository) List(ctx context.Context) ([]*domain.Venue, error) {
	query := `SELECT id, name, address, capacity FROM venues ORDER BY name ASC`
	rows, err := r.store.querier(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	venues := make([]*domain.Venue, 0)
	for rows.Next() {
		v := &domain.Venue{}
		if err := rows.Scan(&v.ID, &v.Name, &v.Address, &v.Capacity); err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}
