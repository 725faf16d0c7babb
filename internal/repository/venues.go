package repository

import (
	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

func (r *Repository) CreateVenue(venue *domain.Venue) error {
	query := `
		INSERT INTO venues (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	dst := []any{&venue.ID, &venue.CreatedAt, &venue.Version}
	return r.dbpool.QueryRowContext(ctx, query, venue.Name, venue.Description).Scan(dst...)
}

func (r *Repository) GetVenueByID(id int64) (*domain.Venue, error) {
	query := `
		SELECT name, description, created_at, version
		FROM venues
		WHERE id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	venue := &domain.Venue{ID: id}
	dst := []any{&venue.Name, &venue.Description, &venue.CreatedAt, &venue.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return venue, nil
}

func (r *Repository) GetAllVenues() ([]*domain.Venue, error) {
	query := `
		SELECT id, name, description, created_at, version
		FROM venues
		ORDER BY id
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	venues := []*domain.Venue{}
	for rows.Next() {
		var venue domain.Venue
		dst := []any{&venue.ID, &venue.Name, &venue.Description, &venue.CreatedAt, &venue.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		venues = append(venues, &venue)
	}

	return venues, rows.Err()
}
