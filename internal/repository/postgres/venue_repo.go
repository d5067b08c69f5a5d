package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gatherly/internal/domain"
)

type venueRepository struct {
	DB *sql.DB
}

func NewVenueRepository(db *sql.DB) domain.VenueRepository {
	return &venueRepository{
		DB: db,
	}
}

func (r *venueRepository) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	query := `
		SELECT id, name, address, image_url, capacity
		FROM venues
		WHERE id = $1
	`
	v := &domain.Venue{}
	var address, imageURL sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&v.ID, &v.Name, &address, &imageURL, &v.Capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	v.Address = address.String
	v.ImageURL = imageURL.String
	return v, nil
}
