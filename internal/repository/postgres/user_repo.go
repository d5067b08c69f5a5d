package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gatherly/internal/domain"
)

// userRepository reads the user directory. The platform's account subsystem
// owns writes to this table; admission only needs profile lookups.
type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserDirectory {
	return &userRepository{
		DB: db,
	}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, country_code
		FROM users
		WHERE id = $1
	`
	p := &domain.UserProfile{}
	var phone, countryCode sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &phone, &countryCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Phone = phone.String
	p.CountryCode = countryCode.String
	return p, nil
}
