package domain

import "context"

// UserProfile is the slice of the user directory the admission flow needs to
// build a guest record from a self-join.
type UserProfile struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CountryCode string `json:"country_code"`
}

// UserDirectory is the external user store contract.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*UserProfile, error)
}
