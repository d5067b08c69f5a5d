package domain

import "context"

// Venue is the capacity-bearing location an event may be bound to.
// swagger:model Venue
type Venue struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	ImageURL string `json:"image_url"`
	Capacity int    `json:"capacity"`
}

// VenueRepository defines read access to venues.
type VenueRepository interface {
	GetByID(ctx context.Context, id string) (*Venue, error)
}
