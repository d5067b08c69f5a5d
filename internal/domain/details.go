package domain

import "context"

// GuestView is the guest shape embedded in an event-detail view. Contact
// fields are populated only in the organizer variant.
// swagger:model GuestView
type GuestView struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	IsManual  bool   `json:"is_manual"`
}

// EventDetails is the denormalized event-detail view served by the cached
// read path. Two variants exist per event: the organizer view (full guest
// contact data, IsOrganizer true) and the public view (sanitized). The two
// variants are cached under independent keys so a missed conditional can
// never leak the organizer payload to a public caller.
// swagger:model EventDetails
type EventDetails struct {
	Event         *Event      `json:"event"`
	VenueName     string      `json:"venue_name,omitempty"`
	VenueImageURL string      `json:"venue_image_url,omitempty"`
	Capacity      int         `json:"capacity"`
	Guests        []GuestView `json:"guests"`
	GuestCount    int         `json:"guest_count"`
	// SpotsLeft is nil for unbounded events.
	SpotsLeft   *int    `json:"spots_left,omitempty"`
	FillPercent float64 `json:"fill_percent"`
	IsOrganizer bool    `json:"is_organizer"`
}

// DetailsInvalidator drops both cached variants of an event. Every mutating
// operation calls it synchronously after the underlying write commits
// (write-then-invalidate). Invalidation failures are swallowed; a leftover
// entry is bounded by its TTL.
type DetailsInvalidator interface {
	Invalidate(ctx context.Context, eventID string)
}

// EventDetailsService is the dual-keyed read-through cache over the
// event-detail view. callerID may be empty for anonymous reads.
type EventDetailsService interface {
	DetailsInvalidator
	GetEventDetails(ctx context.Context, eventID, callerID string) (*EventDetails, error)
}
