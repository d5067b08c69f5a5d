package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event is the aggregate owning scheduling and capacity state. Capacity is
// derived from the attached venue (0 means unbounded) and populated by the
// repository on load; it is never cached as a writable counter.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Category    string    `json:"category"`
	OrganizerID string    `json:"organizer_id"`
	VenueID     *string   `json:"venue_id,omitempty"`
	Capacity    int       `json:"capacity"`
	IsPrivate   bool      `json:"is_private"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEvent validates and returns a new Event with a time-ordered (v7) ID.
// Fails with ErrInvalidInput when the name is blank or the date is in the past.
func NewEvent(name, description string, date time.Time, category, organizerID string, venueID *string, isPrivate bool, now time.Time) (*Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if organizerID == "" {
		return nil, fmt.Errorf("%w: organizer is required", ErrInvalidInput)
	}
	if date.Before(now) {
		return nil, fmt.Errorf("%w: date must not be in the past", ErrInvalidInput)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate event id: %w", err)
	}
	return &Event{
		ID:          id.String(),
		Name:        name,
		Description: description,
		Date:        date,
		Category:    category,
		OrganizerID: organizerID,
		VenueID:     venueID,
		IsPrivate:   isPrivate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateDetails replaces the mutable fields all-or-nothing: validation runs
// first and the event is untouched when it fails.
func (e *Event) UpdateDetails(name, description string, date time.Time, category string, venueID *string, isPrivate bool, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if date.Before(now) {
		return fmt.Errorf("%w: date must not be in the past", ErrInvalidInput)
	}
	e.Name = name
	e.Description = description
	e.Date = date
	e.Category = category
	e.VenueID = venueID
	e.IsPrivate = isPrivate
	e.UpdatedAt = now
	return nil
}

// HasCapacityLimit reports whether a venue with capacity > 0 is attached.
func (e *Event) HasCapacityLimit() bool {
	return e.VenueID != nil && e.Capacity > 0
}

// IsFull reports whether the event has a capacity limit and it is reached.
func (e *Event) IsFull(currentGuestCount int) bool {
	return e.HasCapacityLimit() && currentGuestCount >= e.Capacity
}

// CanAddGuest is the advisory admission guard. It fails with ErrEventEnded
// when the date has passed and ErrVenueFull when the event is full. The
// authoritative capacity check happens inside GuestRepository.InsertIfRoom;
// this guard alone is subject to a check-then-act race and must never be
// the only layer.
func (e *Event) CanAddGuest(currentGuestCount int, now time.Time) error {
	if e.Date.Before(now) {
		return ErrEventEnded
	}
	if e.IsFull(currentGuestCount) {
		return ErrVenueFull
	}
	return nil
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*Event, error)
	Update(ctx context.Context, event *Event) error
	// Delete removes the event; guest rows cascade with it.
	Delete(ctx context.Context, id string) error
}

// EventInput carries the caller-supplied event fields for create and update.
type EventInput struct {
	Name        string
	Description string
	Date        time.Time
	Category    string
	VenueID     *string
	IsPrivate   bool
}

// EventService defines organizer-facing event lifecycle operations.
type EventService interface {
	CreateEvent(ctx context.Context, organizerID string, in EventInput) (*Event, error)
	UpdateEvent(ctx context.Context, eventID, organizerID string, in EventInput) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, organizerID string) error
	ListEventsByOrganizer(ctx context.Context, organizerID string) ([]*Event, error)
}
