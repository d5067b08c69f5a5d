package domain

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// emailRegex accepts a syntactically plausible address: one @, non-empty
// local part, and a dotted domain.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPhoneDigits = 7

// Guest is a per-event participant. UserID is set for self-joins and nil for
// organizer-entered manual guests; both shapes share the same validation and
// storage. Guests are owned by their event and never shared across events.
// swagger:model Guest
type Guest struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	UserID      *string   `json:"user_id,omitempty"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	CountryCode string    `json:"country_code"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewGuest validates and returns a new Guest with a time-ordered (v7) ID.
// Fails with ErrInvalidInput when names or email are blank, the email is
// malformed, or a supplied phone fails the plausibility check.
func NewGuest(eventID string, userID *string, firstName, lastName, email, phone, countryCode string, now time.Time) (*Guest, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = strings.ToLower(strings.TrimSpace(email))
	phone = strings.TrimSpace(phone)

	if firstName == "" {
		return nil, fmt.Errorf("%w: first name is required", ErrInvalidInput)
	}
	if lastName == "" {
		return nil, fmt.Errorf("%w: last name is required", ErrInvalidInput)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if !emailRegex.MatchString(email) {
		return nil, fmt.Errorf("%w: email is not a valid address", ErrInvalidInput)
	}
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return nil, err
		}
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate guest id: %w", err)
	}
	return &Guest{
		ID:          id.String(),
		EventID:     eventID,
		UserID:      userID,
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		Phone:       phone,
		CountryCode: countryCode,
		CreatedAt:   now,
	}, nil
}

func validatePhone(phone string) error {
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < minPhoneDigits {
		return fmt.Errorf("%w: phone must contain at least %d digits", ErrInvalidInput, minPhoneDigits)
	}
	return nil
}

// GuestRepository defines storage operations for guests, including the
// atomicity-critical insert-if-room primitive.
type GuestRepository interface {
	// InsertIfRoom re-reads the confirmed guest count and the event's
	// capacity inside a single transaction, holding a lock on the event row,
	// and inserts the guest only when capacity is unbounded or count <
	// capacity. Returns (false, nil) when there is no room. Two concurrent
	// callers racing for the last seat serialize on the row lock, so at most
	// one succeeds. Duplicate email/phone unique violations surface as
	// ErrAlreadyRegistered.
	InsertIfRoom(ctx context.Context, guest *Guest) (bool, error)

	// Remove deletes the guest row for (eventID, userID). Removing a
	// non-existent row is not an error.
	Remove(ctx context.Context, eventID, userID string) error

	// RemoveByID deletes a guest by id within an event; ErrNotFound when absent.
	RemoveByID(ctx context.Context, eventID, guestID string) error

	GetByID(ctx context.Context, guestID string) (*Guest, error)
	Update(ctx context.Context, guest *Guest) error

	// EmailExists and PhoneExists are scoped by event; excludeGuestID (when
	// non-nil) supports edit-in-place without self-conflict.
	EmailExists(ctx context.Context, eventID, email string, excludeGuestID *string) (bool, error)
	PhoneExists(ctx context.Context, eventID, phone string, excludeGuestID *string) (bool, error)

	IsUserJoined(ctx context.Context, eventID, userID string) (bool, error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Guest, error)
	ListPageByEventID(ctx context.Context, eventID, search string, params PaginationParams) ([]*Guest, int, error)

	// ListEventIDsByUserID and UpdateContactByUserID support propagating
	// profile edits into linked guest rows.
	ListEventIDsByUserID(ctx context.Context, userID string) ([]string, error)
	UpdateContactByUserID(ctx context.Context, userID string, profile *UserProfile) error
}

// GuestInput carries caller-supplied guest fields for manual add and edit.
type GuestInput struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	CountryCode string
}

// AdmissionService enforces join/leave business rules and delegates the
// atomic capacity check to the storage boundary.
type AdmissionService interface {
	Join(ctx context.Context, eventID, userID string) (*Guest, error)
	Leave(ctx context.Context, eventID, userID string) error
	// IsUserJoined always reads the source of record, bypassing the cache,
	// so the acting user never observes stale membership.
	IsUserJoined(ctx context.Context, eventID, userID string) (bool, error)

	AddGuest(ctx context.Context, eventID, callerID string, in GuestInput) (*Guest, error)
	UpdateGuest(ctx context.Context, eventID, guestID, callerID string, in GuestInput) (*Guest, error)
	RemoveGuest(ctx context.Context, eventID, guestID, callerID string) error
	ListGuests(ctx context.Context, eventID, callerID, search string, params PaginationParams) ([]*Guest, int, error)

	// PropagateProfile pushes the user's current directory profile into
	// every guest row linked to them and invalidates the affected events.
	PropagateProfile(ctx context.Context, userID string) error
}
