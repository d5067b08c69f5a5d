package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gatherly/internal/domain"
)

type admissionService struct {
	eventRepo      domain.EventRepository
	guestRepo      domain.GuestRepository
	users          domain.UserDirectory
	details        domain.DetailsInvalidator
	contextTimeout time.Duration
}

// NewAdmissionService creates an AdmissionService with the given collaborators.
func NewAdmissionService(
	eventRepo domain.EventRepository,
	guestRepo domain.GuestRepository,
	users domain.UserDirectory,
	details domain.DetailsInvalidator,
	timeout time.Duration,
) domain.AdmissionService {
	return &admissionService{
		eventRepo:      eventRepo,
		guestRepo:      guestRepo,
		users:          users,
		details:        details,
		contextTimeout: timeout,
	}
}

func (s *admissionService) Join(ctx context.Context, eventID, userID string) (*domain.Guest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.Date.Before(time.Now()) {
		return nil, domain.ErrEventEnded
	}
	if userID == event.OrganizerID {
		return nil, domain.ErrSelfJoinForbidden
	}

	// Advisory guard. It rejects the obvious cases cheaply, but the count it
	// sees may be stale by the time we insert; InsertIfRoom re-checks under
	// a lock and is the authoritative decision.
	count, err := s.guestRepo.CountByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count guests: %w", err)
	}
	if err := event.CanAddGuest(count, time.Now()); err != nil {
		return nil, err
	}

	profile, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	guest, err := domain.NewGuest(eventID, &profile.ID, profile.FirstName, profile.LastName, profile.Email, profile.Phone, profile.CountryCode, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.checkDuplicates(ctx, eventID, guest.Email, guest.Phone, nil); err != nil {
		return nil, err
	}

	ok, err := s.guestRepo.InsertIfRoom(ctx, guest)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			return nil, domain.ErrAlreadyRegistered
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("insert guest: %w", err)
	}
	if !ok {
		return nil, domain.ErrVenueFull
	}

	s.details.Invalidate(ctx, eventID)
	return guest, nil
}

func (s *admissionService) Leave(ctx context.Context, eventID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	// Leave is idempotent: a missing row is not an error.
	if err := s.guestRepo.Remove(ctx, eventID, userID); err != nil {
		return fmt.Errorf("remove guest: %w", err)
	}
	s.details.Invalidate(ctx, eventID)
	return nil
}

func (s *admissionService) IsUserJoined(ctx context.Context, eventID, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	joined, err := s.guestRepo.IsUserJoined(ctx, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return joined, nil
}

func (s *admissionService) AddGuest(ctx context.Context, eventID, callerID string, in domain.GuestInput) (*domain.Guest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.loadOwnedEvent(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}

	count, err := s.guestRepo.CountByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count guests: %w", err)
	}
	if err := event.CanAddGuest(count, time.Now()); err != nil {
		return nil, err
	}

	// Manual guests carry no linked user id but share the self-join shape.
	guest, err := domain.NewGuest(eventID, nil, in.FirstName, in.LastName, in.Email, in.Phone, in.CountryCode, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.checkDuplicates(ctx, eventID, guest.Email, guest.Phone, nil); err != nil {
		return nil, err
	}

	ok, err := s.guestRepo.InsertIfRoom(ctx, guest)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			return nil, domain.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("insert guest: %w", err)
	}
	if !ok {
		return nil, domain.ErrVenueFull
	}

	s.details.Invalidate(ctx, eventID)
	return guest, nil
}

func (s *admissionService) UpdateGuest(ctx context.Context, eventID, guestID, callerID string, in domain.GuestInput) (*domain.Guest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.loadOwnedEvent(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}
	if event.Date.Before(time.Now()) {
		return nil, domain.ErrEventEnded
	}

	current, err := s.guestRepo.GetByID(ctx, guestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get guest: %w", err)
	}
	if current.EventID != eventID {
		return nil, domain.ErrNotFound
	}

	updated, err := domain.NewGuest(eventID, current.UserID, in.FirstName, in.LastName, in.Email, in.Phone, in.CountryCode, current.CreatedAt)
	if err != nil {
		return nil, err
	}
	updated.ID = current.ID

	if err := s.checkDuplicates(ctx, eventID, updated.Email, updated.Phone, &current.ID); err != nil {
		return nil, err
	}
	if err := s.guestRepo.Update(ctx, updated); err != nil {
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			return nil, domain.ErrAlreadyRegistered
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update guest: %w", err)
	}

	s.details.Invalidate(ctx, eventID)
	return updated, nil
}

func (s *admissionService) RemoveGuest(ctx context.Context, eventID, guestID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.loadOwnedEvent(ctx, eventID, callerID)
	if err != nil {
		return err
	}
	if event.Date.Before(time.Now()) {
		return domain.ErrEventEnded
	}
	if err := s.guestRepo.RemoveByID(ctx, eventID, guestID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("remove guest: %w", err)
	}
	s.details.Invalidate(ctx, eventID)
	return nil
}

func (s *admissionService) ListGuests(ctx context.Context, eventID, callerID, search string, params domain.PaginationParams) ([]*domain.Guest, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.loadOwnedEvent(ctx, eventID, callerID); err != nil {
		return nil, 0, err
	}
	guests, total, err := s.guestRepo.ListPageByEventID(ctx, eventID, search, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list guests: %w", err)
	}
	if guests == nil {
		guests = []*domain.Guest{}
	}
	return guests, total, nil
}

func (s *admissionService) PropagateProfile(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	profile, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}

	eventIDs, err := s.guestRepo.ListEventIDsByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("list joined events: %w", err)
	}
	if len(eventIDs) == 0 {
		return nil
	}
	if err := s.guestRepo.UpdateContactByUserID(ctx, userID, profile); err != nil {
		return fmt.Errorf("propagate profile: %w", err)
	}
	for _, id := range eventIDs {
		s.details.Invalidate(ctx, id)
	}
	return nil
}

// loadOwnedEvent fetches the event and gates the caller on ownership.
func (s *admissionService) loadOwnedEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != callerID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

// checkDuplicates enforces per-event email uniqueness and, when a phone is
// supplied, phone uniqueness. Two guests with empty phones never conflict.
func (s *admissionService) checkDuplicates(ctx context.Context, eventID, email, phone string, excludeGuestID *string) error {
	exists, err := s.guestRepo.EmailExists(ctx, eventID, email, excludeGuestID)
	if err != nil {
		return fmt.Errorf("check duplicate email: %w", err)
	}
	if exists {
		return domain.ErrAlreadyRegistered
	}
	if phone != "" {
		exists, err = s.guestRepo.PhoneExists(ctx, eventID, phone, excludeGuestID)
		if err != nil {
			return fmt.Errorf("check duplicate phone: %w", err)
		}
		if exists {
			return domain.ErrAlreadyRegistered
		}
	}
	return nil
}
