package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gatherly/internal/domain"
)

type detailsService struct {
	eventRepo      domain.EventRepository
	venueRepo      domain.VenueRepository
	guestRepo      domain.GuestRepository
	cache          domain.CacheStore
	slidingTTL     time.Duration
	absoluteTTL    time.Duration
	contextTimeout time.Duration
	logger         *slog.Logger
}

// NewEventDetailsService creates the dual-keyed read-through cache over the
// event-detail view. slidingTTL re-arms on each hit; absoluteTTL is the hard
// ceiling an entry may live.
func NewEventDetailsService(
	eventRepo domain.EventRepository,
	venueRepo domain.VenueRepository,
	guestRepo domain.GuestRepository,
	cache domain.CacheStore,
	slidingTTL, absoluteTTL, timeout time.Duration,
	logger *slog.Logger,
) domain.EventDetailsService {
	return &detailsService{
		eventRepo:      eventRepo,
		venueRepo:      venueRepo,
		guestRepo:      guestRepo,
		cache:          cache,
		slidingTTL:     slidingTTL,
		absoluteTTL:    absoluteTTL,
		contextTimeout: timeout,
		logger:         logger,
	}
}

func organizerDetailsKey(eventID string) string {
	return fmt.Sprintf("event_details:%s:organizer", eventID)
}

func publicDetailsKey(eventID string) string {
	return fmt.Sprintf("event_details:%s:public", eventID)
}

func (s *detailsService) GetEventDetails(ctx context.Context, eventID, callerID string) (*domain.EventDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	// The organizer entry is only valid for the organizer it was computed
	// for; the public entry is only valid for everyone else. Anything that
	// does not match is treated as a miss, never as a reason to serve the
	// other variant.
	if view := s.cachedView(ctx, organizerDetailsKey(eventID)); view != nil {
		if callerID != "" && view.Event.OrganizerID == callerID {
			return view, nil
		}
	}
	if view := s.cachedView(ctx, publicDetailsKey(eventID)); view != nil {
		if callerID == "" || view.Event.OrganizerID != callerID {
			return view, nil
		}
	}

	view, err := s.computeView(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}

	key := publicDetailsKey(eventID)
	if view.IsOrganizer {
		key = organizerDetailsKey(eventID)
	}
	if payload, err := json.Marshal(view); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.slidingTTL, s.absoluteTTL); err != nil {
			s.logger.WarnContext(ctx, "cache store failed", "key", key, "err", err)
		}
	}
	return view, nil
}

// Invalidate drops both cached variants for the event. Failures are logged
// and swallowed: the entry's TTL bounds any leftover staleness.
func (s *detailsService) Invalidate(ctx context.Context, eventID string) {
	if err := s.cache.Remove(ctx, organizerDetailsKey(eventID), publicDetailsKey(eventID)); err != nil {
		s.logger.WarnContext(ctx, "cache invalidate failed", "event_id", eventID, "err", err)
	}
}

// cachedView returns the decoded entry for key, or nil on any miss or fault.
func (s *detailsService) cachedView(ctx context.Context, key string) *domain.EventDetails {
	payload, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "cache read failed", "key", key, "err", err)
		return nil
	}
	if !ok {
		return nil
	}
	view := &domain.EventDetails{}
	if err := json.Unmarshal(payload, view); err != nil {
		s.logger.WarnContext(ctx, "cache entry corrupt", "key", key, "err", err)
		return nil
	}
	if view.Event == nil {
		return nil
	}
	return view
}

// computeView builds the denormalized detail view from the source of record.
func (s *detailsService) computeView(ctx context.Context, eventID, callerID string) (*domain.EventDetails, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	view := &domain.EventDetails{
		Event:       event,
		Capacity:    event.Capacity,
		IsOrganizer: callerID != "" && callerID == event.OrganizerID,
	}

	if event.VenueID != nil {
		venue, err := s.venueRepo.GetByID(ctx, *event.VenueID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get venue: %w", err)
		}
		if venue != nil {
			view.VenueName = venue.Name
			view.VenueImageURL = venue.ImageURL
		}
	}

	guests, err := s.guestRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}

	view.Guests = make([]domain.GuestView, 0, len(guests))
	for _, g := range guests {
		gv := domain.GuestView{
			ID:        g.ID,
			FirstName: g.FirstName,
			LastName:  g.LastName,
			IsManual:  g.UserID == nil,
		}
		// Contact data is organizer-only.
		if view.IsOrganizer {
			gv.Email = g.Email
			gv.Phone = g.Phone
		}
		view.Guests = append(view.Guests, gv)
	}
	view.GuestCount = len(guests)

	if event.HasCapacityLimit() {
		left := event.Capacity - view.GuestCount
		if left < 0 {
			left = 0
		}
		view.SpotsLeft = &left
		view.FillPercent = float64(view.GuestCount) / float64(event.Capacity) * 100
	}
	return view, nil
}
