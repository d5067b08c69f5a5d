package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"gatherly/internal/domain"
)

// fakeEventRepo stores events in memory. The returned pointers are shared so
// tests can mutate an event and observe the change through the service.
type fakeEventRepo struct {
	mu     sync.Mutex
	events map[string]*domain.Event
	gets   int
	err    error
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	m := make(map[string]*domain.Event, len(events))
	for _, e := range events {
		m[e.ID] = e
	}
	return &fakeEventRepo{events: m}
}

func (f *fakeEventRepo) Create(ctx context.Context, event *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.err != nil {
		return nil, f.err
	}
	ev, ok := f.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

func (f *fakeEventRepo) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Event
	for _, e := range f.events {
		if e.OrganizerID == organizerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, event *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[event.ID]; !ok {
		return domain.ErrNotFound
	}
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

// fakeGuestRepo mimics the storage boundary's semantics: InsertIfRoom holds
// a lock across the capacity check and the insert, so concurrent callers
// serialize the same way they would on the event row lock in Postgres.
type fakeGuestRepo struct {
	mu              sync.Mutex
	capacityByEvent map[string]int
	guests          map[string]*domain.Guest
}

func newFakeGuestRepo() *fakeGuestRepo {
	return &fakeGuestRepo{
		capacityByEvent: make(map[string]int),
		guests:          make(map[string]*domain.Guest),
	}
}

func (f *fakeGuestRepo) countLocked(eventID string) int {
	n := 0
	for _, g := range f.guests {
		if g.EventID == eventID {
			n++
		}
	}
	return n
}

func (f *fakeGuestRepo) InsertIfRoom(ctx context.Context, guest *domain.Guest) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.guests {
		if g.EventID == guest.EventID && g.Email == guest.Email {
			return false, domain.ErrAlreadyRegistered
		}
	}
	if cap := f.capacityByEvent[guest.EventID]; cap > 0 && f.countLocked(guest.EventID) >= cap {
		return false, nil
	}
	f.guests[guest.ID] = guest
	return true, nil
}

func (f *fakeGuestRepo) Remove(ctx context.Context, eventID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, g := range f.guests {
		if g.EventID == eventID && g.UserID != nil && *g.UserID == userID {
			delete(f.guests, id)
		}
	}
	return nil
}

func (f *fakeGuestRepo) RemoveByID(ctx context.Context, eventID, guestID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.guests[guestID]
	if !ok || g.EventID != eventID {
		return domain.ErrNotFound
	}
	delete(f.guests, guestID)
	return nil
}

func (f *fakeGuestRepo) GetByID(ctx context.Context, guestID string) (*domain.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.guests[guestID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return g, nil
}

func (f *fakeGuestRepo) Update(ctx context.Context, guest *domain.Guest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.guests[guest.ID]; !ok {
		return domain.ErrNotFound
	}
	f.guests[guest.ID] = guest
	return nil
}

func (f *fakeGuestRepo) EmailExists(ctx context.Context, eventID, email string, excludeGuestID *string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, g := range f.guests {
		if excludeGuestID != nil && id == *excludeGuestID {
			continue
		}
		if g.EventID == eventID && g.Email == strings.ToLower(email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGuestRepo) PhoneExists(ctx context.Context, eventID, phone string, excludeGuestID *string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, g := range f.guests {
		if excludeGuestID != nil && id == *excludeGuestID {
			continue
		}
		if g.EventID == eventID && g.Phone != "" && g.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGuestRepo) IsUserJoined(ctx context.Context, eventID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.guests {
		if g.EventID == eventID && g.UserID != nil && *g.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGuestRepo) CountByEventID(ctx context.Context, eventID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countLocked(eventID), nil
}

func (f *fakeGuestRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Guest
	for _, g := range f.guests {
		if g.EventID == eventID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGuestRepo) ListPageByEventID(ctx context.Context, eventID, search string, params domain.PaginationParams) ([]*domain.Guest, int, error) {
	guests, _ := f.ListByEventID(ctx, eventID)
	return guests, len(guests), nil
}

func (f *fakeGuestRepo) ListEventIDsByUserID(ctx context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]struct{})
	var out []string
	for _, g := range f.guests {
		if g.UserID != nil && *g.UserID == userID {
			if _, ok := seen[g.EventID]; !ok {
				seen[g.EventID] = struct{}{}
				out = append(out, g.EventID)
			}
		}
	}
	return out, nil
}

func (f *fakeGuestRepo) UpdateContactByUserID(ctx context.Context, userID string, profile *domain.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.guests {
		if g.UserID != nil && *g.UserID == userID {
			g.FirstName = profile.FirstName
			g.LastName = profile.LastName
			g.Email = strings.ToLower(profile.Email)
			g.Phone = profile.Phone
			g.CountryCode = profile.CountryCode
		}
	}
	return nil
}

// fakeUserDirectory serves profiles by id.
type fakeUserDirectory struct {
	profiles map[string]*domain.UserProfile
}

func (f *fakeUserDirectory) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// fakeInvalidator records invalidation calls per event id.
type fakeInvalidator struct {
	mu    sync.Mutex
	calls map[string]int
}

func newFakeInvalidator() *fakeInvalidator {
	return &fakeInvalidator{calls: make(map[string]int)}
}

func (f *fakeInvalidator) Invalidate(ctx context.Context, eventID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[eventID]++
}

func (f *fakeInvalidator) count(eventID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[eventID]
}

// fakeCacheStore is a map-backed CacheStore; TTLs are ignored. Error fields
// let tests simulate an unreachable cache.
type fakeCacheStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	setErr  error
}

func newFakeCacheStore() *fakeCacheStore {
	return &fakeCacheStore{entries: make(map[string][]byte)}
}

func (f *fakeCacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	b, ok := f.entries[key]
	return b, ok, nil
}

func (f *fakeCacheStore) Set(ctx context.Context, key string, value []byte, sliding, absolute time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[key] = value
	return nil
}

func (f *fakeCacheStore) Remove(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.entries, k)
	}
	return nil
}

func (f *fakeCacheStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[key]
	return ok
}

// newTestEvent builds a valid future event with the given capacity.
func newTestEvent(id, organizerID string, capacity int) *domain.Event {
	var venueID *string
	if capacity > 0 {
		v := "venue-" + id
		venueID = &v
	}
	now := time.Now()
	return &domain.Event{
		ID:          id,
		Name:        "Event " + id,
		Date:        now.Add(24 * time.Hour),
		Category:    "meetup",
		OrganizerID: organizerID,
		VenueID:     venueID,
		Capacity:    capacity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
