package app

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

// Session bundles the catalog, booking flow and ratings of one client.
// Every action takes the session lock, so each one applies atomically.
type Session struct {
	ID string

	mu           sync.Mutex
	catalog      *Catalog
	booking      *Booking
	ratings      *Ratings
	chartPreload bool
}

func (s *Session) PreloadChart() {
	s.chartPreload = true
	observability.ObserveChartPreload()
	log.Debug().Str("session", s.ID).Msg("chart preloaded")
}

// ChartPreloaded reports whether the catalog signalled chart data since
// the session was opened. Callers hold the session lock via Do.
func (s *Session) ChartPreloaded() bool { return s.chartPreload }

func (s *Session) Catalog() *Catalog { return s.catalog }
func (s *Session) Booking() *Booking { return s.booking }
func (s *Session) Ratings() *Ratings { return s.ratings }

// Do runs fn with the session locked. Listing and ratings fetches go
// through LoadCatalog and LoadMoreRatings, which drop the lock while waiting.
func (s *Session) Do(fn func(s *Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

// LoadCatalog reloads the catalog. The lock is held only to mark the load
// and to apply its result, so readers see loading=true while the listing
// is fetched.
func (s *Session) LoadCatalog(ctx context.Context) error {
	s.mu.Lock()
	src := s.catalog.BeginLoad()
	s.mu.Unlock()

	hs, err := src.ListHotels(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.FinishLoad(hs, err)
}

// LoadMoreRatings fetches the next ratings page outside the lock.
func (s *Session) LoadMoreRatings(ctx context.Context) error {
	s.mu.Lock()
	page := s.ratings.BeginLoad()
	s.mu.Unlock()

	rated, err := page.Fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ratings.FinishLoad(rated, err)
}

// EnsureRatingsLoaded loads the first ratings page when none is held.
func (s *Session) EnsureRatingsLoaded(ctx context.Context) error {
	s.mu.Lock()
	loaded := s.ratings.Loaded()
	s.mu.Unlock()
	if loaded {
		return nil
	}
	return s.LoadMoreRatings(ctx)
}

type SessionConfig struct {
	BedTypes        []domain.BedType
	CatalogLimit    int
	RatingsPageSize int
}

// Sessions creates and tracks sessions. Catalogs share the listing source,
// ratings share the ratings source.
type Sessions struct {
	listing domain.ListingSource
	ratings domain.RatingsSource
	cfg     SessionConfig

	mu   sync.RWMutex
	byID map[string]*Session
}

func NewSessions(listing domain.ListingSource, ratings domain.RatingsSource, cfg SessionConfig) *Sessions {
	return &Sessions{listing: listing, ratings: ratings, cfg: cfg, byID: map[string]*Session{}}
}

// Open creates a session and loads its catalog. The session is returned
// even when the load fails; its catalog then reports fetch_failed.
func (m *Sessions) Open(ctx context.Context) (*Session, error) {
	s := &Session{
		ID:      uuid.NewString(),
		booking: NewBooking(),
		ratings: NewRatings(m.ratings, m.cfg.RatingsPageSize),
	}
	s.catalog = NewCatalog(m.listing, m.cfg.BedTypes, WithLimit(m.cfg.CatalogLimit), WithPreloader(s))

	m.mu.Lock()
	m.byID[s.ID] = s
	m.mu.Unlock()

	err := s.LoadCatalog(ctx)
	return s, err
}

// Invalidate drops any cached listing so the next catalog load fetches
// from the source. Sources without a cache are left alone.
func (m *Sessions) Invalidate(ctx context.Context) error {
	if inv, ok := m.listing.(interface{ Invalidate(context.Context) error }); ok {
		return inv.Invalidate(ctx)
	}
	return nil
}

func (m *Sessions) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byID[id]
	return s, ok
}

func (m *Sessions) Close(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return false
	}
	delete(m.byID, id)
	return true
}

func (m *Sessions) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}
