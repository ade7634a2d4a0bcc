package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"hotel_booking/internal/domain"
)

// ---- fakes ----

type fakeListing struct {
	hotels []domain.Hotel
	err    error
	calls  int
}

func (f *fakeListing) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.hotels, nil
}

type fakeRatings struct {
	pages [][]domain.RatedHotel
	err   error
	calls []int64 // cursor of each fetch
	rated map[int64]float64
}

func (f *fakeRatings) FetchRatedHotels(ctx context.Context, after int64, limit int) ([]domain.RatedHotel, error) {
	f.calls = append(f.calls, after)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.pages) == 0 {
		return nil, nil
	}
	p := f.pages[0]
	f.pages = f.pages[1:]
	return p, nil
}

func (f *fakeRatings) RateVisit(ctx context.Context, visitID int64, rating float64) error {
	if f.rated == nil {
		f.rated = map[int64]float64{}
	}
	f.rated[visitID] = rating
	return nil
}

type fakeRepo struct {
	fakeRatings
	upserted []domain.Hotel
	err      error
}

func (f *fakeRepo) UpsertHotels(ctx context.Context, hs []domain.Hotel) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, hs...)
	return nil
}

func (f *fakeRepo) RecordVisit(ctx context.Context, hotelID domain.ID, rating float64) (domain.RatedHotel, error) {
	return domain.RatedHotel{}, errors.New("not used")
}

// fakeCache keeps values as-is; Get copies []domain.Hotel back out.
type fakeCache struct {
	store map[string]any
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *[]domain.Hotel:
		*d = v.([]domain.Hotel)
	default:
		return false, fmt.Errorf("fakeCache: unsupported %T", dst)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

type countingPreloader struct{ n int }

func (p *countingPreloader) PreloadChart() { p.n++ }

// ---- helpers ----

func hotel(id string, room domain.BedType, price, avg, reviews float64) domain.Hotel {
	return domain.Hotel{
		ID:     domain.ID(id),
		Title:  "Hotel " + id,
		Room:   room,
		Price:  domain.Price{Amount: domain.Number(price)},
		Rating: domain.Rating{Average: domain.Number(avg), Reviews: domain.Number(reviews)},
	}
}

func ids(hs []domain.Hotel) []string {
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		out = append(out, string(h.ID))
	}
	return out
}

func rated(visitID int64, rating float64) domain.RatedHotel {
	return domain.RatedHotel{VisitID: visitID, HotelID: domain.ID(fmt.Sprint("h", visitID)), UserRating: rating}
}

var bedTypes = []domain.BedType{"single", "double", "triple"}

// gatedListing answers the first call at once and holds every later call
// until release is closed.
type gatedListing struct {
	hotels  []domain.Hotel
	calls   int32
	entered chan struct{}
	release chan struct{}
}

func newGatedListing(hs []domain.Hotel) *gatedListing {
	return &gatedListing{hotels: hs, entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *gatedListing) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	if atomic.AddInt32(&g.calls, 1) > 1 {
		g.entered <- struct{}{}
		<-g.release
	}
	return g.hotels, nil
}

// gatedRatings holds every fetch until release is closed.
type gatedRatings struct {
	fakeRatings
	entered chan struct{}
	release chan struct{}
}

func (g *gatedRatings) FetchRatedHotels(ctx context.Context, after int64, limit int) ([]domain.RatedHotel, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.fakeRatings.FetchRatedHotels(ctx, after, limit)
}
