package app

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

const DefaultRatingsPageSize = 10

type RatingsView struct {
	RatedHotels []domain.RatedHotel `json:"rated_hotels"`
	Count       int                 `json:"count"`
	Average     float64             `json:"average"`
	Loading     bool                `json:"loading"`
	Status      LoadStatus          `json:"status"`
}

// Ratings keeps the rated hotels in load order. Count and average are
// always derived from the full list.
type Ratings struct {
	source   domain.RatingsSource
	pageSize int

	rated    []domain.RatedHotel
	cursor   int64
	loading  bool
	inflight int
	status   LoadStatus
}

func NewRatings(src domain.RatingsSource, pageSize int) *Ratings {
	if pageSize <= 0 {
		pageSize = DefaultRatingsPageSize
	}
	return &Ratings{source: src, pageSize: pageSize, status: StatusIdle}
}

// EnsureLoaded loads the first page if nothing has been loaded yet.
func (r *Ratings) EnsureLoaded(ctx context.Context) error {
	if r.Loaded() {
		return nil
	}
	return r.LoadMore(ctx)
}

// Loaded reports whether any entry is held.
func (r *Ratings) Loaded() bool { return len(r.rated) > 0 }

// LoadMore appends the next page after the entries already held. Entries
// already loaded are never reordered. On failure nothing is appended.
func (r *Ratings) LoadMore(ctx context.Context) error {
	page := r.BeginLoad()
	rated, err := page.Fetch(ctx)
	return r.FinishLoad(rated, err)
}

// RatingsPage is a fetch prepared by BeginLoad. Fetch touches no aggregator
// state, so it may run without the owner's lock.
type RatingsPage struct {
	source domain.RatingsSource
	after  int64
	limit  int
}

func (p RatingsPage) Fetch(ctx context.Context) ([]domain.RatedHotel, error) {
	return p.source.FetchRatedHotels(ctx, p.after, p.limit)
}

// BeginLoad marks a page fetch in flight. Every BeginLoad must be paired
// with one FinishLoad.
func (r *Ratings) BeginLoad() RatingsPage {
	r.inflight++
	r.loading = true
	r.status = StatusLoading
	return RatingsPage{source: r.source, after: r.cursor, limit: r.pageSize}
}

// FinishLoad appends a fetched page. Entries at or before the cursor were
// already appended by an overlapping fetch and are dropped.
func (r *Ratings) FinishLoad(page []domain.RatedHotel, err error) error {
	if r.inflight > 0 {
		r.inflight--
	}
	r.loading = r.inflight > 0

	if err != nil {
		r.status = StatusFetchFailed
		observability.ObserveRatingPage("failed")
		log.Warn().Err(err).Int64("after", r.cursor).Msg("rated hotels fetch failed")
		return fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	for _, h := range page {
		if r.Loaded() && h.VisitID <= r.cursor {
			continue
		}
		r.rated = append(r.rated, h)
		r.cursor = h.VisitID
	}
	r.status = StatusReady
	observability.ObserveRatingPage("ok")
	return nil
}

// Rate stores a new rating for a loaded visit and updates it in place.
func (r *Ratings) Rate(ctx context.Context, visitID int64, rating float64) error {
	if !domain.ValidRating(rating) {
		return domain.ErrInvalidRating
	}
	i := slices.IndexFunc(r.rated, func(h domain.RatedHotel) bool { return h.VisitID == visitID })
	if i < 0 {
		return fmt.Errorf("visit %d: %w", visitID, domain.ErrNotFound)
	}
	if err := r.source.RateVisit(ctx, visitID, rating); err != nil {
		return err
	}
	r.rated[i].UserRating = rating
	return nil
}

func (r *Ratings) Count() int { return len(r.rated) }

// Average is the mean user rating rounded to one decimal, 0 when empty.
func (r *Ratings) Average() float64 {
	if len(r.rated) == 0 {
		return 0
	}
	var sum float64
	for _, h := range r.rated {
		sum += h.UserRating
	}
	return math.Round(sum/float64(len(r.rated))*10) / 10
}

func (r *Ratings) View() RatingsView {
	rated := slices.Clone(r.rated)
	if rated == nil {
		rated = []domain.RatedHotel{}
	}
	return RatingsView{
		RatedHotels: rated,
		Count:       r.Count(),
		Average:     r.Average(),
		Loading:     r.loading,
		Status:      r.status,
	}
}
