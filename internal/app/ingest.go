package app

import (
	"context"
	"errors"
	"fmt"

	"hotel_booking/internal/domain"
)

// IngestionService copies listing snapshots into the visit store so rated
// visits can resolve hotel titles and room types.
type IngestionService struct {
	repo  domain.VisitRepository
	cache domain.Cache
}

func NewIngestionService(r domain.VisitRepository, cache domain.Cache) *IngestionService {
	return &IngestionService{repo: r, cache: cache}
}

// IngestListing fetches one listing and upserts every hotel in it. A listing
// that no longer exists is skipped, not treated as a failure.
func (s *IngestionService) IngestListing(ctx context.Context, endpoint string, src domain.ListingSource) (int, error) {
	hs, err := src.ListHotels(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.invalidate(ctx, endpoint)
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}

	valid := hs[:0:0]
	for _, h := range hs {
		if h.ID == "" {
			continue
		}
		valid = append(valid, h)
	}
	if err := s.repo.UpsertHotels(ctx, valid); err != nil {
		return 0, fmt.Errorf("upsert hotels: %w", err)
	}
	s.invalidate(ctx, endpoint)
	return len(valid), nil
}

// invalidate evicts the API's cached copy of the listing so it serves the
// freshly ingested snapshot.
func (s *IngestionService) invalidate(ctx context.Context, endpoint string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, ListingCacheKey(endpoint))
}
