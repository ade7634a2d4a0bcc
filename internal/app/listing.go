package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"slices"
	"time"

	"hotel_booking/internal/domain"
)

// CachedListing serves a listing endpoint through the cache.
type CachedListing struct {
	src      domain.ListingSource
	cache    domain.Cache
	key      string
	cacheTTL time.Duration
}

// NewCachedListing keys the cache by endpoint so several listings can share it.
func NewCachedListing(src domain.ListingSource, c domain.Cache, endpoint string, ttl time.Duration) *CachedListing {
	return &CachedListing{
		src:      src,
		cache:    c,
		key:      ListingCacheKey(endpoint),
		cacheTTL: ttl,
	}
}

func ListingCacheKey(endpoint string) string {
	sum := sha1.Sum([]byte(endpoint))
	return "listing:" + hex.EncodeToString(sum[:8])
}

func (s *CachedListing) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	var out []domain.Hotel
	if ok, _ := s.cache.Get(ctx, s.key, &out); ok {
		return out, nil
	}
	hs, err := s.src.ListHotels(ctx)
	if err != nil {
		return nil, err
	}
	// copy so callers cannot mutate what was cached
	cp := slices.Clone(hs)
	_ = s.cache.Set(ctx, s.key, cp, int(s.cacheTTL.Seconds()))
	return cp, nil
}

// Invalidate drops the cached listing; the next ListHotels hits the source.
func (s *CachedListing) Invalidate(ctx context.Context) error {
	return s.cache.Del(ctx, s.key)
}
