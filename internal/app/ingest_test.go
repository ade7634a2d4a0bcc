package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

const endpoint = "http://listing/hotels.json"

func TestIngestListing_UpsertsAndInvalidates(t *testing.T) {
	repo := &fakeRepo{}
	cache := &fakeCache{}
	hs := append(sample(), domain.Hotel{Title: "no id"})
	ing := app.NewIngestionService(repo, cache)

	n, err := ing.IngestListing(context.Background(), endpoint, &fakeListing{hotels: hs})
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(repo.upserted))
	assert.Equal(t, []string{app.ListingCacheKey(endpoint)}, cache.dels)
}

func TestIngestListing_NotFoundIsSkipped(t *testing.T) {
	repo := &fakeRepo{}
	cache := &fakeCache{}
	ing := app.NewIngestionService(repo, cache)

	n, err := ing.IngestListing(context.Background(), endpoint, &fakeListing{err: domain.ErrNotFound})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, repo.upserted)
	assert.Len(t, cache.dels, 1)
}

func TestIngestListing_Errors(t *testing.T) {
	ing := app.NewIngestionService(&fakeRepo{}, nil)
	_, err := ing.IngestListing(context.Background(), endpoint, &fakeListing{err: errors.New("502")})
	assert.ErrorIs(t, err, domain.ErrFetchFailed)

	ing = app.NewIngestionService(&fakeRepo{err: errors.New("deadlock")}, nil)
	_, err = ing.IngestListing(context.Background(), endpoint, &fakeListing{hotels: sample()})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrFetchFailed)
}
