package domain

import "context"

// ListingSource returns the hotel list of one listing endpoint.
type ListingSource interface {
	ListHotels(ctx context.Context) ([]Hotel, error)
}

// RatingsSource pages through rated past visits in server order.
// after is the last VisitID already seen (0 for the first page).
type RatingsSource interface {
	FetchRatedHotels(ctx context.Context, after int64, limit int) ([]RatedHotel, error)
	RateVisit(ctx context.Context, visitID int64, rating float64) error
}

type VisitRepository interface {
	RatingsSource

	// Write paths
	UpsertHotels(ctx context.Context, hs []Hotel) error
	RecordVisit(ctx context.Context, hotelID ID, rating float64) (RatedHotel, error)
}

// ChartPreloader is told as soon as a catalog has data worth charting.
type ChartPreloader interface {
	PreloadChart()
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
