package app

import (
	"fmt"
	"slices"
	"strings"

	"hotel_booking/internal/domain"
)

type SortField string

const (
	SortByPrice   SortField = "price"
	SortByRating  SortField = "rating"
	SortByReviews SortField = "reviews"
)

// comparators: price ascending, rating and reviews descending.
var comparators = map[SortField]func(a, b domain.Hotel) int{
	SortByPrice: func(a, b domain.Hotel) int {
		return cmpFloat(a.Price.Amount.Float(), b.Price.Amount.Float())
	},
	SortByRating: func(a, b domain.Hotel) int {
		return cmpFloat(b.Rating.Average.Float(), a.Rating.Average.Float())
	},
	SortByReviews: func(a, b domain.Hotel) int {
		return cmpFloat(b.Rating.Reviews.Float(), a.Rating.Reviews.Float())
	},
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func ParseSortField(s string) (SortField, error) {
	f := SortField(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := comparators[f]; !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownSortField, s)
	}
	return f, nil
}

// ApplySort returns a stably sorted copy of hotels. It panics on a field
// that did not come from ParseSortField or the SortBy constants.
func ApplySort(hotels []domain.Hotel, field SortField) []domain.Hotel {
	cmp, ok := comparators[field]
	if !ok {
		panic(fmt.Sprintf("app: %v: %q", domain.ErrUnknownSortField, field))
	}
	out := slices.Clone(hotels)
	slices.SortStableFunc(out, cmp)
	return out
}
