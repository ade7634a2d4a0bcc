package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrFetchFailed          = errors.New("fetch failed")
	ErrUnknownSortField     = errors.New("unknown sort field")
	ErrUnknownFilterKey     = errors.New("unknown filter key")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	ErrInvalidRating        = errors.New("rating must be between 1 and 5")
	ErrNotFinite            = errors.New("not a finite number")
)
