package domain

import "time"

// RatedHotel is a past visit together with the rating the user gave it.
type RatedHotel struct {
	VisitID    int64     `json:"visit_id"`
	HotelID    ID        `json:"hotel_id"`
	Title      string    `json:"title"`
	Room       BedType   `json:"room,omitempty"`
	UserRating float64   `json:"user_rating"`
	VisitedAt  time.Time `json:"visited_at"`
}

const (
	MinUserRating = 1
	MaxUserRating = 5
)

func ValidRating(v float64) bool {
	return v >= MinUserRating && v <= MaxUserRating
}
