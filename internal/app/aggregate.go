package app

import "hotel_booking/internal/domain"

// CountByType counts hotels per bed type. The catalog feeds it the
// unfiltered list so filter counts stay global.
func CountByType(hotels []domain.Hotel) map[domain.BedType]int {
	out := make(map[domain.BedType]int)
	for _, h := range hotels {
		out[h.Room]++
	}
	return out
}

func ChartTuples(hotels []domain.Hotel) []domain.ChartPoint {
	out := make([]domain.ChartPoint, 0, len(hotels))
	for _, h := range hotels {
		out = append(out, domain.ChartPoint{
			Rating:  h.Rating.Average.Float(),
			Price:   h.Price.Amount.Float(),
			Reviews: h.Rating.Reviews.Float(),
			Name:    h.Title,
		})
	}
	return out
}
