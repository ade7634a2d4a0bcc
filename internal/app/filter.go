package app

import "hotel_booking/internal/domain"

// FilterSet maps a bed type to whether it is selected. A set with nothing
// selected does not filter at all.
type FilterSet map[domain.BedType]bool

// Any reports whether at least one bed type is selected.
func (f FilterSet) Any() bool {
	for _, on := range f {
		if on {
			return true
		}
	}
	return false
}

func (f FilterSet) Clone() FilterSet {
	out := make(FilterSet, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	return out
}

// With returns a copy of f with key set to active; f is left untouched.
func (f FilterSet) With(key domain.BedType, active bool) FilterSet {
	out := f.Clone()
	out[key] = active
	return out
}

// ApplyFilter keeps hotels whose room type is selected in filters.
// Selected types are OR-combined. With nothing selected the input slice is
// returned as is.
func ApplyFilter(filters FilterSet, hotels []domain.Hotel) []domain.Hotel {
	if !filters.Any() {
		return hotels
	}
	out := make([]domain.Hotel, 0, len(hotels))
	for _, h := range hotels {
		if filters[h.Room] {
			out = append(out, h)
		}
	}
	return out
}
