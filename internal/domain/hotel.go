package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// BedType is the room key a hotel is listed under (single, double, ...).
type BedType string

// Hotel is one normalized record of the listing API.
type Hotel struct {
	ID     ID      `json:"id"`
	Title  string  `json:"title"`
	Room   BedType `json:"room"`
	Price  Price   `json:"price"`
	Rating Rating  `json:"rating"`
}

type Price struct {
	Amount Number `json:"amount"`
}

type Rating struct {
	Average Number `json:"average"`
	Reviews Number `json:"reviews"`
}

// Listing is the listing API response body; only List is consumed. Records
// stay raw so one malformed entry can be skipped without losing the rest.
type Listing struct {
	List []json.RawMessage `json:"list"`
}

// Number accepts JSON numbers and numeric strings ("120", "4,5", "1,200.50").
// Empty strings and null decode to zero. NaN and infinities are rejected.
type Number float64

var thousands = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+$`)

// ParseNumber reads a numeric string the way listing payloads write them.
// A comma is a thousands separator when the value also has a '.' or is
// grouped in threes ("1,200"), otherwise it is the decimal mark ("4,5").
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	switch {
	case strings.Contains(s, ".") || thousands.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") == 1:
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("number %q: %w", s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("number %q: %w", s, ErrNotFinite)
	}
	return f, nil
}

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	}
	f, err := ParseNumber(raw)
	if err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// MarshalJSON writes non-finite values as 0 so a response never fails to encode.
func (n Number) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, n.Float(), 'f', -1, 64), nil
}

// Float returns n, or 0 when n is NaN or infinite.
func (n Number) Float() float64 {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ID accepts both string and numeric identifiers.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	*id = ID(string(b))
	return nil
}

// ChartPoint is one hotel projected for the rating/price chart.
type ChartPoint struct {
	Rating  float64 `json:"rating"`
	Price   float64 `json:"price"`
	Reviews float64 `json:"reviews"`
	Name    string  `json:"name"`
}
