package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexFloat accepts a JSON number or a numeric string ("-23.55", "-23,55").
// An empty string or null leaves Set=false so callers can tell "absent" apart.
type FlexFloat struct {
	Value float64
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = FlexFloat{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = FlexFloat{}
			return nil
		}
		v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
		if err != nil {
			return fmt.Errorf("invalid coordinate %q: %w", s, err)
		}
		*f = FlexFloat{Value: v, Set: true}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid coordinate %s: %w", string(data), err)
	}
	*f = FlexFloat{Value: v, Set: true}
	return nil
}

// MarshalJSON implements json.Marshaler
func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// CoordinateFrom returns nil unless both halves were supplied.
func CoordinateFrom(lat, lng FlexFloat) *Coordinate {
	if !lat.Set || !lng.Set {
		return nil
	}
	return &Coordinate{Lat: lat.Value, Lng: lng.Value}
}
