package domain

import "math"

// Coordinate - географическая точка в градусах
type Coordinate struct {
	Lat float64 `json:"lat" db:"lat"`
	Lng float64 `json:"lng" db:"lng"`
}

// Valid reports whether the coordinate is a finite point inside the WGS84 ranges.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// GeoRange - inclusive geohash key range [Lower, Upper]
type GeoRange struct {
	Lower string `json:"lower"`
	Upper string `json:"upper"`
}

// Contains reports whether hash falls inside the range, both ends inclusive.
func (r GeoRange) Contains(hash string) bool {
	return hash >= r.Lower && hash <= r.Upper
}
