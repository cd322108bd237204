package geo

import (
	"github.com/ecopoint-service/internal/domain"
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// DistanceMeters - расстояние по большому кругу (haversine) в метрах
func DistanceMeters(a, b domain.Coordinate) float64 {
	return orbgeo.DistanceHaversine(toPoint(a), toPoint(b))
}

func toPoint(c domain.Coordinate) orb.Point {
	return orb.Point{c.Lng, c.Lat}
}
