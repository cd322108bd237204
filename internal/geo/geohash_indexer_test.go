package geo

import (
	"math/rand"
	"testing"

	"github.com/ecopoint-service/internal/domain"
	"github.com/ecopoint-service/internal/pkg/errors"
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexer_Encode(t *testing.T) {
	idx := NewIndexer(DefaultPrecision)

	hash := idx.Encode(57.64911, 10.40744)
	assert.Equal(t, "u4pruydqqv", hash)
	assert.Len(t, hash, int(DefaultPrecision))

	// детерминированность
	for i := 0; i < 100; i++ {
		assert.Equal(t, hash, idx.Encode(57.64911, 10.40744))
	}
}

func TestIndexer_EncodeEdges(t *testing.T) {
	idx := NewIndexer(8)

	assert.Len(t, idx.Encode(90, 180), 8)
	assert.Len(t, idx.Encode(-90, -180), 8)
	assert.Equal(t, idx.Encode(10, -180), idx.Encode(10, 180))
}

func TestNewIndexer_ClampsPrecision(t *testing.T) {
	assert.Equal(t, uint(1), NewIndexer(0).Precision())
	assert.Equal(t, MaxPrecision, NewIndexer(40).Precision())
	assert.Equal(t, uint(7), NewIndexer(7).Precision())
}

func TestIndexer_Locate(t *testing.T) {
	idx := NewIndexer(DefaultPrecision)
	p := &domain.CollectionPoint{ID: "p1"}

	idx.Locate(p, -23.55, -46.63)

	assert.Equal(t, -23.55, p.Latitude)
	assert.Equal(t, -46.63, p.Longitude)
	assert.Equal(t, idx.Encode(-23.55, -46.63), p.Geohash)

	idx.Locate(p, -23.6, -46.7)
	assert.Equal(t, idx.Encode(-23.6, -46.7), p.Geohash)
}

func TestIndexer_QueryBoundsInvalid(t *testing.T) {
	idx := NewIndexer(DefaultPrecision)

	tests := []struct {
		name   string
		center *domain.Coordinate
		radius float64
	}{
		{name: "nil center", center: nil, radius: 5000},
		{name: "latitude out of range", center: &domain.Coordinate{Lat: 91, Lng: 0}, radius: 5000},
		{name: "longitude out of range", center: &domain.Coordinate{Lat: 0, Lng: 200}, radius: 5000},
		{name: "zero radius", center: &domain.Coordinate{Lat: -23.55, Lng: -46.63}, radius: 0},
		{name: "negative radius", center: &domain.Coordinate{Lat: -23.55, Lng: -46.63}, radius: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranges, err := idx.QueryBounds(tt.center, tt.radius)
			assert.Nil(t, ranges)
			assert.ErrorIs(t, err, errors.ErrInvalidQuery)
		})
	}
}

func TestIndexer_QueryBoundsShape(t *testing.T) {
	idx := NewIndexer(DefaultPrecision)

	ranges, err := idx.QueryBounds(&domain.Coordinate{Lat: -23.55, Lng: -46.63}, 5000)
	require.NoError(t, err)
	require.NotEmpty(t, ranges)
	assert.LessOrEqual(t, len(ranges), 9)

	for i, r := range ranges {
		assert.LessOrEqual(t, r.Lower, r.Upper)
		if i > 0 {
			assert.Less(t, ranges[i-1].Upper, r.Lower, "ranges must be sorted and disjoint")
		}
	}
}

func TestIndexer_QueryBoundsHugeRadius(t *testing.T) {
	idx := NewIndexer(DefaultPrecision)

	ranges, err := idx.QueryBounds(&domain.Coordinate{Lat: 0, Lng: 0}, 8_000_000)
	require.NoError(t, err)
	assert.Equal(t, []domain.GeoRange{FullRange}, ranges)
}

func TestIndexer_QueryBoundsCoversDisk(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	centers := []domain.Coordinate{
		{Lat: -23.55, Lng: -46.63},
		{Lat: 0, Lng: 0},
		{Lat: 51.5, Lng: -0.0001},
		{Lat: 10, Lng: 179.999},
		{Lat: -33.9, Lng: -179.99},
		{Lat: 75, Lng: 30},
	}
	radii := []float64{1, 50, 500, 5000, 20000, 100000}

	for _, precision := range []uint{5, DefaultPrecision, MaxPrecision} {
		idx := NewIndexer(precision)

		for _, c := range centers {
			for _, r := range radii {
				center := c
				ranges, err := idx.QueryBounds(&center, r)
				require.NoError(t, err)

				for n := 0; n < 200; n++ {
					bearing := rng.Float64() * 360
					dist := rng.Float64() * r
					if n%20 == 0 {
						dist = r
					}

					p := orbgeo.PointAtBearingAndDistance(orb.Point{c.Lng, c.Lat}, bearing, dist)
					target := domain.Coordinate{Lat: p.Lat(), Lng: p.Lon()}
					if DistanceMeters(c, target) > r {
						continue
					}

					hash := idx.Encode(target.Lat, target.Lng)
					assert.Truef(t, covered(ranges, hash),
						"precision=%d center=%v radius=%v point=%v hash=%s ranges=%v",
						precision, c, r, target, hash, ranges)
				}
			}
		}
	}
}

func TestMergeCells(t *testing.T) {
	ranges := mergeCells([]string{"6gyg", "6gyc", "6gyf"})

	assert.Equal(t, []domain.GeoRange{
		{Lower: "6gyc", Upper: "6gyc~"},
		{Lower: "6gyf", Upper: "6gyg~"},
	}, ranges)

	assert.Nil(t, mergeCells(nil))
}

func TestSuccessor(t *testing.T) {
	next, ok := successor("0z")
	assert.True(t, ok)
	assert.Equal(t, "10", next)

	next, ok = successor("6gyc")
	assert.True(t, ok)
	assert.Equal(t, "6gyd", next)

	_, ok = successor("zz")
	assert.False(t, ok)
}

func covered(ranges []domain.GeoRange, hash string) bool {
	for _, r := range ranges {
		if r.Contains(hash) {
			return true
		}
	}
	return false
}
