package geo

import (
	"math"
	"sort"
	"strings"

	"github.com/ecopoint-service/internal/domain"
	"github.com/ecopoint-service/internal/pkg/errors"
	"github.com/mmcloughlin/geohash"
	"github.com/paulmach/orb"
)

const (
	// DefaultPrecision - длина geohash по умолчанию (~1.2 м x 0.6 м)
	DefaultPrecision uint = 10
	// MaxPrecision - максимум, который кодирует mmcloughlin/geohash
	MaxPrecision uint = 12

	// rangeSuffix sorts after every base32 character, so "abc~" bounds all "abc*" keys.
	rangeSuffix = "~"

	base32Alphabet = "0123456789bcdefghjkmnpqrstuvwxyz"
)

// FullRange covers every possible geohash key.
var FullRange = domain.GeoRange{Lower: "", Upper: rangeSuffix}

// Indexer кодирует точки в geohash фиксированной точности и строит
// диапазоны ключей для поиска по радиусу.
type Indexer struct {
	precision uint
}

// NewIndexer creates an indexer; precision is clamped to [1, MaxPrecision].
func NewIndexer(precision uint) *Indexer {
	if precision < 1 {
		precision = 1
	}
	if precision > MaxPrecision {
		precision = MaxPrecision
	}
	return &Indexer{precision: precision}
}

// Precision returns the number of geohash characters produced by Encode.
func (i *Indexer) Precision() uint {
	return i.precision
}

// Encode returns the geohash of (lat, lng) at the indexer precision.
func (i *Indexer) Encode(lat, lng float64) string {
	return encode(lat, lng, i.precision)
}

// Locate sets the point coordinates and recomputes its geohash.
func (i *Indexer) Locate(p *domain.CollectionPoint, lat, lng float64) {
	p.Latitude = lat
	p.Longitude = lng
	p.Geohash = i.Encode(lat, lng)
}

// QueryBounds returns sorted, disjoint geohash ranges whose union contains
// every point within radiusMeters of center.
func (i *Indexer) QueryBounds(center *domain.Coordinate, radiusMeters float64) ([]domain.GeoRange, error) {
	if center == nil {
		return nil, errors.ErrInvalidQuery.WithDetails(map[string]interface{}{
			"reason": "center is required",
		})
	}
	if !center.Valid() {
		return nil, errors.ErrInvalidQuery.WithDetails(map[string]interface{}{
			"reason": "center out of range",
			"lat":    center.Lat,
			"lng":    center.Lng,
		})
	}
	if math.IsNaN(radiusMeters) || math.IsInf(radiusMeters, 0) || radiusMeters <= 0 {
		return nil, errors.ErrInvalidQuery.WithDetails(map[string]interface{}{
			"reason":        "radius must be positive",
			"radius_meters": radiusMeters,
		})
	}

	box := boundAround(*center, radiusMeters)
	dLat := (box.Max.Lat() - box.Min.Lat()) / 2
	dLng := (box.Max.Lon() - box.Min.Lon()) / 2

	chars := cellPrecision(dLat, dLng, i.precision)
	if chars < 1 {
		return []domain.GeoRange{FullRange}, nil
	}

	cells := make([]string, 0, 9)
	for _, cell := range block(center.Lat, center.Lng, chars) {
		if intersects(geohash.BoundingBox(cell), box) {
			cells = append(cells, cell)
		}
	}

	return mergeCells(cells), nil
}

// boundAround returns the lat/lng box of the spherical cap. Longitudes are left
// unwrapped (may exceed ±180) so a box crossing the antimeridian stays contiguous.
func boundAround(center domain.Coordinate, radiusMeters float64) orb.Bound {
	radDist := radiusMeters / orb.EarthRadius
	dLat := rad2deg(radDist)

	var dLng float64
	if math.Abs(center.Lat)+dLat >= 90 || radDist >= math.Pi/2 {
		dLng = 180
	} else {
		dLng = rad2deg(math.Asin(math.Sin(radDist) / math.Cos(deg2rad(center.Lat))))
	}

	// небольшой запас на погрешность округления
	dLat *= 1 + 1e-9
	dLng *= 1 + 1e-9

	return orb.Bound{
		Min: orb.Point{center.Lng - dLng, math.Max(center.Lat-dLat, -90)},
		Max: orb.Point{center.Lng + dLng, math.Min(center.Lat+dLat, 90)},
	}
}

// cellPrecision picks the finest precision whose cells are at least as large as
// the half-spans, so the 3x3 block around the center cell contains the box.
// Returns 0 when even single-character cells are too small.
func cellPrecision(dLat, dLng float64, max uint) uint {
	for chars := max; chars >= 1; chars-- {
		w, h := cellSize(chars)
		if w >= dLng && h >= dLat {
			return chars
		}
	}
	return 0
}

// cellSize returns width and height in degrees of a cell with the given number of chars.
func cellSize(chars uint) (width, height float64) {
	bits := 5 * chars
	lngBits := (bits + 1) / 2
	latBits := bits / 2
	return 360 / math.Pow(2, float64(lngBits)), 180 / math.Pow(2, float64(latBits))
}

// block returns the center cell and its existing neighbors, longitude wrapped.
func block(lat, lng float64, chars uint) []string {
	w, h := cellSize(chars)
	center := geohash.BoundingBox(encode(lat, lng, chars))
	cLat, cLng := center.Center()

	seen := make(map[string]struct{}, 9)
	cells := make([]string, 0, 9)
	for _, dy := range []float64{-1, 0, 1} {
		nLat := cLat + dy*h
		if nLat < -90 || nLat > 90 {
			continue
		}
		for _, dx := range []float64{-1, 0, 1} {
			cell := encode(nLat, wrapLng(cLng+dx*w), chars)
			if _, ok := seen[cell]; ok {
				continue
			}
			seen[cell] = struct{}{}
			cells = append(cells, cell)
		}
	}
	return cells
}

// intersects tests the cell against the unwrapped box, also shifted by ±360°.
func intersects(cell geohash.Box, box orb.Bound) bool {
	for _, shift := range []float64{-360, 0, 360} {
		b := orb.Bound{
			Min: orb.Point{cell.MinLng + shift, cell.MinLat},
			Max: orb.Point{cell.MaxLng + shift, cell.MaxLat},
		}
		if b.Intersects(box) {
			return true
		}
	}
	return false
}

// mergeCells sorts same-length cells and joins runs of consecutive hashes.
func mergeCells(cells []string) []domain.GeoRange {
	if len(cells) == 0 {
		return nil
	}
	sort.Strings(cells)

	ranges := make([]domain.GeoRange, 0, len(cells))
	first, last := cells[0], cells[0]
	for _, cell := range cells[1:] {
		if next, ok := successor(last); ok && next == cell {
			last = cell
			continue
		}
		ranges = append(ranges, domain.GeoRange{Lower: first, Upper: last + rangeSuffix})
		first, last = cell, cell
	}
	ranges = append(ranges, domain.GeoRange{Lower: first, Upper: last + rangeSuffix})
	return ranges
}

// successor returns the next hash of the same length in base32 order.
func successor(hash string) (string, bool) {
	b := []byte(hash)
	for i := len(b) - 1; i >= 0; i-- {
		idx := strings.IndexByte(base32Alphabet, b[i])
		if idx < 0 {
			return "", false
		}
		if idx < len(base32Alphabet)-1 {
			b[i] = base32Alphabet[idx+1]
			return string(b), true
		}
		b[i] = base32Alphabet[0]
	}
	return "", false
}

func encode(lat, lng float64, chars uint) string {
	// на границах (lat=90, lng=180) кодировщик переполняется
	if lat >= 90 {
		lat = math.Nextafter(90, 0)
	}
	if lat <= -90 {
		lat = -90
	}
	return geohash.EncodeWithPrecision(lat, wrapLng(lng), chars)
}

// wrapLng normalizes a longitude into [-180, 180).
func wrapLng(lng float64) float64 {
	lng = math.Mod(lng+180, 360)
	if lng < 0 {
		lng += 360
	}
	return lng - 180
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }

func rad2deg(r float64) float64 { return r * 180 / math.Pi }
