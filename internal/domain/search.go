package domain

const (
	// DefaultSearchRadiusMeters - радиус поиска по умолчанию (5 км)
	DefaultSearchRadiusMeters = 5000.0

	// DefaultNearbyLimit caps the ranked list when the caller gives no limit.
	DefaultNearbyLimit = 10

	// DefaultMinGeneralCategories - сколько категорий нужно пункту без фильтра
	DefaultMinGeneralCategories = 3
)

// SearchQuery - параметры поиска ближайшего пункта
type SearchQuery struct {
	// Center is nil when the caller did not send coordinates.
	Center         *Coordinate
	RadiusMeters   float64
	CategoryFilter []string
	Limit          int
}

// NewSearchQuery builds a query with the default radius and a normalized filter.
func NewSearchQuery(center *Coordinate, categories []string) SearchQuery {
	return SearchQuery{
		Center:         center,
		RadiusMeters:   DefaultSearchRadiusMeters,
		CategoryFilter: NormalizeCategories(categories),
	}
}

// SearchResult - результат поиска; Found=false означает "ничего не найдено"
type SearchResult struct {
	Point          *CollectionPoint `json:"point,omitempty"`
	DistanceMeters float64          `json:"distance_meters"`
	RadiusMeters   float64          `json:"radius_meters"`
	Found          bool             `json:"found"`
}

// NoMatch returns the terminal "nothing within radius/category" result.
func NoMatch(radiusMeters float64) *SearchResult {
	return &SearchResult{RadiusMeters: radiusMeters}
}
