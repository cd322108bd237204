package domain

import (
	"sort"
	"strings"
	"time"
)

// CollectionPoint - пункт приёма вторсырья (ecoponto).
// Records are written by the importer and never mutated by the search path.
type CollectionPoint struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Address        string    `json:"address" db:"address"`
	PostalCode     string    `json:"postal_code" db:"postal_code"`
	Phone          string    `json:"phone" db:"phone"`
	OperatingHours string    `json:"operating_hours" db:"operating_hours"`
	Latitude       float64   `json:"latitude" db:"latitude"`
	Longitude      float64   `json:"longitude" db:"longitude"`
	Geohash        string    `json:"geohash" db:"geohash"`
	AcceptedItems  []string  `json:"accepted_items" db:"accepted_items"`
	ImportedAt     time.Time `json:"imported_at" db:"imported_at"`
}

// Coordinate возвращает координаты пункта
func (p *CollectionPoint) Coordinate() Coordinate {
	return Coordinate{Lat: p.Latitude, Lng: p.Longitude}
}

// Accepts reports whether the point takes at least one of the given categories.
// categories must already be canonical (see NormalizeCategories).
func (p *CollectionPoint) Accepts(categories []string) bool {
	for _, want := range categories {
		for _, item := range p.AcceptedItems {
			if NormalizeCategory(item) == want {
				return true
			}
		}
	}
	return false
}

// CategoryCount returns the number of distinct accepted categories.
func (p *CollectionPoint) CategoryCount() int {
	seen := make(map[string]struct{}, len(p.AcceptedItems))
	for _, item := range p.AcceptedItems {
		if n := NormalizeCategory(item); n != "" {
			seen[n] = struct{}{}
		}
	}
	return len(seen)
}

// NormalizeCategory приводит категорию к каноническому виду
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// NormalizeCategories lowercases, trims, drops empties and duplicates and sorts.
func NormalizeCategories(categories []string) []string {
	if len(categories) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(categories))
	result := make([]string, 0, len(categories))
	for _, c := range categories {
		n := NormalizeCategory(c)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		result = append(result, n)
	}
	sort.Strings(result)

	if len(result) == 0 {
		return nil
	}
	return result
}

// ParseCategoryFilter splits the "filtro" field ("papel,vidro" or "papel, vidro").
func ParseCategoryFilter(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return NormalizeCategories(strings.Split(raw, ","))
}
