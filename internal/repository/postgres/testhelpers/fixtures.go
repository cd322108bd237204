package testhelpers

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PointFixture - минимальная строка collection_points для тестов
type PointFixture struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
	Geohash   string
	Items     string // literal text[] e.g. '{papel,vidro}'
}

// InsertRawPoints writes rows directly, bypassing repository validation.
func InsertRawPoints(ctx context.Context, db *sqlx.DB, fixtures []PointFixture) error {
	for _, f := range fixtures {
		_, err := db.ExecContext(ctx, `
			INSERT INTO collection_points (id, name, latitude, longitude, geohash, accepted_items)
			VALUES ($1, $2, $3, $4, $5, $6::text[])`,
			f.ID, f.Name, f.Latitude, f.Longitude, f.Geohash, f.Items,
		)
		if err != nil {
			return fmt.Errorf("insert fixture %s: %w", f.ID, err)
		}
	}
	return nil
}
