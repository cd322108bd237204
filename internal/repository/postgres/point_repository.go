package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ecopoint-service/internal/domain"
	"github.com/ecopoint-service/internal/domain/repository"
	"github.com/ecopoint-service/internal/pkg/validator"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// pointRow - строка таблицы collection_points
type pointRow struct {
	ID             string         `db:"id" validate:"required"`
	Name           string         `db:"name" validate:"required"`
	Address        string         `db:"address"`
	PostalCode     string         `db:"postal_code"`
	Phone          string         `db:"phone"`
	OperatingHours string         `db:"operating_hours"`
	Latitude       float64        `db:"latitude" validate:"latitude"`
	Longitude      float64        `db:"longitude" validate:"longitude"`
	Geohash        string         `db:"geohash" validate:"geohash"`
	AcceptedItems  pq.StringArray `db:"accepted_items"`
	ImportedAt     time.Time      `db:"imported_at"`
}

type pointRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewPointRepository(db *DB) repository.PointStore {
	return &pointRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

func (r *pointRepository) QueryRange(ctx context.Context, lower, upper string) ([]*domain.CollectionPoint, error) {
	query := `
		SELECT
			id, name, address, postal_code, phone, operating_hours,
			latitude, longitude, geohash, accepted_items, imported_at
		FROM collection_points
		WHERE geohash COLLATE "C" >= $1 AND geohash COLLATE "C" <= $2
		ORDER BY geohash COLLATE "C", id
	`

	var rows []pointRow
	if err := r.db.SelectContext(ctx, &rows, query, lower, upper); err != nil {
		r.logger.Error("Failed to query collection points",
			zap.String("lower", lower),
			zap.String("upper", upper),
			zap.Error(err))
		return nil, fmt.Errorf("query range %s..%s: %w", lower, upper, err)
	}

	points := make([]*domain.CollectionPoint, 0, len(rows))
	for _, row := range rows {
		if err := validator.Validate(row); err != nil {
			r.logger.Warn("Invalid collection point row, skipping", zap.String("id", row.ID), zap.Error(err))
			continue
		}
		points = append(points, row.toDomain())
	}

	return points, nil
}

func (r *pointRepository) Upsert(ctx context.Context, points []*domain.CollectionPoint) error {
	if len(points) == 0 {
		return nil
	}

	query := `
		INSERT INTO collection_points (
			id, name, address, postal_code, phone, operating_hours,
			latitude, longitude, geohash, accepted_items, imported_at
		) VALUES (
			:id, :name, :address, :postal_code, :phone, :operating_hours,
			:latitude, :longitude, :geohash, :accepted_items, :imported_at
		)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			postal_code = EXCLUDED.postal_code,
			phone = EXCLUDED.phone,
			operating_hours = EXCLUDED.operating_hours,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			geohash = EXCLUDED.geohash,
			accepted_items = EXCLUDED.accepted_items,
			imported_at = EXCLUDED.imported_at
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareNamedContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, fromDomain(p)); err != nil {
			return fmt.Errorf("upsert point %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}

	r.logger.Debug("Collection points upserted", zap.Int("count", len(points)))
	return nil
}

func fromDomain(p *domain.CollectionPoint) pointRow {
	importedAt := p.ImportedAt
	if importedAt.IsZero() {
		importedAt = time.Now().UTC()
	}
	items := p.AcceptedItems
	if items == nil {
		items = []string{}
	}
	return pointRow{
		ID:             p.ID,
		Name:           p.Name,
		Address:        p.Address,
		PostalCode:     p.PostalCode,
		Phone:          p.Phone,
		OperatingHours: p.OperatingHours,
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		Geohash:        p.Geohash,
		AcceptedItems:  pq.StringArray(items),
		ImportedAt:     importedAt,
	}
}

func (row pointRow) toDomain() *domain.CollectionPoint {
	return &domain.CollectionPoint{
		ID:             row.ID,
		Name:           row.Name,
		Address:        row.Address,
		PostalCode:     row.PostalCode,
		Phone:          row.Phone,
		OperatingHours: row.OperatingHours,
		Latitude:       row.Latitude,
		Longitude:      row.Longitude,
		Geohash:        row.Geohash,
		AcceptedItems:  domain.NormalizeCategories(row.AcceptedItems),
		ImportedAt:     row.ImportedAt,
	}
}
