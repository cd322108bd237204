package testhelpers

import (
	"context"

	"github.com/ecopoint-service/internal/domain/repository"
	"github.com/ecopoint-service/internal/repository/postgres"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// ApplyMigrations runs the embedded migrations against the test database
func ApplyMigrations(ctx context.Context, db *sqlx.DB, logger *zap.Logger) error {
	return NewDBForTest(db, logger).Migrate(ctx)
}

// NewPointRepositoryForTest creates a point repository with test database and logger
func NewPointRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.PointStore {
	return postgres.NewPointRepository(NewDBForTest(db, logger))
}
