package repository

import (
	"context"

	"github.com/ecopoint-service/internal/domain"
)

// PointRepository - хранилище пунктов приёма, индексированное по geohash
type PointRepository interface {
	// QueryRange возвращает пункты с lower <= geohash <= upper, отсортированные по geohash
	QueryRange(ctx context.Context, lower, upper string) ([]*domain.CollectionPoint, error)
}

// PointWriter записывает пункты; используется только импортом
type PointWriter interface {
	// Upsert сохраняет пункты по ID, перезаписывая существующие
	Upsert(ctx context.Context, points []*domain.CollectionPoint) error
}

// PointStore объединяет чтение и запись
type PointStore interface {
	PointRepository
	PointWriter
}
