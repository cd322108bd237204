package repository

import (
	"context"
	"time"

	"github.com/ecopoint-service/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// Exists проверяет существование ключа
	Exists(ctx context.Context, key string) (bool, error)

	// GetRange получает закешированный результат geohash-диапазона.
	// Returns (nil, false, nil) on a miss.
	GetRange(ctx context.Context, r domain.GeoRange) ([]*domain.CollectionPoint, bool, error)

	// SetRange сохраняет результат geohash-диапазона
	SetRange(ctx context.Context, r domain.GeoRange, points []*domain.CollectionPoint, ttl time.Duration) error

	// InvalidateRanges drops every cached range; called after an import.
	InvalidateRanges(ctx context.Context) error
}
