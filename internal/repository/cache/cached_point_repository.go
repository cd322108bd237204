package cache

import (
	"context"
	"time"

	"github.com/ecopoint-service/internal/domain"
	"github.com/ecopoint-service/internal/domain/repository"
	"github.com/ecopoint-service/internal/pkg/metrics"
	"go.uber.org/zap"
)

// CachedPointRepository - read-through кеш поверх PointRepository.
// Cache failures never fail a query: the store is asked directly instead.
type CachedPointRepository struct {
	next    repository.PointRepository
	cache   repository.CacheRepository
	ttl     time.Duration
	metrics *metrics.Collector
	logger  *zap.Logger
}

var _ repository.PointRepository = (*CachedPointRepository)(nil)

func NewCachedPointRepository(
	next repository.PointRepository,
	cache repository.CacheRepository,
	ttl time.Duration,
	collector *metrics.Collector,
	logger *zap.Logger,
) *CachedPointRepository {
	return &CachedPointRepository{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		metrics: collector,
		logger:  logger,
	}
}

func (r *CachedPointRepository) QueryRange(ctx context.Context, lower, upper string) ([]*domain.CollectionPoint, error) {
	gr := domain.GeoRange{Lower: lower, Upper: upper}

	points, ok, err := r.cache.GetRange(ctx, gr)
	switch {
	case err != nil:
		r.metrics.CacheResult("error")
		r.logger.Warn("Range cache read failed, querying store",
			zap.String("lower", lower),
			zap.String("upper", upper),
			zap.Error(err))
	case ok:
		r.metrics.CacheResult("hit")
		return points, nil
	default:
		r.metrics.CacheResult("miss")
	}

	points, err = r.next.QueryRange(ctx, lower, upper)
	if err != nil {
		return nil, err
	}

	if err := r.cache.SetRange(ctx, gr, points, r.ttl); err != nil {
		r.logger.Warn("Failed to cache range", zap.String("lower", lower), zap.Error(err))
	}

	return points, nil
}
