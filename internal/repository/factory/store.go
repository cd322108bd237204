package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/ecopoint-service/internal/config"
	"github.com/ecopoint-service/internal/domain/repository"
	"github.com/ecopoint-service/internal/infrastructure/firestore"
	"github.com/ecopoint-service/internal/pkg/metrics"
	"github.com/ecopoint-service/internal/repository/cache"
	firestorerepo "github.com/ecopoint-service/internal/repository/firestore"
	"github.com/ecopoint-service/internal/repository/memory"
	"github.com/ecopoint-service/internal/repository/postgres"
	redisrepo "github.com/ecopoint-service/internal/repository/redis"
	"go.uber.org/zap"
)

// Stores - хранилище пунктов, выбранное по STORE_KIND, и опциональный Redis
type Stores struct {
	Kind   string
	Points repository.PointStore
	// Cache is nil unless CACHE_ENABLED.
	Cache repository.CacheRepository
	// Redis is set when the store, the cache or a stream consumer needs it.
	Redis *cache.Redis

	cacheTTL time.Duration
	health   []func(context.Context) error
	closers  []func() error
	logger   *zap.Logger
}

// Open подключает хранилище. needRedis forces a Redis connection for stream consumers.
func Open(ctx context.Context, cfg *config.Config, needRedis bool, logger *zap.Logger) (*Stores, error) {
	s := &Stores{
		Kind:     cfg.Store.Kind,
		cacheTTL: cfg.Cache.RangeCacheTTL,
		logger:   logger,
	}

	if needRedis || cfg.Cache.Enabled || cfg.Store.Kind == config.StoreRedis {
		rdb, err := cache.NewRedis(&cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		s.Redis = rdb
		s.health = append(s.health, rdb.Health)
		s.closers = append(s.closers, rdb.Close)
	}

	switch cfg.Store.Kind {
	case config.StoreFirestore:
		client, err := firestore.NewClient(ctx, &cfg.Firestore, logger)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connect firestore: %w", err)
		}
		s.closers = append(s.closers, client.Close)
		s.Points = firestorerepo.NewPointRepository(client.Firestore(), cfg.Firestore.Collection, logger)

	case config.StorePostgres:
		db, err := postgres.New(&cfg.Database, logger)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.closers = append(s.closers, db.Close)
		s.health = append(s.health, db.Health)
		if err := db.Migrate(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		s.Points = postgres.NewPointRepository(db)

	case config.StoreRedis:
		s.Points = redisrepo.NewPointRepository(s.Redis.Client(), logger)

	case config.StoreMemory:
		s.Points = memory.NewPointRepository()

	default:
		s.Close()
		return nil, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
	}

	if cfg.Cache.Enabled {
		s.Cache = cache.NewCacheRepository(s.Redis)
	}

	logger.Info("Point store opened",
		zap.String("kind", s.Kind),
		zap.Bool("range_cache", s.Cache != nil))

	return s, nil
}

// Reader returns the search-side store, wrapped by the range cache when enabled.
func (s *Stores) Reader(collector *metrics.Collector) repository.PointRepository {
	if s.Cache == nil {
		return s.Points
	}
	return cache.NewCachedPointRepository(s.Points, s.Cache, s.cacheTTL, collector, s.logger)
}

// Health проверяет все открытые соединения
func (s *Stores) Health(ctx context.Context) error {
	for _, check := range s.health {
		if err := check(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close закрывает соединения в обратном порядке
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Error("Failed to close store connection", zap.Error(err))
		}
	}
	s.closers = nil
}
