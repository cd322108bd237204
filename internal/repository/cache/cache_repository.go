package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ecopoint-service/internal/domain"
	"github.com/ecopoint-service/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const rangeKeyPrefix = "ecopoint:range:"

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

func (r *cacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	val, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to check cache existence", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("cache exists error: %w", err)
	}

	return val > 0, nil
}

// GetRange получает результат диапазона из кеша
func (r *cacheRepository) GetRange(ctx context.Context, gr domain.GeoRange) ([]*domain.CollectionPoint, bool, error) {
	data, err := r.Get(ctx, rangeKey(gr))
	if err != nil {
		return nil, false, err
	}
	if data == nil {
		return nil, false, nil
	}

	var points []*domain.CollectionPoint
	if err := json.Unmarshal(data, &points); err != nil {
		r.logger.Error("Failed to unmarshal cached range", zap.Error(err))
		return nil, false, fmt.Errorf("unmarshal range: %w", err)
	}

	return points, true, nil
}

// SetRange сохраняет результат диапазона в кеше
func (r *cacheRepository) SetRange(ctx context.Context, gr domain.GeoRange, points []*domain.CollectionPoint, ttl time.Duration) error {
	if points == nil {
		points = []*domain.CollectionPoint{}
	}
	data, err := json.Marshal(points)
	if err != nil {
		return fmt.Errorf("marshal range: %w", err)
	}

	return r.Set(ctx, rangeKey(gr), data, ttl)
}

// InvalidateRanges удаляет все закешированные диапазоны (SCAN + DEL)
func (r *cacheRepository) InvalidateRanges(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, rangeKeyPrefix+"*", 200).Iterator()

	batch := make([]string, 0, 200)
	deleted := 0
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("invalidate ranges: %w", err)
			}
			deleted += len(batch)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan ranges: %w", err)
	}
	if len(batch) > 0 {
		if err := r.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("invalidate ranges: %w", err)
		}
		deleted += len(batch)
	}

	r.logger.Info("Range cache invalidated", zap.Int("keys", deleted))
	return nil
}

func rangeKey(gr domain.GeoRange) string {
	return rangeKeyPrefix + gr.Lower + ":" + gr.Upper
}
