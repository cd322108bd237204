package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecopoint-service/internal/config"
	"github.com/ecopoint-service/internal/domain"
	"github.com/ecopoint-service/internal/repository/cache"
)

func getTestRedis(t *testing.T) *cache.Redis {
	r, err := cache.NewRedis(&config.RedisConfig{Host: "localhost", Port: 6379, DB: 1}, zap.NewNop())
	if err != nil {
		t.Skipf("Redis not available for integration tests: %v", err)
	}
	return r
}

func TestCacheRepository_Range(t *testing.T) {
	r := getTestRedis(t)
	defer r.Close()

	repo := cache.NewCacheRepository(r)
	ctx := context.Background()
	require.NoError(t, repo.InvalidateRanges(ctx))

	gr := domain.GeoRange{Lower: "6gyc", Upper: "6gyf~"}

	_, ok, err := repo.GetRange(ctx, gr)
	require.NoError(t, err)
	assert.False(t, ok)

	points := []*domain.CollectionPoint{{ID: "p1", Name: "Ecoponto", Geohash: "6gyf4bcdef", AcceptedItems: []string{"papel"}}}
	require.NoError(t, repo.SetRange(ctx, gr, points, time.Minute))

	got, ok, err := repo.GetRange(ctx, gr)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, []string{"papel"}, got[0].AcceptedItems)

	require.NoError(t, repo.InvalidateRanges(ctx))
	_, ok, err = repo.GetRange(ctx, gr)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheRepository_EmptyRangeIsAHit(t *testing.T) {
	r := getTestRedis(t)
	defer r.Close()

	repo := cache.NewCacheRepository(r)
	ctx := context.Background()
	defer repo.InvalidateRanges(ctx)

	gr := domain.GeoRange{Lower: "zzzz", Upper: "zzzz~"}
	require.NoError(t, repo.SetRange(ctx, gr, nil, time.Minute))

	got, ok, err := repo.GetRange(ctx, gr)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestCacheRepository_KeyValue(t *testing.T) {
	r := getTestRedis(t)
	defer r.Close()

	repo := cache.NewCacheRepository(r)
	ctx := context.Background()
	key := "test:ecopoint:kv"
	defer repo.Delete(ctx, key)

	val, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, repo.Set(ctx, key, []byte("v"), time.Minute))
	exists, err := repo.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	val, err = repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)

	require.NoError(t, repo.Delete(ctx, key))
	exists, err = repo.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}
