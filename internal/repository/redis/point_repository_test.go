package redis_test

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecopoint-service/internal/domain"
	"github.com/ecopoint-service/internal/geo"
	redisRepo "github.com/ecopoint-service/internal/repository/redis"
)

func cleanupPointKeys(ctx context.Context, client *goredis.Client) {
	client.Del(ctx, "ecopoint:geoindex", "ecopoint:members",
		"ecopoint:point:p1", "ecopoint:point:p2", "ecopoint:point:p3", "ecopoint:point:bad")
}

func TestPointRepository_UpsertAndQueryRange(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	cleanupPointKeys(ctx, client)
	defer cleanupPointKeys(ctx, client)

	idx := geo.NewIndexer(geo.DefaultPrecision)
	p1 := &domain.CollectionPoint{ID: "p1", Name: "Ecoponto Sé", AcceptedItems: []string{"papel", "vidro", "metal"}}
	idx.Locate(p1, -23.5503, -46.6339)
	p2 := &domain.CollectionPoint{ID: "p2", Name: "Ecoponto Pinheiros", AcceptedItems: []string{"eletrônico"}}
	idx.Locate(p2, -23.5670, -46.7020)
	p3 := &domain.CollectionPoint{ID: "p3", Name: "Ecoponto Rio", AcceptedItems: []string{"papel"}}
	idx.Locate(p3, -22.9068, -43.1729)

	repo := redisRepo.NewPointRepository(client, zap.NewNop())
	require.NoError(t, repo.Upsert(ctx, []*domain.CollectionPoint{p1, p2, p3}))

	ranges, err := idx.QueryBounds(&domain.Coordinate{Lat: -23.55, Lng: -46.63}, 10000)
	require.NoError(t, err)

	found := map[string]*domain.CollectionPoint{}
	for _, r := range ranges {
		points, err := repo.QueryRange(ctx, r.Lower, r.Upper)
		require.NoError(t, err)
		for _, p := range points {
			assert.True(t, r.Contains(p.Geohash))
			found[p.ID] = p
		}
	}

	require.Contains(t, found, "p1")
	assert.NotContains(t, found, "p3")
	assert.Equal(t, "Ecoponto Sé", found["p1"].Name)
	assert.Equal(t, []string{"metal", "papel", "vidro"}, found["p1"].AcceptedItems)
}

func TestPointRepository_ExactBoundsInclusive(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	cleanupPointKeys(ctx, client)
	defer cleanupPointKeys(ctx, client)

	idx := geo.NewIndexer(geo.DefaultPrecision)
	p1 := &domain.CollectionPoint{ID: "p1", Name: "A"}
	idx.Locate(p1, -23.5503, -46.6339)

	repo := redisRepo.NewPointRepository(client, zap.NewNop())
	require.NoError(t, repo.Upsert(ctx, []*domain.CollectionPoint{p1}))

	points, err := repo.QueryRange(ctx, p1.Geohash, p1.Geohash)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "p1", points[0].ID)

	points, err = repo.QueryRange(ctx, "", "~")
	require.NoError(t, err)
	assert.Len(t, points, 1)
}

func TestPointRepository_MoveRemovesOldMember(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	cleanupPointKeys(ctx, client)
	defer cleanupPointKeys(ctx, client)

	idx := geo.NewIndexer(geo.DefaultPrecision)
	repo := redisRepo.NewPointRepository(client, zap.NewNop())

	p := &domain.CollectionPoint{ID: "p1", Name: "A"}
	idx.Locate(p, -23.5503, -46.6339)
	require.NoError(t, repo.Upsert(ctx, []*domain.CollectionPoint{p}))
	old := p.Geohash

	idx.Locate(p, -22.9068, -43.1729)
	require.NoError(t, repo.Upsert(ctx, []*domain.CollectionPoint{p}))

	points, err := repo.QueryRange(ctx, old, old)
	require.NoError(t, err)
	assert.Empty(t, points)

	count, err := client.ZCard(ctx, "ecopoint:geoindex").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPointRepository_SkipsMalformedRecords(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	cleanupPointKeys(ctx, client)
	defer cleanupPointKeys(ctx, client)

	require.NoError(t, client.ZAdd(ctx, "ecopoint:geoindex", redisZ("6gyf4bcdef:bad")).Err())
	require.NoError(t, client.Set(ctx, "ecopoint:point:bad", `{"id":"bad"}`, 0).Err())

	repo := redisRepo.NewPointRepository(client, zap.NewNop())
	points, err := repo.QueryRange(ctx, "", "~")
	require.NoError(t, err)
	assert.Empty(t, points)
}

func redisZ(member string) goredis.Z {
	return goredis.Z{Score: 0, Member: member}
}
