package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ecopoint-service/internal/domain"
	"github.com/ecopoint-service/internal/domain/repository"
	"github.com/ecopoint-service/internal/pkg/validator"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// geoIndexKey - ZSET (score 0) с членами "geohash:id", упорядоченными лексикографически
	geoIndexKey = "ecopoint:geoindex"
	// memberKey - HASH id -> текущий член ZSET, чтобы убирать старый geohash при обновлении
	memberKey   = "ecopoint:members"

	pointKeyPrefix  = "ecopoint:point:"
	memberSeparator = ":"
)

// pointRecord - JSON-представление пункта в Redis
type pointRecord struct {
	ID             string   `json:"id" validate:"required"`
	Name           string   `json:"name" validate:"required"`
	Address        string   `json:"address"`
	PostalCode     string   `json:"postal_code"`
	Phone          string   `json:"phone"`
	OperatingHours string   `json:"operating_hours"`
	Latitude       float64  `json:"latitude" validate:"latitude"`
	Longitude      float64  `json:"longitude" validate:"longitude"`
	Geohash        string   `json:"geohash" validate:"geohash"`
	AcceptedItems  []string `json:"accepted_items"`
}

type pointRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewPointRepository создаёт хранилище пунктов поверх Redis sorted set
func NewPointRepository(client *redis.Client, logger *zap.Logger) repository.PointStore {
	return &pointRepository{
		client: client,
		logger: logger,
	}
}

// QueryRange читает диапазон через ZRANGEBYLEX и дочитывает записи через MGET
func (r *pointRepository) QueryRange(ctx context.Context, lower, upper string) ([]*domain.CollectionPoint, error) {
	members, err := r.client.ZRangeByLex(ctx, geoIndexKey, &redis.ZRangeBy{
		Min: lexLowerBound(lower),
		Max: lexUpperBound(upper),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("zrangebylex %s..%s: %w", lower, upper, err)
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		hash, id, ok := splitMember(m)
		// lex bound is coarser than [lower, upper] for keys longer than upper
		if !ok || hash < lower || hash > upper {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return []*domain.CollectionPoint{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = pointKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget points: %w", err)
	}

	points := make([]*domain.CollectionPoint, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			r.logger.Warn("Indexed point has no record, skipping", zap.String("id", ids[i]))
			continue
		}

		var rec pointRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			r.logger.Warn("Malformed point record, skipping", zap.String("id", ids[i]), zap.Error(err))
			continue
		}
		if err := validator.Validate(rec); err != nil {
			r.logger.Warn("Invalid point record, skipping", zap.String("id", ids[i]), zap.Error(err))
			continue
		}
		points = append(points, rec.toDomain())
	}

	return points, nil
}

// Upsert пишет записи и перестраивает члены индекса в одной транзакции
func (r *pointRepository) Upsert(ctx context.Context, points []*domain.CollectionPoint) error {
	if len(points) == 0 {
		return nil
	}

	ids := make([]string, len(points))
	for i, p := range points {
		ids[i] = p.ID
	}
	previous, err := r.client.HMGet(ctx, memberKey, ids...).Result()
	if err != nil {
		return fmt.Errorf("hmget members: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, p := range points {
			data, err := json.Marshal(fromDomain(p))
			if err != nil {
				return fmt.Errorf("marshal point %s: %w", p.ID, err)
			}

			member := p.Geohash + memberSeparator + p.ID
			if old, ok := previous[i].(string); ok && old != member {
				pipe.ZRem(ctx, geoIndexKey, old)
			}
			pipe.ZAdd(ctx, geoIndexKey, redis.Z{Score: 0, Member: member})
			pipe.HSet(ctx, memberKey, p.ID, member)
			pipe.Set(ctx, pointKey(p.ID), data, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}

	r.logger.Debug("Points upserted to redis", zap.Int("count", len(points)))
	return nil
}

func lexLowerBound(lower string) string {
	if lower == "" {
		return "-"
	}
	return "[" + lower
}

// lexUpperBound returns an inclusive ZRANGEBYLEX max for members "upper:<id>".
// ';' is the byte right after ':'.
func lexUpperBound(upper string) string {
	return "[" + upper + ";"
}

func splitMember(member string) (hash, id string, ok bool) {
	idx := strings.Index(member, memberSeparator)
	if idx < 0 {
		return "", "", false
	}
	return member[:idx], member[idx+1:], true
}

func pointKey(id string) string {
	return pointKeyPrefix + id
}

func fromDomain(p *domain.CollectionPoint) pointRecord {
	return pointRecord{
		ID:             p.ID,
		Name:           p.Name,
		Address:        p.Address,
		PostalCode:     p.PostalCode,
		Phone:          p.Phone,
		OperatingHours: p.OperatingHours,
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		Geohash:        p.Geohash,
		AcceptedItems:  p.AcceptedItems,
	}
}

func (rec pointRecord) toDomain() *domain.CollectionPoint {
	return &domain.CollectionPoint{
		ID:             rec.ID,
		Name:           rec.Name,
		Address:        rec.Address,
		PostalCode:     rec.PostalCode,
		Phone:          rec.Phone,
		OperatingHours: rec.OperatingHours,
		Latitude:       rec.Latitude,
		Longitude:      rec.Longitude,
		Geohash:        rec.Geohash,
		AcceptedItems:  domain.NormalizeCategories(rec.AcceptedItems),
	}
}
