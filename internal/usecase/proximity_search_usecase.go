package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ecopoint-service/internal/domain"
	"github.com/ecopoint-service/internal/domain/repository"
	"github.com/ecopoint-service/internal/geo"
	"github.com/ecopoint-service/internal/pkg/errors"
	"github.com/ecopoint-service/internal/pkg/metrics"
	"github.com/ecopoint-service/internal/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	operationNearest = "nearest"
	operationNearby  = "nearby"
)

// SearchOptions - настраиваемые параметры поиска
type SearchOptions struct {
	// MinGeneralCategories - сколько различных категорий нужно пункту, когда фильтр не задан
	MinGeneralCategories int
	// QueryTimeout bounds the whole range fan-out; 0 means only the caller's deadline applies.
	QueryTimeout time.Duration
	DefaultLimit int
}

// ProximitySearchUseCase ищет ближайшие пункты приёма через geohash-индекс
type ProximitySearchUseCase struct {
	store   repository.PointRepository
	indexer *geo.Indexer
	opts    SearchOptions
	metrics *metrics.Collector
	tracer  trace.Tracer
	logger  *zap.Logger
}

func NewProximitySearchUseCase(
	store repository.PointRepository,
	indexer *geo.Indexer,
	opts SearchOptions,
	collector *metrics.Collector,
	logger *zap.Logger,
) *ProximitySearchUseCase {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = domain.DefaultNearbyLimit
	}
	if opts.MinGeneralCategories < 0 {
		opts.MinGeneralCategories = 0
	}
	return &ProximitySearchUseCase{
		store:   store,
		indexer: indexer,
		opts:    opts,
		metrics: collector,
		tracer:  tracing.Tracer(),
		logger:  logger,
	}
}

// FindNearest возвращает ближайший подходящий пункт или NoMatch.
// Errors are ErrInvalidQuery or ErrStoreUnavailable; an empty search is not an error.
func (uc *ProximitySearchUseCase) FindNearest(ctx context.Context, q domain.SearchQuery) (*domain.SearchResult, error) {
	start := time.Now()
	ctx, span := uc.tracer.Start(ctx, "ecopoint.find_nearest")
	defer span.End()

	ranked, err := uc.search(ctx, q)
	if err != nil {
		uc.fail(span, operationNearest, start, err)
		return nil, err
	}

	radius := radiusOf(q)
	if len(ranked) == 0 {
		uc.metrics.ObserveSearch(operationNearest, metrics.OutcomeNoMatch, time.Since(start).Seconds())
		span.SetAttributes(attribute.Bool("ecopoint.found", false))
		return domain.NoMatch(radius), nil
	}

	best := ranked[0]
	uc.metrics.ObserveSearch(operationNearest, metrics.OutcomeFound, time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Bool("ecopoint.found", true),
		attribute.String("ecopoint.id", best.Point.ID),
		attribute.Float64("ecopoint.distance_m", best.DistanceMeters),
	)
	return &best, nil
}

// FindNearby возвращает до Limit пунктов в порядке возрастания расстояния
func (uc *ProximitySearchUseCase) FindNearby(ctx context.Context, q domain.SearchQuery) ([]domain.SearchResult, error) {
	start := time.Now()
	ctx, span := uc.tracer.Start(ctx, "ecopoint.find_nearby")
	defer span.End()

	ranked, err := uc.search(ctx, q)
	if err != nil {
		uc.fail(span, operationNearby, start, err)
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = uc.opts.DefaultLimit
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	outcome := metrics.OutcomeFound
	if len(ranked) == 0 {
		outcome = metrics.OutcomeNoMatch
	}
	uc.metrics.ObserveSearch(operationNearby, outcome, time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("ecopoint.results", len(ranked)))

	return ranked, nil
}

// search runs the full pipeline and returns every qualifying point ranked by
// distance, ties broken by ID.
func (uc *ProximitySearchUseCase) search(ctx context.Context, q domain.SearchQuery) ([]domain.SearchResult, error) {
	if q.Center == nil {
		return nil, errors.ErrInvalidQuery.WithDetails(map[string]interface{}{
			"reason": "center is required",
		})
	}

	radius := radiusOf(q)
	ranges, err := uc.indexer.QueryBounds(q.Center, radius)
	if err != nil {
		return nil, err
	}

	candidates, err := uc.fetch(ctx, ranges)
	if err != nil {
		return nil, err
	}
	uc.metrics.ObserveFanOut(len(ranges), len(candidates))

	filter := domain.NormalizeCategories(q.CategoryFilter)
	center := *q.Center

	ranked := make([]domain.SearchResult, 0, len(candidates))
	for _, p := range candidates {
		distance := geo.DistanceMeters(center, p.Coordinate())
		if distance > radius {
			continue
		}
		if len(filter) > 0 {
			if !p.Accepts(filter) {
				continue
			}
		} else if p.CategoryCount() < uc.opts.MinGeneralCategories {
			continue
		}

		ranked = append(ranked, domain.SearchResult{
			Point:          p,
			DistanceMeters: distance,
			RadiusMeters:   radius,
			Found:          true,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].DistanceMeters != ranked[j].DistanceMeters {
			return ranked[i].DistanceMeters < ranked[j].DistanceMeters
		}
		return ranked[i].Point.ID < ranked[j].Point.ID
	})

	uc.logger.Debug("Proximity search completed",
		zap.Float64("lat", center.Lat),
		zap.Float64("lng", center.Lng),
		zap.Float64("radius_m", radius),
		zap.Strings("filter", filter),
		zap.Int("ranges", len(ranges)),
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", len(ranked)),
	)

	return ranked, nil
}

// fetch queries every range concurrently and waits for all of them. The first
// failure cancels the rest; no partial result is returned.
func (uc *ProximitySearchUseCase) fetch(ctx context.Context, ranges []domain.GeoRange) ([]*domain.CollectionPoint, error) {
	if uc.opts.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.opts.QueryTimeout)
		defer cancel()
	}

	results := make([][]*domain.CollectionPoint, len(ranges))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range ranges {
		g.Go(func() error {
			points, err := uc.store.QueryRange(gctx, r.Lower, r.Upper)
			if err != nil {
				return fmt.Errorf("range %s..%s: %w", r.Lower, r.Upper, err)
			}
			results[i] = points
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		uc.logger.Warn("Range query failed", zap.Int("ranges", len(ranges)), zap.Error(err))
		return nil, errors.ErrStoreUnavailable.Wrap(err)
	}
	// store may ignore ctx; a blown deadline still fails the search
	if err := ctx.Err(); err != nil {
		return nil, errors.ErrStoreUnavailable.Wrap(err)
	}

	seen := make(map[string]struct{})
	candidates := make([]*domain.CollectionPoint, 0)
	for _, points := range results {
		for _, p := range points {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			candidates = append(candidates, p)
		}
	}

	return candidates, nil
}

func (uc *ProximitySearchUseCase) fail(span trace.Span, operation string, start time.Time, err error) {
	outcome := metrics.OutcomeUnavailable
	if errors.Is(err, errors.ErrInvalidQuery) {
		outcome = metrics.OutcomeInvalid
	} else {
		uc.logger.Error("Proximity search failed", zap.String("operation", operation), zap.Error(err))
	}
	uc.metrics.ObserveSearch(operation, outcome, time.Since(start).Seconds())

	span.RecordError(err)
	span.SetStatus(codes.Error, outcome)
}

// radiusOf treats an unset radius as the default; negative values are left for validation.
func radiusOf(q domain.SearchQuery) float64 {
	if q.RadiusMeters == 0 {
		return domain.DefaultSearchRadiusMeters
	}
	return q.RadiusMeters
}
