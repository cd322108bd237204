package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ecopoint-service/internal/domain"
	"github.com/ecopoint-service/internal/domain/repository"
)

// PointRepository - in-memory хранилище пунктов, отсортированное по geohash.
// Used for tests, local runs and the importer dry-run.
type PointRepository struct {
	mu     sync.RWMutex
	byID   map[string]*domain.CollectionPoint
	sorted []*domain.CollectionPoint
}

var _ repository.PointStore = (*PointRepository)(nil)

func NewPointRepository(points ...*domain.CollectionPoint) *PointRepository {
	r := &PointRepository{byID: make(map[string]*domain.CollectionPoint)}
	for _, p := range points {
		r.byID[p.ID] = clonePoint(p)
	}
	r.reindex()
	return r
}

// QueryRange возвращает пункты с lower <= geohash <= upper
func (r *PointRepository) QueryRange(ctx context.Context, lower, upper string) ([]*domain.CollectionPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	start := sort.Search(len(r.sorted), func(i int) bool {
		return r.sorted[i].Geohash >= lower
	})

	result := make([]*domain.CollectionPoint, 0)
	for i := start; i < len(r.sorted) && r.sorted[i].Geohash <= upper; i++ {
		result = append(result, clonePoint(r.sorted[i]))
	}
	return result, nil
}

func (r *PointRepository) Upsert(ctx context.Context, points []*domain.CollectionPoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range points {
		r.byID[p.ID] = clonePoint(p)
	}
	r.reindex()
	return nil
}

// Len returns the number of stored points.
func (r *PointRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *PointRepository) reindex() {
	r.sorted = r.sorted[:0]
	for _, p := range r.byID {
		r.sorted = append(r.sorted, p)
	}
	sort.Slice(r.sorted, func(i, j int) bool {
		if r.sorted[i].Geohash != r.sorted[j].Geohash {
			return r.sorted[i].Geohash < r.sorted[j].Geohash
		}
		return r.sorted[i].ID < r.sorted[j].ID
	})
}

func clonePoint(p *domain.CollectionPoint) *domain.CollectionPoint {
	cp := *p
	if p.AcceptedItems != nil {
		cp.AcceptedItems = append([]string(nil), p.AcceptedItems...)
	}
	return &cp
}
