package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/ecopoint-service/internal/domain"
	"github.com/ecopoint-service/internal/domain/repository"
	"github.com/ecopoint-service/internal/pkg/validator"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
)

// pointDocument - документ коллекции пунктов; имена полей как в исходной базе
type pointDocument struct {
	Name           string    `firestore:"nome" validate:"required"`
	Address        string    `firestore:"endereco"`
	PostalCode     string    `firestore:"cep"`
	Phone          string    `firestore:"telefone"`
	OperatingHours string    `firestore:"horario_funcionamento"`
	Latitude       float64   `firestore:"latitude" validate:"latitude"`
	Longitude      float64   `firestore:"longitude" validate:"longitude"`
	Geohash        string    `firestore:"geohash" validate:"geohash"`
	AcceptedItems  []string  `firestore:"itens_recebidos"`
	ImportedAt     time.Time `firestore:"importado_em"`
}

// maxBulkWriterBatch bounds the number of pending BulkWriter jobs per flush.
const maxBulkWriterBatch = 500

type pointRepository struct {
	client     *firestore.Client
	collection string
	logger     *zap.Logger
}

func NewPointRepository(client *firestore.Client, collection string, logger *zap.Logger) repository.PointStore {
	return &pointRepository{
		client:     client,
		collection: collection,
		logger:     logger,
	}
}

// QueryRange выполняет range-запрос по полю geohash (оба конца включительно)
func (r *pointRepository) QueryRange(ctx context.Context, lower, upper string) ([]*domain.CollectionPoint, error) {
	iter := r.client.Collection(r.collection).
		Where("geohash", ">=", lower).
		Where("geohash", "<=", upper).
		OrderBy("geohash", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	points := make([]*domain.CollectionPoint, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore range %s..%s: %w", lower, upper, err)
		}

		var doc pointDocument
		if err := snap.DataTo(&doc); err != nil {
			r.logger.Warn("Malformed point document, skipping", zap.String("id", snap.Ref.ID), zap.Error(err))
			continue
		}
		if err := validator.Validate(doc); err != nil {
			r.logger.Warn("Invalid point document, skipping", zap.String("id", snap.Ref.ID), zap.Error(err))
			continue
		}
		points = append(points, doc.toDomain(snap.Ref.ID))
	}

	return points, nil
}

// Upsert пишет документы через BulkWriter, перезаписывая по ID
func (r *pointRepository) Upsert(ctx context.Context, points []*domain.CollectionPoint) error {
	col := r.client.Collection(r.collection)

	for start := 0; start < len(points); start += maxBulkWriterBatch {
		end := start + maxBulkWriterBatch
		if end > len(points) {
			end = len(points)
		}

		bw := r.client.BulkWriter(ctx)
		jobs := make([]*firestore.BulkWriterJob, 0, end-start)
		for _, p := range points[start:end] {
			job, err := bw.Set(col.Doc(p.ID), fromDomain(p))
			if err != nil {
				bw.End()
				return fmt.Errorf("enqueue point %s: %w", p.ID, err)
			}
			jobs = append(jobs, job)
		}
		bw.End()

		for i, job := range jobs {
			if _, err := job.Results(); err != nil {
				return fmt.Errorf("write point %s: %w", points[start+i].ID, err)
			}
		}
	}

	r.logger.Debug("Points written to Firestore", zap.Int("count", len(points)))
	return nil
}

func fromDomain(p *domain.CollectionPoint) pointDocument {
	importedAt := p.ImportedAt
	if importedAt.IsZero() {
		importedAt = time.Now().UTC()
	}
	return pointDocument{
		Name:           p.Name,
		Address:        p.Address,
		PostalCode:     p.PostalCode,
		Phone:          p.Phone,
		OperatingHours: p.OperatingHours,
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		Geohash:        p.Geohash,
		AcceptedItems:  p.AcceptedItems,
		ImportedAt:     importedAt,
	}
}

func (d pointDocument) toDomain(id string) *domain.CollectionPoint {
	return &domain.CollectionPoint{
		ID:             id,
		Name:           d.Name,
		Address:        d.Address,
		PostalCode:     d.PostalCode,
		Phone:          d.Phone,
		OperatingHours: d.OperatingHours,
		Latitude:       d.Latitude,
		Longitude:      d.Longitude,
		Geohash:        d.Geohash,
		AcceptedItems:  domain.NormalizeCategories(d.AcceptedItems),
		ImportedAt:     d.ImportedAt,
	}
}
