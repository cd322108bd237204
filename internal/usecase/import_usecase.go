package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecopoint-service/internal/domain"
	"github.com/ecopoint-service/internal/domain/repository"
	"github.com/ecopoint-service/internal/geo"
	"github.com/ecopoint-service/internal/pkg/errors"
	"github.com/ecopoint-service/internal/usecase/dto"
)

// DefaultImportBatchSize - размер пачки записи в хранилище
const DefaultImportBatchSize = 200

// ImportUseCase загружает пункты приёма из JSON-выгрузки в хранилище
type ImportUseCase struct {
	writer    repository.PointWriter
	cache     repository.CacheRepository
	indexer   *geo.Indexer
	validate  *validator.Validate
	batchSize int
	now       func() time.Time
	logger    *zap.Logger
}

// NewImportUseCase - cache may be nil when range caching is disabled.
func NewImportUseCase(
	writer repository.PointWriter,
	cache repository.CacheRepository,
	indexer *geo.Indexer,
	validate *validator.Validate,
	batchSize int,
	logger *zap.Logger,
) *ImportUseCase {
	if batchSize <= 0 {
		batchSize = DefaultImportBatchSize
	}
	return &ImportUseCase{
		writer:    writer,
		cache:     cache,
		indexer:   indexer,
		validate:  validate,
		batchSize: batchSize,
		now:       time.Now,
		logger:    logger,
	}
}

// Import reads a JSON array of records, or the legacy {"dados": [...]} document,
// and upserts every valid record. Invalid records are skipped and reported.
func (uc *ImportUseCase) Import(ctx context.Context, r io.Reader) (*dto.ImportSummary, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.ErrInvalidRequest.Wrap(err)
	}

	records, err := decodeRecords(raw)
	if err != nil {
		return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}

	summary := &dto.ImportSummary{Total: len(records)}
	importedAt := uc.now().UTC()
	batch := make([]*domain.CollectionPoint, 0, uc.batchSize)

	for i, rawRecord := range records {
		point, issue := uc.convert(i, rawRecord, importedAt)
		if issue != nil {
			summary.Skipped++
			summary.Issues = append(summary.Issues, *issue)
			uc.logger.Warn("Skipping import record",
				zap.Int("index", issue.Index),
				zap.String("name", issue.Name),
				zap.String("reason", issue.Reason),
			)
			continue
		}

		batch = append(batch, point)
		if len(batch) == uc.batchSize {
			if err := uc.flush(ctx, batch); err != nil {
				return summary, err
			}
			summary.Imported += len(batch)
			batch = make([]*domain.CollectionPoint, 0, uc.batchSize)
		}
	}

	if len(batch) > 0 {
		if err := uc.flush(ctx, batch); err != nil {
			return summary, err
		}
		summary.Imported += len(batch)
	}

	if uc.cache != nil && summary.Imported > 0 {
		if err := uc.cache.InvalidateRanges(ctx); err != nil {
			uc.logger.Warn("Failed to invalidate range cache", zap.Error(err))
		}
	}

	uc.logger.Info("Import completed",
		zap.Int("total", summary.Total),
		zap.Int("imported", summary.Imported),
		zap.Int("skipped", summary.Skipped),
	)

	return summary, nil
}

func (uc *ImportUseCase) flush(ctx context.Context, batch []*domain.CollectionPoint) error {
	if err := uc.writer.Upsert(ctx, batch); err != nil {
		uc.logger.Error("Failed to write import batch", zap.Int("size", len(batch)), zap.Error(err))
		return errors.ErrStoreUnavailable.Wrap(err)
	}
	return nil
}

func (uc *ImportUseCase) convert(index int, raw json.RawMessage, importedAt time.Time) (*domain.CollectionPoint, *dto.ImportIssue) {
	var rec dto.ImportRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, &dto.ImportIssue{Index: index, Reason: err.Error()}
	}

	if err := uc.validate.Struct(rec); err != nil {
		return nil, &dto.ImportIssue{Index: index, Name: rec.Nome, Reason: err.Error()}
	}

	center := domain.CoordinateFrom(rec.Latitude, rec.Longitude)
	if center == nil {
		return nil, &dto.ImportIssue{Index: index, Name: rec.Nome, Reason: "missing coordinates"}
	}
	if !center.Valid() {
		return nil, &dto.ImportIssue{
			Index:  index,
			Name:   rec.Nome,
			Reason: fmt.Sprintf("coordinates out of range: %v, %v", center.Lat, center.Lng),
		}
	}

	id := strings.TrimSpace(rec.ID)
	if id == "" {
		id = recordID(rec.Nome, *center)
	}

	point := &domain.CollectionPoint{
		ID:             id,
		Name:           strings.TrimSpace(rec.Nome),
		Address:        strings.TrimSpace(rec.Endereco),
		PostalCode:     strings.TrimSpace(rec.Cep),
		Phone:          strings.TrimSpace(rec.Telefone),
		OperatingHours: strings.TrimSpace(rec.HorarioFuncionamento),
		AcceptedItems:  domain.NormalizeCategories(rec.ItensRecebidos),
		ImportedAt:     importedAt,
	}
	uc.indexer.Locate(point, center.Lat, center.Lng)

	return point, nil
}

// recordID derives a stable id so re-importing the same file overwrites instead of duplicating.
func recordID(name string, c domain.Coordinate) string {
	key := strings.Join([]string{
		strings.TrimSpace(name),
		strconv.FormatFloat(c.Lat, 'f', -1, 64),
		strconv.FormatFloat(c.Lng, 'f', -1, 64),
	}, "|")
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

func decodeRecords(raw []byte) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	var records []json.RawMessage
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		return records, nil
	}

	var wrapped struct {
		Dados []json.RawMessage `json:"dados"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	if wrapped.Dados == nil {
		return nil, fmt.Errorf("expected a JSON array or an object with \"dados\"")
	}
	return wrapped.Dados, nil
}
