package search

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ecopoint-service/internal/domain"
	"github.com/ecopoint-service/internal/domain/repository"
	"github.com/ecopoint-service/internal/pkg/errors"
	"github.com/ecopoint-service/internal/pkg/metrics"
	"github.com/ecopoint-service/internal/pkg/validator"
	"github.com/ecopoint-service/internal/usecase"
	"github.com/ecopoint-service/internal/worker"
	"go.uber.org/zap"
)

// Статусы обработки сообщения (метка метрики worker_messages_total)
const (
	StatusProcessed     = "processed"
	StatusMalformed     = "malformed"
	StatusInvalid       = "invalid_query"
	StatusFailed        = "failed"
	StatusPublishFailed = "publish_failed"
)

// Options - параметры воркера поиска
type Options struct {
	ConsumerGroup string
	MaxRetries    int
	RetryBackoff  time.Duration
}

// EcopointSearchWorker отвечает на запросы мессенджер-бота из stream:ecopoint:search
type EcopointSearchWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	searchUC     *usecase.ProximitySearchUseCase
	formatter    *usecase.ResponseFormatter
	metrics      *metrics.Collector
	consumerName string
	maxRetries   int
	retryBackoff time.Duration
}

// NewEcopointSearchWorker создает новый EcopointSearchWorker
func NewEcopointSearchWorker(
	streamRepo repository.StreamRepository,
	searchUC *usecase.ProximitySearchUseCase,
	formatter *usecase.ResponseFormatter,
	opts Options,
	collector *metrics.Collector,
	logger *zap.Logger,
) *EcopointSearchWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	return &EcopointSearchWorker{
		BaseWorker:   worker.NewBaseWorker("ecopoint-search", opts.ConsumerGroup, logger),
		streamRepo:   streamRepo,
		searchUC:     searchUC,
		formatter:    formatter,
		metrics:      collector,
		consumerName: consumerName,
		maxRetries:   opts.MaxRetries,
		retryBackoff: opts.RetryBackoff,
	}
}

// Start читает стрим до остановки воркера, отмены ctx или закрытия канала
func (w *EcopointSearchWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting EcopointSearchWorker",
		zap.String("stream", domain.StreamEcopointSearch),
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName),
		zap.Int("max_retries", w.maxRetries))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamEcopointSearch, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	consumeCtx, cancel := w.Context(ctx)
	defer cancel()

	messages, err := w.streamRepo.ConsumeStream(consumeCtx, domain.StreamEcopointSearch, w.ConsumerGroup(), w.consumerName)
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case msg, ok := <-messages:
			if !ok {
				logger.Info("Stream channel closed")
				return nil
			}
			status := w.handleMessage(consumeCtx, msg)
			w.metrics.WorkerMessage(status)
		}
	}
}

// handleMessage обрабатывает одно сообщение и возвращает статус для метрик.
// Сообщение подтверждается всегда, кроме случая, когда ответ не удалось опубликовать.
func (w *EcopointSearchWorker) handleMessage(ctx context.Context, msg domain.StreamMessage) string {
	logger := w.Logger().With(zap.String("message_id", msg.ID))

	var event domain.EcopointSearchEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		logger.Warn("Failed to parse message, skipping", zap.Error(err))
		w.ack(ctx, msg.ID)
		return StatusMalformed
	}
	if err := validator.Validate(&event); err != nil {
		logger.Warn("Invalid search event, skipping", zap.Error(err))
		w.ack(ctx, msg.ID)
		return StatusMalformed
	}

	logger = logger.With(zap.String("request_id", event.RequestID.String()))
	query := domain.NewSearchQuery(
		domain.CoordinateFrom(event.Lat, event.Lng),
		domain.ParseCategoryFilter(event.Filter),
	)

	result, err := w.searchWithRetry(ctx, query, logger)
	if err != nil {
		if ctx.Err() != nil {
			// redelivered from the pending list on restart
			return StatusFailed
		}

		status := StatusFailed
		if errors.Is(err, errors.ErrInvalidQuery) {
			status = StatusInvalid
		}

		found := &domain.EcopointFoundEvent{
			RequestID: event.RequestID,
			To:        event.To,
			Error:     err.Error(),
		}
		if appErr, ok := errors.As(err); ok {
			found.ErrorCode = appErr.Code
		}
		if err := w.streamRepo.PublishToStream(ctx, domain.StreamEcopointFound, found); err != nil {
			logger.Error("Failed to publish error event", zap.Error(err))
			return StatusPublishFailed
		}

		w.ack(ctx, msg.ID)
		return status
	}

	response, err := json.Marshal(w.formatter.Format(result))
	if err != nil {
		logger.Error("Failed to marshal response", zap.Error(err))
		w.ack(ctx, msg.ID)
		return StatusFailed
	}

	found := &domain.EcopointFoundEvent{
		RequestID: event.RequestID,
		To:        event.To,
		Response:  response,
	}
	if err := w.streamRepo.PublishToStream(ctx, domain.StreamEcopointFound, found); err != nil {
		logger.Error("Failed to publish found event", zap.Error(err))
		return StatusPublishFailed
	}

	w.ack(ctx, msg.ID)
	logger.Debug("Search request processed", zap.Bool("found", result.Found))
	return StatusProcessed
}

// searchWithRetry повторяет поиск только при недоступности хранилища
func (w *EcopointSearchWorker) searchWithRetry(ctx context.Context, q domain.SearchQuery, logger *zap.Logger) (*domain.SearchResult, error) {
	var lastErr error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := w.retryBackoff * time.Duration(attempt)
			logger.Warn("Retrying search",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr))

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := w.searchUC.FindNearest(ctx, q)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, errors.ErrStoreUnavailable) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (w *EcopointSearchWorker) ack(ctx context.Context, id string) {
	if err := w.streamRepo.AckMessage(ctx, domain.StreamEcopointSearch, w.ConsumerGroup(), id); err != nil {
		w.Logger().Warn("Failed to ack message", zap.String("message_id", id), zap.Error(err))
	}
}
