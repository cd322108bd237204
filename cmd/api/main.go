package main

// @title Ecopoint Service API
// @version 1.0.0
// @description Поиск ближайшего пункта приёма вторсырья (ecoponto) по координатам пользователя.
// @description
// @description Основные возможности:
// @description - Ближайший ecoponto в радиусе 5 км с фильтром по категориям
// @description - Ранжированный список пунктов в заданном радиусе
// @description - Метрики Prometheus на /metrics

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/ecopoint-service/docs"
	"github.com/ecopoint-service/internal/config"
	httpDelivery "github.com/ecopoint-service/internal/delivery/http"
	"github.com/ecopoint-service/internal/delivery/http/handler"
	"github.com/ecopoint-service/internal/geo"
	"github.com/ecopoint-service/internal/pkg/logger"
	"github.com/ecopoint-service/internal/pkg/metrics"
	"github.com/ecopoint-service/internal/pkg/tracing"
	"github.com/ecopoint-service/internal/pkg/validator"
	"github.com/ecopoint-service/internal/repository/factory"
	"github.com/ecopoint-service/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Ecopoint Service")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("store", cfg.Store.Kind),
		zap.Uint("geohash_precision", cfg.Geohash.Precision),
	)

	ctx := context.Background()

	// 3. Tracing and metrics
	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		SampleRatio: cfg.Tracing.SampleRatio,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer tracing.Shutdown(shutdownTracing, log)

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector, err = metrics.NewCollector(nil, cfg.Metrics.Namespace)
		if err != nil {
			log.Fatal("Failed to register metrics", zap.Error(err))
		}
	}

	// 4. Connect to the point store
	stores, err := factory.Open(ctx, cfg, false, log)
	if err != nil {
		log.Fatal("Failed to open point store", zap.Error(err))
	}
	defer stores.Close()

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := stores.Health(healthCtx); err != nil {
		cancel()
		log.Fatal("Store health check failed", zap.Error(err))
	}
	cancel()
	log.Info("All connections healthy")

	indexer := geo.NewIndexer(cfg.Geohash.Precision)

	// In-memory store starts empty; seed it from the import file when present.
	if cfg.Store.Kind == config.StoreMemory {
		seedMemoryStore(ctx, cfg, stores, indexer, log)
	}

	// 5. Initialize Use Cases
	searchUC := usecase.NewProximitySearchUseCase(
		stores.Reader(collector),
		indexer,
		usecase.SearchOptions{
			MinGeneralCategories: cfg.Search.MinGeneralCategories,
			QueryTimeout:         cfg.Search.QueryTimeout,
			DefaultLimit:         cfg.Search.NearbyLimit,
		},
		collector,
		log,
	)
	formatter := usecase.NewResponseFormatter()

	// 6. Initialize HTTP Handlers and Server
	ecopointHandler := handler.NewEcopointHandler(searchUC, formatter, log)
	server := httpDelivery.NewServer(cfg, log, collector, ecopointHandler)

	// 7. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 8. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}

func seedMemoryStore(ctx context.Context, cfg *config.Config, stores *factory.Stores, indexer *geo.Indexer, log *zap.Logger) {
	f, err := os.Open(cfg.Import.File)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("Memory store is empty, import file not found", zap.String("file", cfg.Import.File))
			return
		}
		log.Fatal("Failed to open import file", zap.Error(err))
	}
	defer f.Close()

	importUC := usecase.NewImportUseCase(stores.Points, stores.Cache, indexer, validator.GetValidator(), cfg.Import.BatchSize, log)
	summary, err := importUC.Import(ctx, f)
	if err != nil {
		log.Fatal("Failed to seed memory store", zap.Error(err))
	}
	log.Info("Memory store seeded", zap.Int("points", summary.Imported), zap.Int("skipped", summary.Skipped))
}
