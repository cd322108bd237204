package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecopoint-service/internal/config"
	"github.com/ecopoint-service/internal/geo"
	"github.com/ecopoint-service/internal/pkg/logger"
	"github.com/ecopoint-service/internal/pkg/metrics"
	"github.com/ecopoint-service/internal/pkg/tracing"
	"github.com/ecopoint-service/internal/repository/factory"
	redisRepo "github.com/ecopoint-service/internal/repository/redis"
	"github.com/ecopoint-service/internal/usecase"
	"github.com/ecopoint-service/internal/worker"
	"github.com/ecopoint-service/internal/worker/search"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Ecopoint Search Worker")
	log.Info("Configuration loaded",
		zap.String("store", cfg.Store.Kind),
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
		zap.Duration("retry_backoff", cfg.Worker.RetryBackoff))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName + "-worker",
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

	// 3. Connect to the point store and Redis (streams)
	stores, err := factory.Open(ctx, cfg, true, log)
	if err != nil {
		log.Fatal("Failed to open point store", zap.Error(err))
	}
	defer stores.Close()

	healthCtx, healthCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := stores.Health(healthCtx); err != nil {
		healthCancel()
		log.Fatal("Store health check failed", zap.Error(err))
	}
	healthCancel()

	// 4. Initialize repositories and use cases
	streamRepo := redisRepo.NewStreamRepository(stores.Redis.Client(), redisRepo.StreamOptions{
		BlockTimeout: cfg.Worker.StreamReadTimeout,
	}, log)

	searchUC := usecase.NewProximitySearchUseCase(
		stores.Reader(collector),
		geo.NewIndexer(cfg.Geohash.Precision),
		usecase.SearchOptions{
			MinGeneralCategories: cfg.Search.MinGeneralCategories,
			QueryTimeout:         cfg.Search.QueryTimeout,
			DefaultLimit:         cfg.Search.NearbyLimit,
		},
		collector,
		log,
	)

	// 5. Initialize workers
	searchWorker := search.NewEcopointSearchWorker(
		streamRepo,
		searchUC,
		usecase.NewResponseFormatter(),
		search.Options{
			ConsumerGroup: cfg.Worker.ConsumerGroup,
			MaxRetries:    cfg.Worker.MaxRetries,
			RetryBackoff:  cfg.Worker.RetryBackoff,
		},
		collector,
		log,
	)

	workerManager := worker.NewWorkerManager(worker.DefaultShutdownTimeout, log)
	workerManager.Register(searchWorker)

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	// 6. Wait for a signal or a worker failure
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	failed := make(chan error, 1)
	go func() { failed <- workerManager.Wait() }()

	select {
	case <-sigChan:
		log.Info("Received shutdown signal")
	case err := <-failed:
		log.Error("Workers exited", zap.Error(err))
	}

	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
