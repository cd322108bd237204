package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ecopoint-service/internal/config"
	"github.com/ecopoint-service/internal/geo"
	"github.com/ecopoint-service/internal/pkg/logger"
	"github.com/ecopoint-service/internal/pkg/validator"
	"github.com/ecopoint-service/internal/repository/factory"
	"github.com/ecopoint-service/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	file := flag.String("file", cfg.Import.File, "path to pontosColeta.json, \"-\" for stdin")
	flag.Parse()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if cfg.Store.Kind == config.StoreMemory {
		log.Fatal("Memory store does not persist imports, set STORE_KIND")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var input io.Reader = os.Stdin
	if *file != "-" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatal("Failed to open import file", zap.String("file", *file), zap.Error(err))
		}
		defer f.Close()
		input = f
	}

	stores, err := factory.Open(ctx, cfg, false, log)
	if err != nil {
		log.Fatal("Failed to open point store", zap.Error(err))
	}
	defer stores.Close()

	importUC := usecase.NewImportUseCase(
		stores.Points,
		stores.Cache,
		geo.NewIndexer(cfg.Geohash.Precision),
		validator.GetValidator(),
		cfg.Import.BatchSize,
		log,
	)

	log.Info("Importing collection points", zap.String("file", *file), zap.String("store", cfg.Store.Kind))

	summary, err := importUC.Import(ctx, input)
	if err != nil {
		log.Error("Import failed", zap.Error(err))
		stores.Close()
		os.Exit(1)
	}

	fmt.Printf("imported=%d skipped=%d total=%d\n", summary.Imported, summary.Skipped, summary.Total)
}
