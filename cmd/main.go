package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cheatdetect/config"
	"cheatdetect/pkg/logger"
	"cheatdetect/service"
	"cheatdetect/storage"
	"cheatdetect/storage/blob"
	"cheatdetect/storage/postgres"
)

func main() {
	os.Exit(run())
}

func run() int {
	// 1. Load Config
	cfg := config.Load()

	// 2. Initialize Logger
	log := logger.NewWithOptions(logger.Options{
		Namespace: cfg.ServiceName,
		Level:     cfg.LoggerLevel,
		File:      cfg.LogFile,
	})
	defer log.Sync()

	// Cancel in-flight queries and uploads on SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Initialize Storage (Postgres)
	pgStore, err := postgres.New(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to connect to postgres", logger.Error(err))
		return 1
	}
	defer pgStore.Close()

	// 4. Initialize Output Sink
	sink, err := newBlob(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize output sink", logger.String("backend", cfg.BlobBackend), logger.Error(err))
		return 1
	}
	defer sink.Close()

	// 5. Run every configured country
	svc := service.New(pgStore, sink, cfg, log)
	log.Info("cheat detection starting", logger.String("date", cfg.RunDate), logger.Strings("countries", cfg.Countries))

	runs, err := svc.Detection().RunAll(ctx, cfg.RunDate, cfg.Countries)
	for _, r := range runs {
		log.Info("run summary",
			logger.String("country", r.Country),
			logger.String("status", r.Status),
			logger.Int("drivers", r.DriverRows),
			logger.Int("orders", r.OrderRows),
		)
	}
	if err != nil {
		log.Error("cheat detection finished with failures", logger.Error(err))
		return 1
	}

	log.Info("cheat detection finished")
	return 0
}

func newBlob(ctx context.Context, cfg config.Config, log logger.ILogger) (storage.IBlobStorage, error) {
	switch cfg.BlobBackend {
	case config.BlobBackendLocal:
		return blob.NewLocal(cfg.BlobLocalDir, log)
	default:
		return blob.NewGCS(ctx, cfg.Bucket, log)
	}
}
