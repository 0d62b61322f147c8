package main

import (
	"context"
	"fmt"

	"cheatdetect/config"
	"cheatdetect/pkg/logger"
	"cheatdetect/storage/postgres"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName)
	pg, err := postgres.New(context.Background(), cfg, log)

	if err != nil {
		panic(err)
	}
	defer pg.Close()

	// Only the run ledger is owned by this job; the source tables are read-only.
	_, err = pg.GetPool().Exec(context.Background(), "TRUNCATE TABLE cheat_detection_runs")
	if err != nil {
		log.Error(fmt.Sprintf("Failed to truncate run ledger: %v", err))
	} else {
		log.Info("Successfully truncated cheat_detection_runs.")
	}
}
