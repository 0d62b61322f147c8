package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cheatdetect/pkg/logger"
	"cheatdetect/pkg/models"
	"cheatdetect/storage"
)

type runRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewRunRepo(db *pgxpool.Pool, log logger.ILogger) storage.IRunStorage {
	return &runRepo{db: db, log: log}
}

// Start records a run as running. Re-running a (country, date) resets its row.
func (r *runRepo) Start(ctx context.Context, run *models.DetectionRun) error {
	query := `
		INSERT INTO cheat_detection_runs (country, run_date, status, started_at)
		VALUES ($1, $2::date, $3, $4)
		ON CONFLICT (country, run_date) DO UPDATE
		SET status = EXCLUDED.status,
			gps_rows = 0,
			event_rows = 0,
			driver_rows = 0,
			order_rows = 0,
			error = '',
			started_at = EXCLUDED.started_at,
			finished_at = NULL
	`
	_, err := r.db.Exec(ctx, query, run.Country, run.RunDate, run.Status, run.StartedAt)
	if err != nil {
		r.log.Error("failed to start run", logger.String("country", run.Country), logger.String("date", run.RunDate), logger.Error(err))
		return fmt.Errorf("start run: %w", err)
	}
	return nil
}

func (r *runRepo) Finish(ctx context.Context, run *models.DetectionRun) error {
	query := `
		UPDATE cheat_detection_runs
		SET status = $3,
			gps_rows = $4,
			event_rows = $5,
			driver_rows = $6,
			order_rows = $7,
			error = $8,
			finished_at = $9
		WHERE country = $1 AND run_date = $2::date
	`
	tag, err := r.db.Exec(ctx, query,
		run.Country,
		run.RunDate,
		run.Status,
		run.GPSRows,
		run.EventRows,
		run.DriverRows,
		run.OrderRows,
		run.Error,
		run.FinishedAt,
	)
	if err != nil {
		r.log.Error("failed to finish run", logger.String("country", run.Country), logger.String("date", run.RunDate), logger.Error(err))
		return fmt.Errorf("finish run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finish run: no run for %s on %s", run.Country, run.RunDate)
	}
	return nil
}

func (r *runRepo) Get(ctx context.Context, country, date string) (*models.DetectionRun, error) {
	query := `
		SELECT country, to_char(run_date, 'YYYY-MM-DD'), status,
			gps_rows, event_rows, driver_rows, order_rows,
			error, started_at, finished_at
		FROM cheat_detection_runs
		WHERE country = $1 AND run_date = $2::date
	`
	var run models.DetectionRun
	err := r.db.QueryRow(ctx, query, country, date).Scan(
		&run.Country,
		&run.RunDate,
		&run.Status,
		&run.GPSRows,
		&run.EventRows,
		&run.DriverRows,
		&run.OrderRows,
		&run.Error,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &run, nil
}
