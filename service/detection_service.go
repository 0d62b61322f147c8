package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"cheatdetect/config"
	"cheatdetect/pkg/detect"
	"cheatdetect/pkg/logger"
	"cheatdetect/pkg/models"
	"cheatdetect/pkg/report"
	"cheatdetect/storage"
)

var (
	ErrInvalidDate    = errors.New("invalid run date")
	ErrInvalidCountry = errors.New("invalid country code")
)

var countryCode = regexp.MustCompile(`^[a-z]{2}$`)

type DetectionService interface {
	// Run scores one country for one day and uploads both output tables.
	// Nothing is uploaded when either input table cannot be read.
	Run(ctx context.Context, date, country string) (*models.DetectionRun, error)
	// RunAll runs every country in order. A failing country does not stop the
	// others; their errors are joined.
	RunAll(ctx context.Context, date string, countries []string) ([]*models.DetectionRun, error)
}

type detectionService struct {
	gps    storage.IGPSStorage
	events storage.IOrderEventStorage
	runs   storage.IRunStorage
	blob   storage.IBlobStorage
	cfg    config.Config
	log    logger.ILogger
	now    func() time.Time
}

func NewDetectionService(stg storage.IStorage, blob storage.IBlobStorage, cfg config.Config, log logger.ILogger) DetectionService {
	return &detectionService{
		gps:    stg.GPS(),
		events: stg.OrderEvent(),
		runs:   stg.Run(),
		blob:   blob,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

func (s *detectionService) Run(ctx context.Context, date, country string) (*models.DetectionRun, error) {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidDate, date, err)
	}
	cc := strings.ToLower(strings.TrimSpace(country))
	if !countryCode.MatchString(cc) {
		return nil, fmt.Errorf("%w %q", ErrInvalidCountry, country)
	}

	log := s.log.With(logger.String("country", cc), logger.String("date", date))
	if prev, err := s.runs.Get(ctx, cc, date); err != nil {
		log.Warning("run ledger unavailable", logger.Error(err))
	} else if prev != nil {
		log.Info("overwriting previous run", logger.String("previous_status", prev.Status), logger.Any("previous_started_at", prev.StartedAt))
	}

	run := &models.DetectionRun{
		Country:   cc,
		RunDate:   date,
		Status:    models.RunStatusRunning,
		StartedAt: s.now().UTC(),
	}
	if err := s.runs.Start(ctx, run); err != nil {
		log.Warning("run ledger unavailable", logger.Error(err))
	}

	log.Info("detection started")
	err := s.process(ctx, run, log)
	s.finish(ctx, run, err, log)
	if err != nil {
		return run, fmt.Errorf("%s %s: %w", cc, date, err)
	}
	return run, nil
}

func (s *detectionService) process(ctx context.Context, run *models.DetectionRun, log logger.ILogger) error {
	pings, err := s.gps.GetByDate(ctx, run.RunDate, run.Country)
	if err != nil {
		return fmt.Errorf("fetch gps: %w", err)
	}
	run.GPSRows = len(pings)

	events, err := s.events.GetByDate(ctx, run.RunDate, run.Country)
	if err != nil {
		return fmt.Errorf("fetch order events: %w", err)
	}
	run.EventRows = len(events)
	log.Info("inputs loaded", logger.Int("gps_rows", run.GPSRows), logger.Int("event_rows", run.EventRows))

	th := s.cfg.ThresholdsFor(run.Country)
	log.Debug("thresholds resolved",
		logger.Float64("speed_limit", th.SpeedLimit),
		logger.Float64("distance_limit", th.DistanceLimit),
		logger.Float64("travel_speed_limit", th.TravelSpeedLimit),
		logger.Float64("pick_accept_threshold", th.PickAcceptThreshold),
		logger.Float64("accept_distance_limit", th.AcceptDistanceLimit),
		logger.Strings("airport_regions", th.AirportRegions),
	)
	result := detect.Process(detect.Input{
		Date:    run.RunDate,
		Country: run.Country,
		GPS:     pings,
		Events:  events,
	}, th)
	run.DriverRows = len(result.Drivers)
	run.OrderRows = len(result.Orders)

	orders, err := report.EncodeSuspiciousOrders(result.Orders)
	if err != nil {
		return fmt.Errorf("encode order output: %w", err)
	}
	drivers, err := report.EncodeDriverSummary(result.Drivers)
	if err != nil {
		return fmt.Errorf("encode driver summary: %w", err)
	}

	orderPath := report.OrderOutputPath(s.cfg.OutputPrefix, run.Country, run.RunDate)
	if err := s.blob.Upload(ctx, orderPath, report.ContentType, orders); err != nil {
		return fmt.Errorf("upload order output: %w", err)
	}
	driverPath := report.DriverSummaryPath(s.cfg.OutputPrefix, run.Country, run.RunDate)
	if err := s.blob.Upload(ctx, driverPath, report.ContentType, drivers); err != nil {
		return fmt.Errorf("upload driver summary: %w", err)
	}

	log.Info("outputs written",
		logger.Int("driver_rows", run.DriverRows),
		logger.Int("order_rows", run.OrderRows),
		logger.Int("flagged_drivers", countFlagged(result.Drivers)),
	)
	return nil
}

func (s *detectionService) finish(ctx context.Context, run *models.DetectionRun, runErr error, log logger.ILogger) {
	finished := s.now().UTC()
	run.FinishedAt = &finished
	run.Status = models.RunStatusSucceeded
	if runErr != nil {
		run.Status = models.RunStatusFailed
		run.Error = runErr.Error()
		log.Error("detection failed", logger.Error(runErr))
	} else {
		log.Info("detection finished", logger.Duration("took", finished.Sub(run.StartedAt)))
	}

	if err := s.runs.Finish(ctx, run); err != nil {
		log.Warning("failed to record run result", logger.Error(err))
	}
}

func (s *detectionService) RunAll(ctx context.Context, date string, countries []string) ([]*models.DetectionRun, error) {
	runs := make([]*models.DetectionRun, 0, len(countries))
	var errs []error
	for _, country := range countries {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		run, err := s.Run(ctx, date, country)
		if run != nil {
			runs = append(runs, run)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return runs, errors.Join(errs...)
}

func countFlagged(rows []*models.DriverDailyMetrics) int {
	n := 0
	for _, m := range rows {
		if m.CheatScore > 0 {
			n++
		}
	}
	return n
}
