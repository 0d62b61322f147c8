package storage

import (
	"context"

	"cheatdetect/pkg/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type IStorage interface {
	GPS() IGPSStorage
	OrderEvent() IOrderEventStorage
	Run() IRunStorage
	Close()
	GetPool() *pgxpool.Pool
}

type IGPSStorage interface {
	GetByDate(ctx context.Context, date, country string) ([]*models.GpsPing, error)
}

type IOrderEventStorage interface {
	GetByDate(ctx context.Context, date, country string) ([]*models.OrderEvent, error)
}

type IRunStorage interface {
	Start(ctx context.Context, run *models.DetectionRun) error
	Finish(ctx context.Context, run *models.DetectionRun) error
	Get(ctx context.Context, country, date string) (*models.DetectionRun, error)
}

// IBlobStorage receives the output artifacts. Upload overwrites an existing object.
type IBlobStorage interface {
	Upload(ctx context.Context, path, contentType string, data []byte) error
	Close() error
}
