package blob

import (
	"context"
	"fmt"
	"strings"

	gcs "cloud.google.com/go/storage"

	"cheatdetect/pkg/logger"
	"cheatdetect/storage"
)

type gcsStore struct {
	client *gcs.Client
	bucket string
	log    logger.ILogger
}

// NewGCS opens a bucket with application default credentials.
func NewGCS(ctx context.Context, bucket string, log logger.ILogger) (storage.IBlobStorage, error) {
	bucket = strings.TrimPrefix(bucket, "gs://")
	if bucket == "" {
		return nil, fmt.Errorf("gcs: bucket is required")
	}

	client, err := gcs.NewClient(ctx)
	if err != nil {
		log.Error("failed to create GCS client", logger.Error(err))
		return nil, err
	}

	log.Info("GCS sink ready", logger.String("bucket", bucket))
	return &gcsStore{client: client, bucket: bucket, log: log}, nil
}

func (s *gcsStore) Upload(ctx context.Context, path, contentType string, data []byte) error {
	w := s.client.Bucket(s.bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		s.log.Error("failed to write object", logger.String("path", path), logger.Error(err))
		return fmt.Errorf("write gs://%s/%s: %w", s.bucket, path, err)
	}
	// the object is only committed on Close
	if err := w.Close(); err != nil {
		s.log.Error("failed to commit object", logger.String("path", path), logger.Error(err))
		return fmt.Errorf("commit gs://%s/%s: %w", s.bucket, path, err)
	}

	s.log.Info("uploaded", logger.String("uri", "gs://"+s.bucket+"/"+path), logger.Int64("size", w.Attrs().Size), logger.Int64("generation", w.Attrs().Generation))
	return nil
}

func (s *gcsStore) Close() error {
	return s.client.Close()
}
