package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cheatdetect/pkg/logger"
	"cheatdetect/storage"
)

type localStore struct {
	root string
	log  logger.ILogger
}

// NewLocal writes objects under root, mirroring the bucket layout.
func NewLocal(root string, log logger.ILogger) (storage.IBlobStorage, error) {
	if root == "" {
		return nil, fmt.Errorf("local blob: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("local blob: %w", err)
	}
	return &localStore{root: root, log: log}, nil
}

func (s *localStore) Upload(ctx context.Context, path, contentType string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rel := filepath.FromSlash(path)
	if filepath.IsAbs(rel) || strings.HasPrefix(filepath.Clean(rel), "..") {
		return fmt.Errorf("local blob: path %q escapes root", path)
	}
	dst := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("local blob: %w", err)
	}

	// write then rename so readers never see a partial file
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("local blob: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("local blob: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("local blob: close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("local blob: rename %s: %w", path, err)
	}

	s.log.Info("written", logger.String("path", dst), logger.String("content_type", contentType), logger.Int("bytes", len(data)))
	return nil
}

func (s *localStore) Close() error { return nil }
