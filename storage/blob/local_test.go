package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cheatdetect/pkg/logger"
)

func TestLocalUploadOverwrites(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocal(root, logger.NewNop())
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	defer store.Close()

	key := "prefix/driver_summary/country=sg/date=2024-03-01/results.csv"
	ctx := context.Background()
	if err := store.Upload(ctx, key, "text/csv", []byte("first")); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if err := store.Upload(ctx, key, "text/csv", []byte("second")); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(key)))
	if err != nil {
		t.Fatalf("read uploaded file: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q, want %q", got, "second")
	}

	entries, err := os.ReadDir(filepath.Dir(filepath.Join(root, filepath.FromSlash(key))))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only results.csv", len(entries))
	}
}

func TestLocalUploadRejectsEscapingPath(t *testing.T) {
	store, err := NewLocal(t.TempDir(), logger.NewNop())
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	if err := store.Upload(context.Background(), "../outside.csv", "text/csv", nil); err == nil {
		t.Error("Upload(../outside.csv) error = nil, want error")
	}
}

func TestLocalUploadHonoursCancelledContext(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocal(root, logger.NewNop())
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Upload(ctx, "a/results.csv", "text/csv", []byte("x")); err == nil {
		t.Fatal("Upload() with cancelled context error = nil")
	}
	if _, err := os.Stat(filepath.Join(root, "a")); !os.IsNotExist(err) {
		t.Errorf("cancelled upload created files, stat err = %v", err)
	}
}
