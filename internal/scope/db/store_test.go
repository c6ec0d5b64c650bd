package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewFileStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewFileStore(tmpDir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	if store.Count() != 0 {
		t.Errorf("new store should be empty, got %d entries", store.Count())
	}
}

func TestFileStorePersistence(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()

	store, err := NewFileStore(tmpDir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if err := store.Set(ctx, "durable/v1/sphinx_highlight_phrases", `["api"]`, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "gone", "x", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, StateFile)); err != nil {
		t.Fatalf("state file not written: %v", err)
	}

	reopened, err := NewFileStore(tmpDir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	v, ok, err := reopened.Get(ctx, "durable/v1/sphinx_highlight_phrases")
	if err != nil || !ok || v != `["api"]` {
		t.Errorf("expected persisted value, got %q ok=%v err=%v", v, ok, err)
	}
	if _, ok, _ := reopened.Get(ctx, "gone"); ok {
		t.Error("deleted key should not survive reopen")
	}
}

func TestFileStoreFlushDropsExpired(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	now := time.Unix(5000, 0)
	store.now = func() time.Time { return now }

	if err := store.Set(ctx, "s", "1", time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	now = now.Add(2 * time.Second)
	if err := store.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if len(store.entries) != 0 {
		t.Errorf("expected expired entry to be dropped, got %d", len(store.entries))
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, StateFile), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(tmpDir); err == nil {
		t.Error("expected error for corrupt state file")
	}
}
