package main

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/wfahren/Enhanced-Sphinx-Search/internal/filter"
	"github.com/wfahren/Enhanced-Sphinx-Search/internal/libs/config"
)

func TestNewFetcher(t *testing.T) {
	tests := []struct {
		name        string
		contentRoot string
		wantHTTP    bool
	}{
		{"site directory", "", false},
		{"remote content root", "http://docs.example.com/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{SiteDir: t.TempDir(), ContentRoot: tt.contentRoot, CacheSize: 8}
			f := newFetcher(cfg)

			_, isHTTP := f.(*filter.HTTPFetcher)
			_, isDir := f.(*filter.DirFetcher)
			if isHTTP != tt.wantHTTP || isDir == tt.wantHTTP {
				t.Errorf("unexpected fetcher %T", f)
			}
		})
	}
}

func TestInitStoreMemory(t *testing.T) {
	cfg := &config.Config{StateBackend: config.BackendMemory}
	store, err := initStore(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("initStore() failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
}

func TestInitStoreFile(t *testing.T) {
	cfg := &config.Config{StateBackend: config.BackendFile, StateFile: t.TempDir()}
	store, err := initStore(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("initStore() failed: %v", err)
	}
	_ = store.Close()
}
