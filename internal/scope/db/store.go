package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileStore is a MemStore persisted to a JSON file in the data directory
// Every mutation is written through, so state survives restarts
type FileStore struct {
	*MemStore
	path string
}

// StateFile is the file name FileStore keeps its entries in
const StateFile = "phrase-state.json"

// NewFileStore creates a file-backed store with the given data directory
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &FileStore{
		MemStore: NewMemStore(),
		path:     filepath.Join(dataDir, StateFile),
	}

	// Load existing data if present
	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}

	return s, nil
}

// Set adds or updates a value and writes the file
func (s *FileStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.entries[key] = s.newEntry(value, ttl)
	return s.writeLocked()
}

// Delete removes keys and writes the file
func (s *FileStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for _, k := range keys {
		delete(s.entries, k)
	}
	return s.writeLocked()
}

// Flush writes the store to disk, dropping expired entries
func (s *FileStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
		}
	}
	return s.writeLocked()
}

// Close flushes and closes the store
func (s *FileStore) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	return s.MemStore.Close()
}

// writeLocked replaces the state file atomically; callers hold mu
func (s *FileStore) writeLocked() error {
	data, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// load reads the store from disk
func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	entries := make(map[string]entry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to decode state file: %w", err)
	}
	s.entries = entries
	return nil
}
