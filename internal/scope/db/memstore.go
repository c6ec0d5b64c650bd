package db

import (
	"context"
	"sync"
	"time"
)

// entry is a stored value with an optional expiry
type entry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

func (e entry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// MemStore is a thread-safe in-memory Store
type MemStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	closed  bool
	now     func() time.Time
}

// NewMemStore creates a new empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get retrieves a value by key
func (m *MemStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	e, ok := m.entries[key]
	if !ok || e.expired(m.now()) {
		return "", false, nil
	}
	return e.Value, true, nil
}

// Set adds or updates a value
func (m *MemStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.entries[key] = m.newEntry(value, ttl)
	return nil
}

// Delete removes keys under one lock
func (m *MemStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

// Count returns the number of live entries
func (m *MemStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := m.now()
	n := 0
	for _, e := range m.entries {
		if !e.expired(now) {
			n++
		}
	}
	return n
}

// Close marks the store closed
func (m *MemStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MemStore) newEntry(value string, ttl time.Duration) entry {
	e := entry{Value: value}
	if ttl > 0 {
		e.ExpiresAt = m.now().Add(ttl)
	}
	return e
}
