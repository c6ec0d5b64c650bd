// Package db provides the key/value storage backends behind visitor and
// session highlight state.
package db

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by operations on a closed store
var ErrClosed = errors.New("store is closed")

// Store is the interface for key/value state storage
// MemStore, FileStore, PostgresStore and RedisStore implement this interface
type Store interface {
	// Get returns the value stored under key; ok is false when the key is
	// absent or expired
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key; a zero ttl never expires
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes every given key in a single operation
	Delete(ctx context.Context, keys ...string) error

	// Close releases the backend
	Close() error
}

// Ensure every backend implements Store
var _ Store = (*MemStore)(nil)
var _ Store = (*FileStore)(nil)
var _ Store = (*PostgresStore)(nil)
var _ Store = (*RedisStore)(nil)
var _ Store = (*InstrumentedStore)(nil)
