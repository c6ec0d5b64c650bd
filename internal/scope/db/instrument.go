package db

import (
	"context"
	"time"
)

// Op names a store operation seen by a Hook
type Op string

// Store operations reported to hooks
const (
	OpSet    Op = "set"
	OpDelete Op = "delete"
)

// Event describes one observed write or removal
type Event struct {
	Op    Op
	Keys  []string
	Value string
	Err   error
}

// Hook observes writes and removals on an instrumented store
type Hook func(ctx context.Context, ev Event)

// InstrumentedStore reports every mutation of the wrapped store to a hook
type InstrumentedStore struct {
	Store
	hook Hook
}

// Instrument wraps store so that hook sees every Set and Delete
// A nil hook returns the store unchanged
func Instrument(store Store, hook Hook) Store {
	if hook == nil {
		return store
	}
	return &InstrumentedStore{Store: store, hook: hook}
}

// Set forwards to the wrapped store and reports the write
func (s *InstrumentedStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	err := s.Store.Set(ctx, key, value, ttl)
	s.hook(ctx, Event{Op: OpSet, Keys: []string{key}, Value: value, Err: err})
	return err
}

// Delete forwards to the wrapped store and reports the removal
func (s *InstrumentedStore) Delete(ctx context.Context, keys ...string) error {
	err := s.Store.Delete(ctx, keys...)
	s.hook(ctx, Event{Op: OpDelete, Keys: keys, Err: err})
	return err
}
