package search

import (
	"context"
	"sync"
	"time"
)

// DefaultPollInterval is how often Await checks for a loaded engine
const DefaultPollInterval = 50 * time.Millisecond

// Holder carries the current engine. It starts empty while the site index
// is being built and is swapped whenever the site is rebuilt
type Holder struct {
	mu     sync.RWMutex
	engine Engine
}

// NewHolder creates a holder, optionally preloaded
func NewHolder(e Engine) *Holder {
	return &Holder{engine: e}
}

// Set installs an engine
func (h *Holder) Set(e Engine) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.engine = e
}

// Get returns the current engine, if any
func (h *Holder) Get() (Engine, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.engine, h.engine != nil
}

// Await polls at a fixed interval until an engine is installed or ctx ends
func (h *Holder) Await(ctx context.Context, interval time.Duration) (Engine, error) {
	if e, ok := h.Get(); ok {
		return e, nil
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			if e, ok := h.Get(); ok {
				return e, nil
			}
		}
	}
}
