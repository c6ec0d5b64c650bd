// Package streamlite streams changes from a built site into the running
// search engine.
package streamlite

import (
	"sync"
	"time"
)

// Connector represents a change source
type Connector interface {
	Name() string
	Start() error
	Stop() error
}

// BaseConnector provides common functionality for all connectors
type BaseConnector struct {
	name string

	mu        sync.RWMutex
	startedAt time.Time
}

// NewBaseConnector creates a new base connector
func NewBaseConnector(name string) *BaseConnector {
	return &BaseConnector{
		name: name,
	}
}

// Name returns the connector name
func (c *BaseConnector) Name() string {
	return c.name
}

// Start marks the connector as started
func (c *BaseConnector) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startedAt = time.Now()
	return nil
}

// StartedAt returns when the connector was started
func (c *BaseConnector) StartedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.startedAt
}

// Stop is a placeholder for cleanup
func (c *BaseConnector) Stop() error {
	return nil
}
