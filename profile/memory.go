package profile

import (
	"context"
	"maps"
	"sync"
	"time"
)

// Memory is an in-process single-user profile source for clients and tests.
// Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	attrs   map[string]string
	updated time.Time
}

// NewMemory creates a Memory source seeded with attrs (may be nil).
func NewMemory(attrs map[string]string) *Memory {
	m := &Memory{attrs: map[string]string{}}
	maps.Copy(m.attrs, attrs)
	return m
}

// FetchAttributes implements the engine's ProfileSource.
func (m *Memory) FetchAttributes(context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.attrs))
	maps.Copy(out, m.attrs)
	return out, nil
}

// LastProfileUpdate implements the engine's ProfileSource.
func (m *Memory) LastProfileUpdate(context.Context) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.updated, nil
}

// RecordProfileUpdate implements the engine's ProfileRecorder.
func (m *Memory) RecordProfileUpdate(_ context.Context, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated = at
	return nil
}

// Set writes one attribute value.
func (m *Memory) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attrs[key] = value
}
