// Package cache provides memo.Store implementations: a process-local
// in-memory map and a Redis-backed store for multi-instance
// deployments.
package cache

import (
	"context"
	"sync"

	"github.com/chrmc/storefront/pkg/memo"
)

// Memory implements memo.Store with a mutex-guarded map. Entries are
// overwritten on refresh and never evicted.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memo.Entry
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memo.Entry)}
}

// Get retrieves the entry under key, (nil, nil) on a miss.
func (m *Memory) Get(_ context.Context, key string) (*memo.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// Set stores the entry under key, replacing any previous one.
func (m *Memory) Set(_ context.Context, key string, e *memo.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = *e
	return nil
}
