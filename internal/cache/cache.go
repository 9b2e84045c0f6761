// Package cache provides a best-effort key-value cache. Implementations
// never surface backend failures: a failed read looks like a miss and a
// failed write is dropped, so callers always fall through to the source
// of truth.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is the capability handed to components that want read-through
// caching. Core logic never branches on whether a real backend is wired;
// callers that don't want caching inject NewNoop().
type Cache interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool)
	// Set stores a value with a TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration)
	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string)
}

type noop struct{}

// NewNoop returns a cache that stores nothing and always misses.
func NewNoop() Cache {
	return noop{}
}

func (noop) Get(context.Context, string) (string, bool) { return "", false }

func (noop) Set(context.Context, string, string, time.Duration) {}

func (noop) Delete(context.Context, string) {}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process Cache used in tests and single-node deployments.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return "", false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return "", false
	}
	return entry.value, true
}

// Set implements Cache.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
}

// Delete implements Cache.
func (m *Memory) Delete(_ context.Context, key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}
