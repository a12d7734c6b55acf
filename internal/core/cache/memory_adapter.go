package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryAdapter implements the Cache interface with an in-process map.
// It is the default overlay backend when no Redis URL is configured.
type MemoryAdapter struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryAdapter creates an empty in-memory cache adapter.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		entries: make(map[string]memoryEntry),
	}
}

// Get retrieves a value by key, honoring per-entry expiry.
func (m *MemoryAdapter) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrMiss
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, ErrMiss
	}
	return entry.value, nil
}

// Set stores a value with the given TTL. TTL of 0 means no expiration.
func (m *MemoryAdapter) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Delete removes a value by key.
func (m *MemoryAdapter) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Ping always succeeds for the in-process adapter.
func (m *MemoryAdapter) Ping(_ context.Context) error {
	return nil
}

// Close drops all entries.
func (m *MemoryAdapter) Close() error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}
