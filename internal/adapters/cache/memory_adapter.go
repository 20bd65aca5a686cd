package cache

import (
	"context"
	"sync"

	"github.com/dermatologica/assistant/internal/domain/providers"
)

// MemoryAdapter implements the CacheProvider interface with an in-process
// map. All state is local to the application, so no external cache server
// is involved; the port shape still allows one to be swapped in.
type MemoryAdapter struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryAdapter creates a new in-memory cache adapter
func NewMemoryAdapter() providers.CacheProvider {
	return &MemoryAdapter{items: make(map[string][]byte)}
}

// Get retrieves a value from cache; nil means absent.
func (a *MemoryAdapter) Get(_ context.Context, key string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	value, ok := a.items[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), value...), nil
}

// Set stores a value in cache.
func (a *MemoryAdapter) Set(_ context.Context, key string, value []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes a value from cache.
func (a *MemoryAdapter) Delete(_ context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.items, key)
	return nil
}

// Exists checks if a key exists in cache.
func (a *MemoryAdapter) Exists(_ context.Context, key string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.items[key]
	return ok, nil
}
