package providers

import (
	"context"
)

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	// Get retrieves a value from cache; a nil value with a nil error means
	// the key is absent
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)
}
