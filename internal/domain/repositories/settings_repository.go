package repositories

import "context"

// SettingsRepository defines the interface for the open-ended settings
// partition. Values are raw JSON documents owned by the caller.
type SettingsRepository interface {
	// Get retrieves a setting value. A nil value with a nil error means the
	// key is unset, which is distinct from any stored value including JSON
	// zero values.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set upserts a setting value
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a setting; deleting an absent key is not an error
	Delete(ctx context.Context, key string) error
}
