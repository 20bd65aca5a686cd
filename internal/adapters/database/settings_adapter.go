package database

import (
	"context"
	"encoding/json"

	"github.com/dermatologica/assistant/internal/domain/entities"
	"github.com/dermatologica/assistant/internal/domain/repositories"
	apperrors "github.com/dermatologica/assistant/pkg/errors"
)

// SettingsAdapter implements the open-ended settings partition over the KV
// store. Each record wraps the caller's raw JSON value so that zero values
// round-trip and absence stays observable.
type SettingsAdapter struct {
	kv *KV
}

// NewSettingsAdapter creates a new settings adapter.
func NewSettingsAdapter(kv *KV) repositories.SettingsRepository {
	return &SettingsAdapter{kv: kv}
}

// Get retrieves a setting value; nil means unset.
func (a *SettingsAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	doc, err := a.kv.Get(ctx, PartitionSettings, key)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	var record entities.Setting
	if err := json.Unmarshal(doc, &record); err != nil {
		return nil, apperrors.NewInternalError("failed to decode setting", err)
	}
	return record.Value, nil
}

// Set upserts a setting value.
func (a *SettingsAdapter) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return apperrors.NewValidationError("setting requires a key")
	}
	doc, err := json.Marshal(entities.Setting{Key: key, Value: value})
	if err != nil {
		return apperrors.NewInternalError("failed to encode setting", err)
	}
	return a.kv.Put(ctx, PartitionSettings, key, doc)
}

// Delete removes a setting.
func (a *SettingsAdapter) Delete(ctx context.Context, key string) error {
	return a.kv.Delete(ctx, PartitionSettings, key)
}
