package services

import (
	"context"
	"encoding/json"

	"github.com/dermatologica/assistant/internal/domain/entities"
	"github.com/dermatologica/assistant/internal/domain/repositories"
	apperrors "github.com/dermatologica/assistant/pkg/errors"
)

// GetSetting retrieves a typed setting. The second return value is false
// when the key is unset, which is distinct from any stored value: a stored
// 0, false or "" round-trips with found=true.
func GetSetting[T any](ctx context.Context, repo repositories.SettingsRepository, key string) (T, bool, error) {
	var value T
	raw, err := repo.Get(ctx, key)
	if err != nil {
		return value, false, err
	}
	if raw == nil {
		return value, false, nil
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, false, apperrors.NewInternalError("failed to decode setting", err)
	}
	return value, true, nil
}

// SetSetting stores a typed setting.
func SetSetting[T any](ctx context.Context, repo repositories.SettingsRepository, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return apperrors.NewInternalError("failed to encode setting", err)
	}
	return repo.Set(ctx, key, raw)
}

// Settings exposes the settings repository for typed access.
func (s *WorkspaceService) Settings() repositories.SettingsRepository {
	return s.settingsRepo
}

// CustomIcons returns the per-formula icon overrides, keyed by formula id.
func (s *WorkspaceService) CustomIcons(ctx context.Context) (map[string]string, error) {
	icons, found, err := GetSetting[map[string]string](ctx, s.settingsRepo, entities.SettingCustomIcons)
	if err != nil {
		return nil, err
	}
	if !found || icons == nil {
		return map[string]string{}, nil
	}
	return icons, nil
}

// SetCustomIcon stores an icon override for a formula id.
func (s *WorkspaceService) SetCustomIcon(ctx context.Context, formulaID, imageDataURL string) error {
	if formulaID == "" {
		return apperrors.NewValidationError("formula id is required")
	}
	icons, err := s.CustomIcons(ctx)
	if err != nil {
		return err
	}
	icons[formulaID] = imageDataURL
	return SetSetting(ctx, s.settingsRepo, entities.SettingCustomIcons, icons)
}

// RemoveCustomIcon drops the icon override for a formula id.
func (s *WorkspaceService) RemoveCustomIcon(ctx context.Context, formulaID string) error {
	icons, err := s.CustomIcons(ctx)
	if err != nil {
		return err
	}
	if _, ok := icons[formulaID]; !ok {
		return nil
	}
	delete(icons, formulaID)
	return SetSetting(ctx, s.settingsRepo, entities.SettingCustomIcons, icons)
}
