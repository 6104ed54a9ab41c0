package repository

import (
	"context"

	"compara-mercado/internal/domain"
	"compara-mercado/internal/kvstore"

	"go.uber.org/zap"
)

// SettingsRepository stores user preferences
type SettingsRepository interface {
	Theme(ctx context.Context) (domain.Theme, error)
	SetTheme(ctx context.Context, theme domain.Theme) error
}

type settingsRepository struct {
	store  kvstore.Store
	logger *zap.Logger
}

// NewSettingsRepository creates a new instance of SettingsRepository
func NewSettingsRepository(store kvstore.Store, logger *zap.Logger) SettingsRepository {
	return &settingsRepository{store: store, logger: logger}
}

// Theme returns the stored theme, or the default when none is stored or it is invalid
func (r *settingsRepository) Theme(ctx context.Context) (domain.Theme, error) {
	var raw string
	found, err := kvstore.GetJSON(ctx, r.store, kvstore.KeyTheme, &raw)
	if err != nil && !found {
		return "", err
	}
	if !found {
		return domain.DefaultTheme, nil
	}

	theme, parseErr := domain.ParseTheme(raw)
	if err != nil || parseErr != nil {
		r.logger.Warn("Stored theme is invalid, using default", zap.String("value", raw))
		return domain.DefaultTheme, nil
	}
	return theme, nil
}

// SetTheme stores the theme preference
func (r *settingsRepository) SetTheme(ctx context.Context, theme domain.Theme) error {
	if _, err := domain.ParseTheme(string(theme)); err != nil {
		return err
	}
	return kvstore.SetJSON(ctx, r.store, kvstore.KeyTheme, theme)
}
