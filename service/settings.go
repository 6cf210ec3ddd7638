package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Sujan7036/friends-momo-sub001/cart"
	"github.com/Sujan7036/friends-momo-sub001/models"
	"github.com/Sujan7036/friends-momo-sub001/repository"
	"github.com/Sujan7036/friends-momo-sub001/settings"
)

type SettingsService struct {
	repo     *repository.SettingRepository
	defaults cart.Pricing
}

func NewSettingsService(repo *repository.SettingRepository, defaults cart.Pricing) *SettingsService {
	return &SettingsService{repo: repo, defaults: defaults}
}

// Snapshot loads and resolves every setting. Rows that do not match their
// declared type are logged and skipped.
func (s *SettingsService) Snapshot(ctx context.Context) (settings.Snapshot, error) {
	rows, err := s.repo.All(ctx)
	if err != nil {
		return settings.Snapshot{}, err
	}
	snap, errs := settings.NewSnapshot(rows)
	for _, e := range errs {
		slog.Warn("Ignoring malformed setting", "error", e)
	}
	return snap, nil
}

// Pricing returns the cart rates, falling back to configured defaults.
func (s *SettingsService) Pricing(ctx context.Context) (cart.Pricing, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return s.defaults, err
	}
	return snap.Pricing(s.defaults), nil
}

func (s *SettingsService) List(ctx context.Context) ([]models.Setting, error) {
	return s.repo.All(ctx)
}

// Update changes the value of an existing setting after checking it
// resolves to the setting's type.
func (s *SettingsService) Update(ctx context.Context, key, value string) (*models.Setting, error) {
	row, err := s.repo.ByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if _, err := settings.Resolve(row.Type, value); err != nil {
		v := &ValidationError{}
		v.Add(key, err.Error())
		return nil, v
	}
	if err := s.repo.Update(ctx, row.ID, map[string]any{"value": value}); err != nil {
		return nil, err
	}
	row.Value = value
	return row, nil
}

// EnsureDefaults inserts any missing default setting.
func (s *SettingsService) EnsureDefaults(ctx context.Context) error {
	for _, d := range settings.Defaults(s.defaults) {
		d := d
		if err := s.repo.EnsureDefault(ctx, &d); err != nil {
			return fmt.Errorf("default setting %s: %w", d.Key, err)
		}
	}
	return nil
}
