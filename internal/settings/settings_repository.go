// Package settings stores runtime switches in the settings key/value table.
package settings

import (
	"context"
	"fmt"
	"strconv"

	"assetdb/internal/repository"

	"github.com/doug-martin/goqu/v9"
)

const KeyAutoBackup = "auto_backup_enabled"

type SettingsRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *SettingsRepository {
	return &SettingsRepository{repository: r}
}

// Get returns the stored value and whether the key exists.
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	found, err := r.repository.GoquDBWrapper.From("settings").
		Select("s_value").
		Where(goqu.Ex{"s_key": key}).
		ScanValContext(ctx, &value)
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, found, nil
}

func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.repository.GoquDBWrapper.Insert("settings").
		Rows(goqu.Record{"s_key": key, "s_value": value}).
		OnConflict(goqu.DoUpdate("s_key", goqu.Record{
			"s_value":    value,
			"updated_at": goqu.L("NOW()"),
		})).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

// AutoBackupEnabled defaults to true when the row is missing.
func (r *SettingsRepository) AutoBackupEnabled(ctx context.Context) (bool, error) {
	value, found, err := r.Get(ctx, KeyAutoBackup)
	if err != nil || !found {
		return true, err
	}
	return value == "true", nil
}

func (r *SettingsRepository) SetAutoBackup(ctx context.Context, enabled bool) error {
	return r.Set(ctx, KeyAutoBackup, strconv.FormatBool(enabled))
}
