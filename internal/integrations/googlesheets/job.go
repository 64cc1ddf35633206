package googlesheets

import (
	"context"

	"go.uber.org/zap"
)

type BackupSettings interface {
	AutoBackupEnabled(ctx context.Context) (bool, error)
	SetAutoBackup(ctx context.Context, enabled bool) error
}

type Runner interface {
	Run(ctx context.Context) (*Result, error)
	Status(ctx context.Context) AuthStatus
}

// ScheduledBackup runs a backup only while auto backup is switched on.
type ScheduledBackup struct {
	runner   Runner
	settings BackupSettings
	log      *zap.Logger
}

func NewScheduledBackup(runner Runner, settings BackupSettings, log *zap.Logger) *ScheduledBackup {
	return &ScheduledBackup{runner: runner, settings: settings, log: log}
}

func (j *ScheduledBackup) Name() string {
	return "spreadsheet_backup"
}

func (j *ScheduledBackup) Run(ctx context.Context) error {
	enabled, err := j.settings.AutoBackupEnabled(ctx)
	if err != nil {
		return err
	}
	if !enabled {
		j.log.Info("auto backup disabled, skipping scheduled run")
		return nil
	}

	_, err = j.runner.Run(ctx)
	return err
}
