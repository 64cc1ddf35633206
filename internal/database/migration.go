package database

import (
	"fmt"
	"path/filepath"

	"assetdb/internal/database/migration"

	"go.uber.org/zap"
)

// RunMigrations applies every pending migration found in migrationsDir.
func RunMigrations(dbURL, migrationsDir string, log *zap.Logger) error {
	absPath, err := filepath.Abs(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	if err := migration.Migrate(dbURL, "file://"+absPath, false, log); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	return nil
}
