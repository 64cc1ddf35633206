package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"assetdb/internal/core/config"
	"assetdb/internal/core/container"
	"assetdb/internal/core/logger"
	"assetdb/internal/core/routes"
	"assetdb/internal/database"
	"assetdb/internal/scheduler"

	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = 15 * time.Second
	jobTimeout      = 10 * time.Minute
)

var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := logger.NewLogger()
		defer log.Sync()
		config.LoadDotEnv(log)

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = cfg.MigrationsDir
		}

		return database.RunMigrations(cfg.DatabaseURL, dir, log)
	},
}

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the backup scheduler.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

var BackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Run one spreadsheet backup and exit.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withContainer(cmd.Context(), func(c *container.Container, log *zap.Logger) error {
			result, err := c.BackupService.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("backup: %w", err)
			}
			log.Info("backup written", zap.String("name", result.Name), zap.String("id", result.SpreadsheetID))
			return nil
		})
	},
}

func Execute(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:   "assetdb",
		Short: "IT asset lifecycle service",
		RunE:  ServeCmd.RunE,
	}
	MigrateCmd.Flags().String("dir", "", "Directory containing the migration files (defaults to MIGRATIONS_DIR)")
	rootCmd.AddCommand(ServeCmd, MigrateCmd, BackupCmd)

	return rootCmd.ExecuteContext(ctx)
}

func withContainer(ctx context.Context, fn func(c *container.Container, log *zap.Logger) error) error {
	log := logger.NewLogger()
	defer log.Sync()
	config.LoadDotEnv(log)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.NewPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	c, err := container.NewAppContainer(ctx, db, cfg, log)
	if err != nil {
		return err
	}
	defer c.Close()

	return fn(c, log)
}

func serve(ctx context.Context) error {
	return withContainer(ctx, func(c *container.Container, log *zap.Logger) error {
		if err := database.RunMigrations(c.Config.DatabaseURL, c.Config.MigrationsDir, log); err != nil {
			return err
		}

		jobs := scheduler.New(log, jobTimeout)
		if err := jobs.AddJob(c.Config.Backup.Schedule, c.ScheduledBackup); err != nil {
			return fmt.Errorf("invalid BACKUP_SCHEDULE %q: %w", c.Config.Backup.Schedule, err)
		}
		jobs.Start()
		defer jobs.Stop()

		corsHandler := cors.New(cors.Options{
			AllowedOrigins:   c.Config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		})

		server := &http.Server{
			Addr:              c.Config.AppHost,
			Handler:           corsHandler.Handler(routes.NewRouter(c, log)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("starting server", zap.String("addr", server.Addr))
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
}
