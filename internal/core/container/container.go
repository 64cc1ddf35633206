package container

import (
	"context"
	"database/sql"
	"time"

	auditLogRepo "assetdb/internal/auditlog"
	"assetdb/internal/core/config"
	"assetdb/internal/dashboard"
	"assetdb/internal/filters"
	"assetdb/internal/imports"
	"assetdb/internal/integrations/googlesheets"
	"assetdb/internal/integrations/s3archive"
	"assetdb/internal/inventory/assets"
	"assetdb/internal/inventory/confirmations"
	"assetdb/internal/inventory/returns"
	"assetdb/internal/inventory/trades"
	"assetdb/internal/rate_limiter"
	"assetdb/internal/repository"
	"assetdb/internal/selectbar"
	"assetdb/internal/settings"
	"assetdb/internal/users"
	"assetdb/internal/worktypes"
	"assetdb/pkg/auditlog"
	"assetdb/pkg/security"

	"go.uber.org/zap"
)

const (
	loginAttempts = 10
	loginWindow   = 15 * time.Minute
)

type Container struct {
	DB                  *sql.DB
	Config              *config.Config
	Repository          *repository.Repository
	AuditLog            *auditlog.Auditlog
	Authenticator       *security.Authenticator
	RateLimiter         *rate_limiter.RateLimiter
	LoginHandler        *security.LoginHandler
	AssetHandler        *assets.AssetHandler
	TradeHandler        *trades.TradeHandler
	UserHandler         *users.UsersHandler
	ReturnHandler       *returns.ReturnHandler
	ConfirmationHandler *confirmations.ConfirmationHandler
	FilterHandler       *filters.FilterHandler
	DashboardHandler    *dashboard.Handler
	SelectBarHandler    *selectbar.Handler
	ImportHandler       *imports.ImportHandler
	BackupHandler       *googlesheets.BackupHandler
	BackupService       *googlesheets.BackupService
	ScheduledBackup     *googlesheets.ScheduledBackup
}

func NewAppContainer(ctx context.Context, db *sql.DB, cfg *config.Config, log *zap.Logger) (*Container, error) {
	repo := repository.NewRepository(db)
	catalogue := worktypes.Default()

	auditRepo := auditLogRepo.NewRepository(repo)
	auditLog := auditlog.NewAuditLog(auditRepo, log)

	authenticator := security.NewAuthenticator(cfg.JWTSecret, cfg.JWTTTL)
	limiter := rate_limiter.NewRateLimiter(loginAttempts, loginWindow)

	userRepo := users.NewRepository(repo)
	assetRepo := assets.NewRepository(repo)
	tradeRepo := trades.NewRepository(repo)
	settingsRepo := settings.NewRepository(repo)

	assetService := assets.NewAssetService(assetRepo, repo, catalogue, auditLog, log)
	tradeService := trades.NewTradeService(repo, assetRepo, catalogue, log)

	archive, err := s3archive.New(ctx, cfg.Backup, log)
	if err != nil {
		return nil, err
	}
	var archiver googlesheets.Archiver
	if archive != nil {
		archiver = archive
	}
	backupService := googlesheets.NewBackupService(cfg, assetRepo, tradeRepo, archiver, log)

	return &Container{
		DB:                  db,
		Config:              cfg,
		Repository:          repo,
		AuditLog:            auditLog,
		Authenticator:       authenticator,
		RateLimiter:         limiter,
		LoginHandler:        security.NewLoginHandler(userRepo, authenticator, limiter, log),
		AssetHandler:        assets.NewAssetHandler(assetRepo, assetService, catalogue, auditRepo, auditLog, log),
		TradeHandler:        trades.NewHandler(tradeRepo, tradeService, catalogue, log),
		UserHandler:         users.NewHandler(userRepo, auditLog, log),
		ReturnHandler:       returns.NewHandler(returns.NewRepository(repo), auditLog, log),
		ConfirmationHandler: confirmations.NewHandler(confirmations.NewRepository(repo), log),
		FilterHandler:       filters.NewHandler(filters.NewRepository(repo), log),
		DashboardHandler:    dashboard.NewHandler(dashboard.NewRepository(repo), log),
		SelectBarHandler:    selectbar.NewHandler(selectbar.NewRepository(repo), log),
		ImportHandler:       imports.NewHandler(imports.NewImportService(imports.NewRepository(repo), log), auditLog, log),
		BackupHandler:       googlesheets.NewBackupHandler(backupService, settingsRepo, log),
		BackupService:       backupService,
		ScheduledBackup:     googlesheets.NewScheduledBackup(backupService, settingsRepo, log),
	}, nil
}

// Close stops background goroutines owned by the container.
func (c *Container) Close() {
	c.RateLimiter.Stop()
}
