// Package googlesheets snapshots the asset and trade tables into a Google
// spreadsheet in a Drive folder and rotates old snapshots.
package googlesheets

import (
	"context"
	"fmt"
	"sort"
	"time"

	"assetdb/internal/core/config"
	"assetdb/internal/export"
	"assetdb/pkg/models"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

const nameLayout = "20060102_150405"

type AssetLister interface {
	ListAll(ctx context.Context) ([]models.AssetView, error)
}

type TradeLister interface {
	List(ctx context.Context) ([]models.TradeView, error)
}

// Archiver stores a copy of the backup tables outside Google Drive.
type Archiver interface {
	Archive(ctx context.Context, name string, tables map[string][][]string) error
}

type TokenProvider interface {
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)
	Status(ctx context.Context) AuthStatus
}

type WorkbookFactory func(ctx context.Context, source oauth2.TokenSource) (Workbook, error)

type Result struct {
	SpreadsheetID string `json:"spreadsheet_id"`
	Name          string `json:"name"`
	Assets        int    `json:"assets"`
	Trades        int    `json:"trades"`
	Deleted       int    `json:"deleted"`
}

type BackupService struct {
	auth        TokenProvider
	newWorkbook WorkbookFactory
	assets      AssetLister
	trades      TradeLister
	archiver    Archiver
	cfg         config.GoogleConfig
	keep        int
	loc         *time.Location
	now         func() time.Time
	log         *zap.Logger
}

func NewBackupService(cfg *config.Config, assets AssetLister, trades TradeLister, archiver Archiver, log *zap.Logger) *BackupService {
	return &BackupService{
		auth:        NewAuthenticator(cfg.Google),
		newWorkbook: NewWorkbook,
		assets:      assets,
		trades:      trades,
		archiver:    archiver,
		cfg:         cfg.Google,
		keep:        cfg.Backup.Keep,
		loc:         time.Local,
		now:         time.Now,
		log:         log,
	}
}

func (s *BackupService) Status(ctx context.Context) AuthStatus {
	return s.auth.Status(ctx)
}

func (s *BackupService) Run(ctx context.Context) (*Result, error) {
	if s.cfg.BackupFolderID == "" {
		return nil, &AuthError{Code: CodeAuthConfigMissing, Message: "GOOGLE_BACKUP_FOLDER_ID가 설정되지 않았습니다."}
	}

	source, err := s.auth.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	workbook, err := s.newWorkbook(ctx, source)
	if err != nil {
		return nil, err
	}

	assets, trades, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	assetTable := export.AssetTable(assets)
	tradeTable := export.TradeTable(trades, s.loc)

	name := backupPrefix + s.now().In(s.loc).Format(nameLayout)
	id, err := workbook.Create(ctx, name, s.cfg.BackupFolderID)
	if err != nil {
		return nil, err
	}

	if s.cfg.PersonalEmail != "" {
		if err := workbook.TransferOwnership(ctx, id, s.cfg.PersonalEmail); err != nil {
			s.log.Warn("ownership transfer failed, backup stays with the service account",
				zap.String("file", name), zap.Error(err))
		}
	}

	if err := workbook.PrepareSheets(ctx, id); err != nil {
		return nil, err
	}
	if err := workbook.Write(ctx, id, assetTable, tradeTable); err != nil {
		return nil, err
	}

	result := &Result{SpreadsheetID: id, Name: name, Assets: len(assets), Trades: len(trades)}
	result.Deleted = s.rotate(ctx, workbook)

	if s.archiver != nil {
		tables := map[string][][]string{assetSheet: assetTable, tradeSheet: tradeTable}
		if err := s.archiver.Archive(ctx, name, tables); err != nil {
			s.log.Warn("failed to archive backup", zap.String("file", name), zap.Error(err))
		}
	}

	s.log.Info("backup completed",
		zap.String("file", name),
		zap.Int("assets", result.Assets),
		zap.Int("trades", result.Trades),
		zap.Int("deleted", result.Deleted))
	return result, nil
}

// snapshot loads both tables concurrently, newest rows first.
func (s *BackupService) snapshot(ctx context.Context) ([]models.AssetView, []models.TradeView, error) {
	var (
		assets []models.AssetView
		trades []models.TradeView
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		assets, err = s.assets.ListAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		trades, err = s.trades.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to load backup data: %w", err)
	}

	sort.SliceStable(assets, func(i, j int) bool { return assets[i].ID > assets[j].ID })
	sort.SliceStable(trades, func(i, j int) bool { return trades[i].ID > trades[j].ID })
	return assets, trades, nil
}

// rotate deletes backups beyond the newest keep. Failures are logged only.
func (s *BackupService) rotate(ctx context.Context, workbook Workbook) int {
	files, err := workbook.ListBackups(ctx, s.cfg.BackupFolderID)
	if err != nil {
		s.log.Warn("failed to list backups for rotation", zap.Error(err))
		return 0
	}
	if len(files) <= s.keep {
		return 0
	}

	deleted := 0
	for _, f := range files[s.keep:] {
		if err := workbook.Delete(ctx, f.ID); err != nil {
			s.log.Warn("failed to delete old backup", zap.String("file", f.Name), zap.Error(err))
			continue
		}
		deleted++
	}
	return deleted
}
