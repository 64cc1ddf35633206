package assets

import (
	"context"
	"fmt"
	"strings"

	"assetdb/internal/repository"
	"assetdb/internal/worktypes"
	"assetdb/pkg/auditlog"
	custom_error "assetdb/pkg/errors"
	"assetdb/pkg/metadata"
	"assetdb/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"
)

type AssetService struct {
	assetsRepo *AssetsRepository
	repo       *repository.Repository
	catalogue  *worktypes.Catalogue
	auditLog   *auditlog.Auditlog
	log        *zap.Logger
}

func NewAssetService(assetsRepo *AssetsRepository, repo *repository.Repository, catalogue *worktypes.Catalogue, auditLog *auditlog.Auditlog, log *zap.Logger) *AssetService {
	return &AssetService{
		assetsRepo: assetsRepo,
		repo:       repo,
		catalogue:  catalogue,
		auditLog:   auditLog,
		log:        log,
	}
}

// BulkRegister creates assets from spreadsheet rows. Rows that fail are
// reported in Errors and skipped; when every row fails nothing is written.
func (s *AssetService) BulkRegister(ctx context.Context, req models.BulkAssetRequest, actor string) (*models.BulkAssetResult, error) {
	if len(req.Items) == 0 {
		return nil, custom_error.NewValidationError("등록할 자산이 없습니다.")
	}

	holders := []string{metadata.HolderStock}
	seen := map[string]bool{metadata.HolderStock: true}
	for _, item := range req.Items {
		id := strings.TrimSpace(item.InUser)
		if id != "" && !seen[id] {
			seen[id] = true
			holders = append(holders, id)
		}
	}

	missing, err := s.assetsRepo.MissingUsers(ctx, holders)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, custom_error.NewValidationError("존재하지 않는 사용자 ID가 포함되어 있습니다: %s", strings.Join(missing, ", "))
	}

	result := &models.BulkAssetResult{Results: []string{}, Errors: []string{}}
	var written []models.Asset

	err = repository.WithTransaction(ctx, s.repo.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		for _, item := range req.Items {
			asset, err := s.registerItem(ctx, tx, item, req.DefaultWorkType)
			if err != nil {
				result.Errors = append(result.Errors, err.Error())
				continue
			}
			written = append(written, *asset)
			result.Results = append(result.Results, asset.AssetNumber)
		}

		if len(result.Results) == 0 {
			return custom_error.NewValidationError("모든 등록 실패: %s", strings.Join(result.Errors, ", "))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Message = fmt.Sprintf("%d건 등록 완료", len(result.Results))
	for i := range written {
		asset := written[i]
		go s.auditLog.Log(
			"bulk_create",
			actor,
			map[string]interface{}{
				"asset_number": asset.AssetNumber,
				"in_user":      asset.InUser,
				"state":        asset.State,
			},
			&asset,
		)
	}

	s.log.Info("bulk asset registration finished",
		zap.Int("registered", len(result.Results)),
		zap.Int("failed", len(result.Errors)))

	return result, nil
}

// registerItem writes one row under a savepoint so a failed statement does
// not abort the surrounding transaction.
func (s *AssetService) registerItem(ctx context.Context, tx *goqu.TxDatabase, item models.BulkAssetItem, defaultWorkType string) (*models.Asset, error) {
	if _, err := tx.ExecContext(ctx, "SAVEPOINT bulk_item"); err != nil {
		return nil, fmt.Errorf("failed to create savepoint: %w", err)
	}

	asset, err := s.writeItem(ctx, tx, item, defaultWorkType)
	if err != nil {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT bulk_item"); rbErr != nil {
			return nil, fmt.Errorf("failed to roll back savepoint: %w", rbErr)
		}
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT bulk_item"); err != nil {
		return nil, fmt.Errorf("failed to release savepoint: %w", err)
	}
	return asset, nil
}

func (s *AssetService) writeItem(ctx context.Context, tx *goqu.TxDatabase, item models.BulkAssetItem, defaultWorkType string) (*models.Asset, error) {
	existing, err := s.assetsRepo.LockByNumber(ctx, tx, strings.TrimSpace(item.AssetNumber))
	if err != nil {
		return nil, err
	}

	plan, err := planBulkItem(item, defaultWorkType, existing, s.catalogue)
	if err != nil {
		return nil, err
	}

	if plan.update {
		err = s.assetsRepo.OverwriteAsset(ctx, tx, plan.asset)
	} else {
		plan.asset.ID, err = s.assetsRepo.InsertAsset(ctx, tx, plan.asset)
	}
	if err != nil {
		return nil, err
	}

	if plan.trade != nil {
		if _, err := repository.InsertTrade(ctx, tx, *plan.trade); err != nil {
			return nil, err
		}
	}

	return &plan.asset, nil
}
