package confirmations

import (
	"context"
	"fmt"

	"assetdb/internal/repository"
	"assetdb/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type ConfirmationsRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *ConfirmationsRepository {
	return &ConfirmationsRepository{repository: r}
}

func (r *ConfirmationsRepository) ListAssets(ctx context.Context) ([]models.ConfirmedAsset, error) {
	confirmed := []models.ConfirmedAsset{}
	err := r.repository.GoquDBWrapper.From("confirmed_assets").
		Order(goqu.I("confirmed_at").Desc()).
		ScanStructsContext(ctx, &confirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmed assets: %w", err)
	}
	return confirmed, nil
}

// Latest returns the most recent confirmation of an asset, or nil.
func (r *ConfirmationsRepository) Latest(ctx context.Context, assetNumber string) (*models.ConfirmedAsset, error) {
	var confirmed models.ConfirmedAsset
	found, err := r.repository.GoquDBWrapper.From("confirmed_assets").
		Where(goqu.Ex{"asset_number": assetNumber}).
		Order(goqu.I("confirmed_at").Desc()).
		Limit(1).
		ScanStructContext(ctx, &confirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to read confirmation of %s: %w", assetNumber, err)
	}
	if !found {
		return nil, nil
	}
	return &confirmed, nil
}

// ConfirmAsset records that cjID holds the asset, refreshing confirmed_at
// when the pair was confirmed before.
func (r *ConfirmationsRepository) ConfirmAsset(ctx context.Context, assetNumber, cjID string) error {
	_, err := r.repository.GoquDBWrapper.Insert("confirmed_assets").
		Rows(goqu.Record{"asset_number": assetNumber, "cj_id": cjID}).
		OnConflict(goqu.DoUpdate("asset_number, cj_id", goqu.Record{"confirmed_at": goqu.L("NOW()")})).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to confirm asset %s: %w", assetNumber, err)
	}
	return nil
}

func (r *ConfirmationsRepository) UnconfirmAsset(ctx context.Context, assetNumber, cjID string) (int64, error) {
	return r.delete(ctx, "confirmed_assets", goqu.Ex{"asset_number": assetNumber, "cj_id": cjID})
}

func (r *ConfirmationsRepository) DeleteAssetConfirmations(ctx context.Context, assetNumber string) (int64, error) {
	return r.delete(ctx, "confirmed_assets", goqu.Ex{"asset_number": assetNumber})
}

func (r *ConfirmationsRepository) ListReplacements(ctx context.Context) ([]models.ConfirmedReplacement, error) {
	confirmed := []models.ConfirmedReplacement{}
	err := r.repository.GoquDBWrapper.From("confirmed_replacements").
		Order(goqu.I("confirmed_at").Desc()).
		ScanStructsContext(ctx, &confirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmed replacements: %w", err)
	}
	return confirmed, nil
}

func (r *ConfirmationsRepository) ConfirmReplacement(ctx context.Context, assetNumber string) error {
	_, err := r.repository.GoquDBWrapper.Insert("confirmed_replacements").
		Rows(goqu.Record{"asset_number": assetNumber}).
		OnConflict(goqu.DoUpdate("asset_number", goqu.Record{"confirmed_at": goqu.L("NOW()")})).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to confirm replacement %s: %w", assetNumber, err)
	}
	return nil
}

func (r *ConfirmationsRepository) UnconfirmReplacement(ctx context.Context, assetNumber string) (int64, error) {
	return r.delete(ctx, "confirmed_replacements", goqu.Ex{"asset_number": assetNumber})
}

func (r *ConfirmationsRepository) delete(ctx context.Context, table string, where goqu.Ex) (int64, error) {
	res, err := r.repository.GoquDBWrapper.Delete(table).
		Where(where).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return res.RowsAffected()
}
