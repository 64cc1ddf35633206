package trades

import (
	"context"
	"fmt"

	"assetdb/internal/repository"
	custom_error "assetdb/pkg/errors"
	"assetdb/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type TradeRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *TradeRepository {
	return &TradeRepository{repository: r}
}

// List returns the whole ledger, newest first.
func (r *TradeRepository) List(ctx context.Context) ([]models.TradeView, error) {
	trades := []models.TradeView{}
	err := r.viewQuery().
		Order(goqu.I("t.timestamp").Desc(), goqu.I("t.trade_id").Desc()).
		ScanStructsContext(ctx, &trades)
	if err != nil {
		return nil, fmt.Errorf("unable to select trades: %w", err)
	}
	return trades, nil
}

func (r *TradeRepository) Get(ctx context.Context, id int) (*models.TradeView, error) {
	var trade models.TradeView
	found, err := r.viewQuery().
		Where(goqu.Ex{"t.trade_id": id}).
		ScanStructContext(ctx, &trade)
	if err != nil {
		return nil, fmt.Errorf("unable to select trade %d: %w", id, err)
	}
	if !found {
		return nil, fmt.Errorf("거래를 찾을 수 없습니다: %w", custom_error.ErrNotFound)
	}
	return &trade, nil
}

// Update edits ledger metadata only.
func (r *TradeRepository) Update(ctx context.Context, id int, upd models.TradeUpdate) (*models.TradeView, error) {
	record := goqu.Record{}
	if upd.WorkType != nil {
		record["work_type"] = *upd.WorkType
	}
	if upd.CjID != nil {
		record["cj_id"] = *upd.CjID
	}
	if upd.ExUser != nil {
		record["ex_user"] = *upd.ExUser
	}
	if upd.Memo != nil {
		record["memo"] = *upd.Memo
	}
	if upd.Timestamp != nil {
		record["timestamp"] = *upd.Timestamp
	}

	result, err := r.repository.GoquDBWrapper.Update("trade").
		Set(record).
		Where(goqu.Ex{"trade_id": id}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return nil, custom_error.WrapDBError("failed to update trade", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("거래를 찾을 수 없습니다: %w", custom_error.ErrNotFound)
	}

	return r.Get(ctx, id)
}

// AssetHistory returns the trades of one asset, oldest first, with holder names.
func (r *TradeRepository) AssetHistory(ctx context.Context, assetNumber string) ([]models.HistoryEntry, error) {
	entries := []models.HistoryEntry{}
	err := r.repository.GoquDBWrapper.
		Select(
			goqu.I("t.trade_id"),
			goqu.I("t.asset_number"),
			goqu.I("t.work_type"),
			goqu.COALESCE(goqu.I("t.cj_id"), "").As("cj_id"),
			goqu.COALESCE(goqu.I("u1.name"), "").As("user_name"),
			goqu.COALESCE(goqu.I("t.ex_user"), "").As("ex_user"),
			goqu.COALESCE(goqu.I("u2.name"), "").As("ex_user_name"),
			goqu.I("t.timestamp"),
		).
		From(goqu.T("trade").As("t")).
		LeftJoin(goqu.T("users").As("u1"), goqu.On(goqu.Ex{"t.cj_id": goqu.I("u1.cj_id")})).
		LeftJoin(goqu.T("users").As("u2"), goqu.On(goqu.Ex{"t.ex_user": goqu.I("u2.cj_id")})).
		Where(goqu.Ex{"t.asset_number": assetNumber}).
		Order(goqu.I("t.timestamp").Asc(), goqu.I("t.trade_id").Asc()).
		ScanStructsContext(ctx, &entries)
	if err != nil {
		return nil, fmt.Errorf("unable to select history of %s: %w", assetNumber, err)
	}

	return withOrigin(entries), nil
}

// CurrentHolders returns, per asset, the latest trade among workTypes.
func (r *TradeRepository) CurrentHolders(ctx context.Context, workTypes []string) ([]models.CurrentHolder, error) {
	latest := r.repository.GoquDBWrapper.
		From("trade").
		Select("asset_number", "cj_id", "work_type", "timestamp").
		Distinct("asset_number").
		Where(goqu.Ex{"work_type": workTypes}).
		Order(goqu.I("asset_number").Asc(), goqu.I("timestamp").Desc(), goqu.I("trade_id").Desc())

	holders := []models.CurrentHolder{}
	err := r.repository.GoquDBWrapper.
		Select(
			goqu.I("t.asset_number"),
			goqu.COALESCE(goqu.I("t.cj_id"), "").As("cj_id"),
			goqu.COALESCE(goqu.I("u.name"), goqu.I("t.cj_id"), "").As("user_name"),
			goqu.I("t.work_type"),
			goqu.I("t.timestamp"),
		).
		From(latest.As("t")).
		LeftJoin(goqu.T("users").As("u"), goqu.On(goqu.Ex{"t.cj_id": goqu.I("u.cj_id")})).
		Order(goqu.I("t.timestamp").Asc()).
		ScanStructsContext(ctx, &holders)
	if err != nil {
		return nil, fmt.Errorf("unable to select current holders: %w", err)
	}

	return holders, nil
}

func (r *TradeRepository) viewQuery() *goqu.SelectDataset {
	return r.repository.GoquDBWrapper.
		Select(
			goqu.I("t.trade_id"),
			goqu.I("t.timestamp"),
			goqu.I("t.work_type"),
			goqu.I("t.asset_number"),
			goqu.COALESCE(goqu.I("t.cj_id"), "").As("cj_id"),
			goqu.COALESCE(goqu.I("t.ex_user"), "").As("ex_user"),
			goqu.COALESCE(goqu.I("t.asset_state"), "").As("asset_state"),
			goqu.COALESCE(goqu.I("t.asset_in_user"), "").As("asset_in_user"),
			goqu.COALESCE(goqu.I("t.replacement"), "").As("replacement"),
			goqu.COALESCE(goqu.I("t.memo"), "").As("memo"),
			goqu.COALESCE(goqu.I("a.model"), "").As("model"),
			goqu.COALESCE(goqu.I("u.name"), "").As("name"),
			goqu.COALESCE(goqu.I("u.part"), "").As("part"),
			goqu.COALESCE(goqu.I("u2.name"), "").As("ex_user_name"),
			goqu.COALESCE(goqu.I("u2.part"), "").As("ex_user_part"),
		).
		From(goqu.T("trade").As("t")).
		LeftJoin(goqu.T("assets").As("a"), goqu.On(goqu.Ex{"t.asset_number": goqu.I("a.asset_number")})).
		LeftJoin(goqu.T("users").As("u"), goqu.On(goqu.Ex{"t.cj_id": goqu.I("u.cj_id")})).
		LeftJoin(goqu.T("users").As("u2"), goqu.On(goqu.Ex{"t.ex_user": goqu.I("u2.cj_id")}))
}
