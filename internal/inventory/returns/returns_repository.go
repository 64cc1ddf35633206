package returns

import (
	"context"
	"database/sql"
	"fmt"

	"assetdb/internal/repository"
	custom_error "assetdb/pkg/errors"
	"assetdb/pkg/metadata"
	"assetdb/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

type ReturnsRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *ReturnsRepository {
	return &ReturnsRepository{repository: r}
}

func (r *ReturnsRepository) List(ctx context.Context) ([]models.ReturnedAsset, error) {
	returned := []models.ReturnedAsset{}
	err := r.repository.GoquDBWrapper.From("returned_assets").
		Order(goqu.I("handover_date").Desc().NullsLast(), goqu.I("return_id").Desc()).
		ScanStructsContext(ctx, &returned)
	if err != nil {
		return nil, fmt.Errorf("failed to list returned assets: %w", err)
	}
	return returned, nil
}

func (r *ReturnsRepository) Get(ctx context.Context, id int) (*models.ReturnedAsset, error) {
	var returned models.ReturnedAsset
	found, err := r.repository.GoquDBWrapper.From("returned_assets").
		Where(goqu.Ex{"return_id": id}).
		ScanStructContext(ctx, &returned)
	if err != nil {
		return nil, fmt.Errorf("failed to read returned asset %d: %w", id, err)
	}
	if !found {
		return nil, fmt.Errorf("반납 자산을 찾을 수 없습니다: %w", custom_error.ErrNotFound)
	}
	return &returned, nil
}

// Create records a return and moves the asset to process-ter in one
// transaction. Assets already terminated or returned are a conflict.
func (r *ReturnsRepository) Create(ctx context.Context, req models.ReturnedAssetRequest) (*models.ReturnedAsset, error) {
	var id int
	err := repository.WithTransaction(ctx, r.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		var state sql.NullString
		found, err := tx.From("assets").
			Select("state").
			Where(goqu.Ex{"asset_number": req.AssetNumber}).
			ForUpdate(exp.Wait).
			ScanValContext(ctx, &state)
		if err != nil {
			return fmt.Errorf("failed to read asset %s: %w", req.AssetNumber, err)
		}
		if found && state.String == string(metadata.StatusTermination) {
			return fmt.Errorf("이미 반납 처리된 자산입니다: %w", custom_error.ErrConflict)
		}

		_, err = tx.Insert("returned_assets").
			Rows(goqu.Record{
				"asset_number":  req.AssetNumber,
				"return_reason": req.ReturnReason,
				"model":         req.Model,
				"serial_number": req.SerialNumber,
				"return_type":   req.ReturnType,
				"end_date":      dateOrNil(req.EndDate),
				"user_id":       req.UserID,
				"user_name":     req.UserName,
				"department":    req.Department,
				"handover_date": dateOrNil(req.HandoverDate),
				"remarks":       req.Remarks,
			}).
			Returning("return_id").
			Executor().
			ScanValContext(ctx, &id)
		if err != nil {
			wrapped := custom_error.WrapDBError("failed to insert returned asset", err)
			if custom_error.IsUniqueViolation(wrapped) {
				return fmt.Errorf("이미 반납 처리된 동일한 자산 번호가 존재합니다: %w", custom_error.ErrConflict)
			}
			return wrapped
		}

		_, err = tx.Update("assets").
			Set(goqu.Record{"state": metadata.StatusProcessTer.String()}).
			Where(goqu.Ex{"asset_number": req.AssetNumber}).
			Executor().
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to mark asset %s as returning: %w", req.AssetNumber, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, id)
}

func (r *ReturnsRepository) Update(ctx context.Context, id int, upd models.ReturnedAssetUpdate) (*models.ReturnedAsset, error) {
	record := updateRecord(upd)
	if len(record) == 0 {
		return nil, custom_error.NewValidationError("수정할 데이터가 없습니다.")
	}

	res, err := r.repository.GoquDBWrapper.Update("returned_assets").
		Set(record).
		Where(goqu.Ex{"return_id": id}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return nil, custom_error.WrapDBError("failed to update returned asset", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, fmt.Errorf("반납 자산을 찾을 수 없습니다: %w", custom_error.ErrNotFound)
	}

	return r.Get(ctx, id)
}

// Cancel deletes the return record and puts the asset back to useable.
func (r *ReturnsRepository) Cancel(ctx context.Context, id int) (*models.ReturnedAsset, error) {
	var cancelled models.ReturnedAsset
	err := repository.WithTransaction(ctx, r.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		found, err := tx.From("returned_assets").
			Where(goqu.Ex{"return_id": id}).
			ForUpdate(exp.Wait).
			ScanStructContext(ctx, &cancelled)
		if err != nil {
			return fmt.Errorf("failed to read returned asset %d: %w", id, err)
		}
		if !found {
			return fmt.Errorf("반납 자산을 찾을 수 없습니다: %w", custom_error.ErrNotFound)
		}

		_, err = tx.Update("assets").
			Set(goqu.Record{"state": metadata.StatusUseable.String()}).
			Where(goqu.Ex{"asset_number": cancelled.AssetNumber}).
			Executor().
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to restore asset %s: %w", cancelled.AssetNumber, err)
		}

		_, err = tx.Delete("returned_assets").
			Where(goqu.Ex{"return_id": id}).
			Executor().
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete returned asset %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &cancelled, nil
}

func (r *ReturnsRepository) Delete(ctx context.Context, id int) (*models.ReturnedAsset, error) {
	returned, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	_, err = r.repository.GoquDBWrapper.Delete("returned_assets").
		Where(goqu.Ex{"return_id": id}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to delete returned asset %d: %w", id, err)
	}

	return returned, nil
}

func updateRecord(upd models.ReturnedAssetUpdate) goqu.Record {
	record := goqu.Record{}
	setIf(record, "return_reason", upd.ReturnReason)
	setIf(record, "return_type", upd.ReturnType)
	setIf(record, "user_name", upd.UserName)
	setIf(record, "department", upd.Department)
	setIf(record, "remarks", upd.Remarks)
	setIf(record, "release_status", upd.ReleaseStatus)
	setIf(record, "it_room_stock", upd.ItRoomStock)
	setIf(record, "low_format", upd.LowFormat)
	setIf(record, "it_return", upd.ItReturn)
	setIf(record, "mail_return", upd.MailReturn)
	setIf(record, "actual_return", upd.ActualReturn)
	setIf(record, "complete", upd.Complete)
	if upd.EndDate != nil {
		record["end_date"] = *upd.EndDate
	}
	if upd.HandoverDate != nil {
		record["handover_date"] = *upd.HandoverDate
	}
	return record
}

func setIf[T any](record goqu.Record, column string, value *T) {
	if value != nil {
		record[column] = *value
	}
}

func dateOrNil(d *models.Date) interface{} {
	if d == nil {
		return nil
	}
	return *d
}
