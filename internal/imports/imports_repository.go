package imports

import (
	"context"
	"database/sql"
	"fmt"

	"assetdb/internal/repository"
	custom_error "assetdb/pkg/errors"
	"assetdb/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

const chunkSize = 500

type ImportRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *ImportRepository {
	return &ImportRepository{repository: r}
}

func (r *ImportRepository) KnownUsers(ctx context.Context, cjIDs []string) (map[string]bool, error) {
	known := map[string]bool{}
	for start := 0; start < len(cjIDs); start += chunkSize {
		var found []string
		err := r.repository.GoquDBWrapper.From("users").
			Select("cj_id").
			Where(goqu.C("cj_id").In(cjIDs[start:min(start+chunkSize, len(cjIDs))])).
			ScanValsContext(ctx, &found)
		if err != nil {
			return nil, fmt.Errorf("failed to read users: %w", err)
		}
		for _, id := range found {
			known[id] = true
		}
	}
	return known, nil
}

// Existing reads the current text form of columns for the given keys.
func (r *ImportRepository) Existing(ctx context.Context, t Target, columns, keys []string) (map[string]map[string]string, error) {
	selects := make([]interface{}, len(columns))
	for i, col := range columns {
		selects[i] = goqu.Cast(goqu.C(col), "TEXT").As(col)
	}

	existing := map[string]map[string]string{}
	for start := 0; start < len(keys); start += chunkSize {
		query, args, err := r.repository.GoquDBWrapper.From(t.Table).
			Select(selects...).
			Where(goqu.C(t.Key).In(keys[start:min(start+chunkSize, len(keys))])).
			ToSQL()
		if err != nil {
			return nil, fmt.Errorf("failed to build existing rows query: %w", err)
		}

		if err := r.scanInto(ctx, existing, t.Key, columns, query, args); err != nil {
			return nil, err
		}
	}
	return existing, nil
}

func (r *ImportRepository) scanInto(ctx context.Context, out map[string]map[string]string, key string, columns []string, query string, args []interface{}) error {
	rows, err := r.repository.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to read existing rows: %w", err)
	}
	defer rows.Close()

	values := make([]sql.NullString, len(columns))
	targets := make([]interface{}, len(columns))
	for i := range values {
		targets[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(targets...); err != nil {
			return fmt.Errorf("failed to scan existing row: %w", err)
		}
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			row[col] = values[i].String
		}
		out[row[key]] = row
	}
	return rows.Err()
}

// Upsert writes the plan in chunks inside one transaction.
func (r *ImportRepository) Upsert(ctx context.Context, t Target, plan Plan) error {
	conflict := t.conflictAction(plan.Columns)

	return repository.WithTransaction(ctx, r.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		for start := 0; start < len(plan.Rows); start += chunkSize {
			end := min(start+chunkSize, len(plan.Rows))

			rows := make([]interface{}, 0, end-start)
			for _, row := range plan.Rows[start:end] {
				rows = append(rows, t.record(plan.Columns, row))
			}

			_, err := tx.Insert(t.Table).Rows(rows...).OnConflict(conflict).Executor().ExecContext(ctx)
			if err != nil {
				return custom_error.WrapDBError(
					fmt.Sprintf("데이터 저장 중 오류가 발생했습니다 (%d~%d번째 행)", start+1, end), err)
			}
		}
		return nil
	})
}

func (t Target) conflictAction(columns []string) exp.ConflictExpression {
	update := goqu.Record{}
	for _, col := range t.writtenColumns(columns) {
		if col != t.Key {
			update[col] = goqu.I("excluded." + col)
		}
	}
	if len(update) == 0 {
		return goqu.DoNothing()
	}
	return goqu.DoUpdate(t.Key, update)
}

func (t Target) writtenColumns(columns []string) []string {
	if t.Table == Assets.Table {
		return append(append([]string{}, columns...), "contract_month")
	}
	return columns
}

func (t Target) record(columns []string, row map[string]string) goqu.Record {
	record := goqu.Record{}
	for _, col := range columns {
		value := row[col]
		if t.Columns[col] != kindText && value == "" {
			record[col] = nil
			continue
		}
		record[col] = value
	}

	if t.Table == Assets.Table {
		record["contract_month"] = nil
		start, errStart := models.ParseDate(row["day_of_start"])
		end, errEnd := models.ParseDate(row["day_of_end"])
		if errStart == nil && errEnd == nil {
			record["contract_month"] = models.ContractMonths(start, end)
		}
	}
	return record
}
