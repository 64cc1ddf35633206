package repository

import (
	"context"
	"fmt"

	"assetdb/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

// InsertTrade appends a row to the trade ledger inside tx. Empty strings are
// stored as NULL; timestamp defaults to now().
func InsertTrade(ctx context.Context, tx *goqu.TxDatabase, trade models.Trade) (int, error) {
	record := goqu.Record{
		"work_type":     trade.WorkType,
		"asset_number":  trade.AssetNumber,
		"cj_id":         nullIfEmpty(trade.CjID),
		"ex_user":       nullIfEmpty(trade.ExUser),
		"asset_state":   nullIfEmpty(trade.AssetState),
		"asset_in_user": nullIfEmpty(trade.AssetInUser),
		"replacement":   nullIfEmpty(trade.Replacement),
		"memo":          nullIfEmpty(trade.Memo),
	}
	if !trade.Timestamp.IsZero() {
		record["timestamp"] = trade.Timestamp
	}

	var id int
	_, err := tx.Insert("trade").
		Rows(record).
		Returning("trade_id").
		Executor().
		ScanValContext(ctx, &id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert trade for %s: %w", trade.AssetNumber, err)
	}

	return id, nil
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
