package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"assetdb/internal/repository"
	"assetdb/internal/search"
	"assetdb/internal/worktypes"
	custom_error "assetdb/pkg/errors"
	"assetdb/pkg/metadata"
	"assetdb/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

// Categories counted by the "1인 다PC사용자" filter.
var pcCategoryPatterns = []string{"%노트북%", "%데스크%", "%PC%"}

var listAliases = map[string]string{
	"state":    "a.state",
	"category": "a.category",
	"in_user":  "a.in_user",
}

type AssetsRepository struct {
	repository *repository.Repository
	schema     search.Schema
}

func NewRepository(r *repository.Repository) *AssetsRepository {
	return &AssetsRepository{
		repository: r,
		schema:     searchSchema(),
	}
}

func searchSchema() search.Schema {
	fields := map[string]search.Field{
		"asset_number":   {Column: "a.asset_number"},
		"category":       {Column: "a.category"},
		"model":          {Column: "a.model"},
		"serial_number":  {Column: "a.serial_number"},
		"state":          {Column: "a.state"},
		"in_user":        {Column: "a.in_user"},
		"user_name":      {Column: "u.name"},
		"user_part":      {Column: "u.part"},
		"name":           {Column: "u.name"},
		"part":           {Column: "u.part"},
		"replacement":    {Column: "a.replacement"},
		"memo":           {Column: "a.memo"},
		"day_of_start":   {Column: "a.day_of_start", Kind: search.KindDate},
		"day_of_end":     {Column: "a.day_of_end", Kind: search.KindDate},
		"unit_price":     {Column: "a.unit_price", Kind: search.KindNumber},
		"contract_month": {Column: "a.contract_month", Kind: search.KindNumber},
	}

	available := goqu.Ex{"a.state": string(metadata.StatusUseable), "a.in_user": metadata.HolderStock}
	multiPC := goqu.And(
		isPC("a.category"),
		goqu.I("a.in_user").In(
			repository.Dialect().From("assets").
				Select("in_user").
				Where(
					goqu.I("in_user").NotIn(metadata.HolderStock, metadata.HolderVendor),
					isPC("category"),
				).
				GroupBy("in_user").
				Having(goqu.COUNT("*").Gt(1)),
		),
	)

	return search.Schema{
		Fields: fields,
		Keywords: []string{
			"asset_number", "category", "model", "serial_number", "state",
			"in_user", "user_name", "user_part", "replacement", "memo",
		},
		Reserved: map[string]exp.Expression{
			"가용재고":       available,
			"1인 다PC사용자":  multiPC,
			"1인 다PC 보유자": multiPC,
		},
	}
}

func isPC(column string) exp.Expression {
	parts := make([]exp.Expression, 0, len(pcCategoryPatterns))
	for _, pattern := range pcCategoryPatterns {
		parts = append(parts, goqu.I(column).ILike(pattern))
	}
	return goqu.Or(parts...)
}

// List returns assets with their holder. Exact filters come from conditions,
// query is compiled by the search package.
func (r *AssetsRepository) List(ctx context.Context, conditions repository.QueryBuilder, query string) ([]models.AssetView, error) {
	ds := r.baseQuery(r.repository.GoquDBWrapper.From(goqu.T("assets").As("a")))

	if conditions != nil && !conditions.IsEmpty() {
		ds = ds.Where(conditions.BuildConditions(listAliases))
	}

	where, err := search.Compile(query, r.schema)
	if err != nil {
		return nil, err
	}
	if where != nil {
		ds = ds.Where(where)
	}

	assets := []models.AssetView{}
	if err := ds.Order(goqu.I("a.asset_id").Asc()).ScanStructsContext(ctx, &assets); err != nil {
		return nil, fmt.Errorf("unable to select assets from database: %w", err)
	}

	return assets, nil
}

// ListReplacements returns assets that name a replacement device together
// with that device and its holder.
func (r *AssetsRepository) ListReplacements(ctx context.Context) ([]models.ReplacementView, error) {
	ds := r.repository.GoquDBWrapper.
		Select(
			goqu.I("a.asset_id"),
			goqu.I("a.asset_number"),
			goqu.I("a.replacement"),
			goqu.COALESCE(goqu.I("a_repl.model"), "").As("model"),
			goqu.COALESCE(goqu.I("a_repl.serial_number"), "").As("serial_number"),
			goqu.COALESCE(goqu.I("u_repl.name"), "").As("replacement_user_name"),
			goqu.COALESCE(goqu.I("u_repl.part"), "").As("replacement_user_part"),
		).
		From(goqu.T("assets").As("a")).
		LeftJoin(
			goqu.T("assets").As("a_repl"),
			goqu.On(goqu.Ex{"a.replacement": goqu.I("a_repl.asset_number")}),
		).
		LeftJoin(
			goqu.T("users").As("u_repl"),
			goqu.On(goqu.Ex{"a_repl.in_user": goqu.I("u_repl.cj_id")}),
		).
		Where(
			goqu.I("a.replacement").IsNotNull(),
			goqu.I("a.replacement").Neq(""),
		).
		Order(goqu.I("a.asset_id").Asc())

	replacements := []models.ReplacementView{}
	if err := ds.ScanStructsContext(ctx, &replacements); err != nil {
		return nil, fmt.Errorf("unable to select replacements: %w", err)
	}

	return replacements, nil
}

func (r *AssetsRepository) Get(ctx context.Context, id int) (*models.AssetView, error) {
	return r.fetchOne(ctx, goqu.Ex{"a.asset_id": id})
}

func (r *AssetsRepository) GetByNumber(ctx context.Context, assetNumber string) (*models.AssetView, error) {
	return r.fetchOne(ctx, goqu.Ex{"a.asset_number": assetNumber})
}

// Update writes the editable columns. contract_month follows the dates when
// both are present after the update.
func (r *AssetsRepository) Update(ctx context.Context, id int, upd models.AssetUpdate) (*models.AssetView, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	record := goqu.Record{"asset_number": upd.AssetNumber}
	setString(record, "category", upd.Category)
	setString(record, "model", upd.Model)
	setString(record, "serial_number", upd.SerialNumber)
	setString(record, "state", upd.State)
	setString(record, "replacement", upd.Replacement)
	setString(record, "memo", upd.Memo)
	if upd.InUser != nil {
		record["in_user"] = nullable(*upd.InUser)
	}
	if upd.UnitPrice != nil {
		record["unit_price"] = *upd.UnitPrice
	}

	start, end := current.DayOfStart, current.DayOfEnd
	if upd.DayOfStart != nil {
		record["day_of_start"] = *upd.DayOfStart
		start = upd.DayOfStart
	}
	if upd.DayOfEnd != nil {
		record["day_of_end"] = *upd.DayOfEnd
		end = upd.DayOfEnd
	}
	if start != nil && end != nil {
		record["contract_month"] = models.ContractMonths(*start, *end)
	}

	_, err = r.repository.GoquDBWrapper.Update("assets").
		Set(record).
		Where(goqu.Ex{"asset_id": id}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return nil, custom_error.WrapDBError("failed to update asset", err)
	}

	return r.Get(ctx, id)
}

// MissingUsers returns the ids from cjIDs that have no users row.
func (r *AssetsRepository) MissingUsers(ctx context.Context, cjIDs []string) ([]string, error) {
	var existing []string
	err := r.repository.GoquDBWrapper.From("users").
		Select("cj_id").
		Where(goqu.Ex{"cj_id": cjIDs}).
		ScanValsContext(ctx, &existing)
	if err != nil {
		return nil, fmt.Errorf("failed to check users: %w", err)
	}

	found := make(map[string]bool, len(existing))
	for _, id := range existing {
		found[id] = true
	}

	var missing []string
	for _, id := range cjIDs {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// datasetSource is satisfied by *goqu.TxDatabase and goqu.DialectWrapper,
// so the statements below can be rendered without a connection.
type datasetSource interface {
	From(from ...interface{}) *goqu.SelectDataset
	Update(table interface{}) *goqu.UpdateDataset
}

func lockAssetQuery(src datasetSource, assetNumber string) *goqu.SelectDataset {
	return src.From(goqu.T("assets").As("a")).
		Select(assetColumns()...).
		Where(goqu.Ex{"a.asset_number": assetNumber}).
		ForUpdate(exp.Wait)
}

// transitionUpdate only matches while the row still has the state and holder
// observed under lock.
func transitionUpdate(src datasetSource, t worktypes.Transition) *goqu.UpdateDataset {
	record := goqu.Record{
		"state":   t.NewState,
		"in_user": nullable(t.NewInUser),
	}
	if t.WorkType.RequiresReplacement {
		record["replacement"] = t.Replacement
	}
	if t.DayOfStart != nil && t.DayOfEnd != nil {
		record["day_of_start"] = *t.DayOfStart
		record["day_of_end"] = *t.DayOfEnd
		record["contract_month"] = models.ContractMonths(*t.DayOfStart, *t.DayOfEnd)
	}

	return src.Update("assets").
		Set(record).
		Where(
			goqu.Ex{"asset_number": t.Before.AssetNumber},
			goqu.L("COALESCE(state, '')").Eq(t.Before.State),
			goqu.L("COALESCE(in_user, '')").Eq(t.Before.InUser),
		)
}

func userExistsQuery(src datasetSource, cjID string) *goqu.SelectDataset {
	return src.From("users").
		Select(goqu.L("1")).
		Where(goqu.Ex{"cj_id": cjID}).
		Limit(1)
}

// UserExists reports whether cjID has a users row, read inside tx so a trade
// never points in_user at an account that does not exist.
func (r *AssetsRepository) UserExists(ctx context.Context, tx *goqu.TxDatabase, cjID string) (bool, error) {
	var one int
	found, err := userExistsQuery(tx, cjID).ScanValContext(ctx, &one)
	if err != nil {
		return false, fmt.Errorf("failed to check user %s: %w", cjID, err)
	}
	return found, nil
}

// LockByNumber selects the asset row FOR UPDATE inside tx. A missing asset
// returns nil without error.
func (r *AssetsRepository) LockByNumber(ctx context.Context, tx *goqu.TxDatabase, assetNumber string) (*models.Asset, error) {
	var asset models.Asset
	found, err := lockAssetQuery(tx, assetNumber).ScanStructContext(ctx, &asset)
	if err != nil {
		return nil, fmt.Errorf("failed to lock asset %s: %w", assetNumber, err)
	}
	if !found {
		return nil, nil
	}
	return &asset, nil
}

// ApplyTransition moves the asset to the planned state and holder. The UPDATE
// is guarded by the observed state and holder; a row changed since it was read
// yields ErrConflict.
func (r *AssetsRepository) ApplyTransition(ctx context.Context, tx *goqu.TxDatabase, t worktypes.Transition) error {
	result, err := transitionUpdate(tx, t).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return custom_error.WrapDBError("failed to update asset "+t.Before.AssetNumber, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("asset %s: %w", t.Before.AssetNumber, custom_error.ErrConflict)
	}

	return nil
}

// InsertAsset creates a row inside tx and returns its id.
func (r *AssetsRepository) InsertAsset(ctx context.Context, tx *goqu.TxDatabase, asset models.Asset) (int, error) {
	var id int
	_, err := tx.Insert("assets").
		Rows(assetRecord(asset)).
		Returning("asset_id").
		Executor().
		ScanValContext(ctx, &id)
	if err != nil {
		return 0, custom_error.WrapDBError("failed to insert asset "+asset.AssetNumber, err)
	}
	return id, nil
}

// OverwriteAsset replaces the registration columns of an existing asset.
func (r *AssetsRepository) OverwriteAsset(ctx context.Context, tx *goqu.TxDatabase, asset models.Asset) error {
	record := assetRecord(asset)
	delete(record, "asset_number")

	_, err := tx.Update("assets").
		Set(record).
		Where(goqu.Ex{"asset_id": asset.ID}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return custom_error.WrapDBError("failed to update asset "+asset.AssetNumber, err)
	}
	return nil
}

func assetRecord(asset models.Asset) goqu.Record {
	record := goqu.Record{
		"asset_number":  asset.AssetNumber,
		"category":      asset.Category,
		"model":         asset.Model,
		"serial_number": asset.SerialNumber,
		"state":         asset.State,
		"in_user":       nullable(asset.InUser),
		"memo":          nullable(asset.Memo),
		"day_of_start":  nil,
		"day_of_end":    nil,
		"unit_price":    nil,
	}
	if asset.DayOfStart != nil {
		record["day_of_start"] = *asset.DayOfStart
	}
	if asset.DayOfEnd != nil {
		record["day_of_end"] = *asset.DayOfEnd
	}
	if asset.DayOfStart != nil && asset.DayOfEnd != nil {
		record["contract_month"] = models.ContractMonths(*asset.DayOfStart, *asset.DayOfEnd)
	}
	if asset.UnitPrice.Valid {
		record["unit_price"] = asset.UnitPrice.Decimal
	}
	return record
}

func (r *AssetsRepository) fetchOne(ctx context.Context, condition goqu.Expression) (*models.AssetView, error) {
	ds := r.baseQuery(r.repository.GoquDBWrapper.From(goqu.T("assets").As("a"))).Where(condition)

	var asset models.AssetView
	found, err := ds.ScanStructContext(ctx, &asset)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("unable to select asset from database: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("자산을 찾을 수 없습니다: %w", custom_error.ErrNotFound)
	}

	return &asset, nil
}

func (r *AssetsRepository) baseQuery(ds *goqu.SelectDataset) *goqu.SelectDataset {
	columns := append(assetColumns(),
		goqu.COALESCE(goqu.I("u.name"), "").As("user_name"),
		goqu.COALESCE(goqu.I("u.part"), "").As("user_part"),
	)

	return ds.Select(columns...).
		LeftJoin(
			goqu.T("users").As("u"),
			goqu.On(goqu.Ex{"a.in_user": goqu.I("u.cj_id")}),
		)
}

func assetColumns() []interface{} {
	return []interface{}{
		goqu.I("a.asset_id"),
		goqu.I("a.asset_number"),
		goqu.COALESCE(goqu.I("a.category"), "").As("category"),
		goqu.COALESCE(goqu.I("a.model"), "").As("model"),
		goqu.COALESCE(goqu.I("a.serial_number"), "").As("serial_number"),
		goqu.COALESCE(goqu.I("a.state"), "").As("state"),
		goqu.COALESCE(goqu.I("a.in_user"), "").As("in_user"),
		goqu.I("a.day_of_start"),
		goqu.I("a.day_of_end"),
		goqu.I("a.unit_price"),
		goqu.I("a.contract_month"),
		goqu.COALESCE(goqu.I("a.replacement"), "").As("replacement"),
		goqu.COALESCE(goqu.I("a.memo"), "").As("memo"),
	}
}

func setString(record goqu.Record, column string, value *string) {
	if value != nil {
		record[column] = *value
	}
}

func nullable(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

// ListAll returns every asset without filters.
func (r *AssetsRepository) ListAll(ctx context.Context) ([]models.AssetView, error) {
	return r.List(ctx, nil, "")
}
