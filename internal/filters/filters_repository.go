package filters

import (
	"context"
	"encoding/json"
	"fmt"

	"assetdb/internal/repository"
	custom_error "assetdb/pkg/errors"
	"assetdb/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type FiltersRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *FiltersRepository {
	return &FiltersRepository{repository: r}
}

// List returns the filters of one page, or every filter when page is empty.
func (r *FiltersRepository) List(ctx context.Context, page string) ([]models.SavedFilter, error) {
	query := r.repository.GoquDBWrapper.From("saved_filters").
		Order(goqu.I("sort_order").Asc(), goqu.I("created_at").Desc())
	if page != "" {
		query = query.Where(goqu.Ex{"page_context": page})
	}

	filters := []models.SavedFilter{}
	if err := query.ScanStructsContext(ctx, &filters); err != nil {
		return nil, fmt.Errorf("failed to list saved filters: %w", err)
	}
	return filters, nil
}

func (r *FiltersRepository) Get(ctx context.Context, id int) (*models.SavedFilter, error) {
	var filter models.SavedFilter
	found, err := r.repository.GoquDBWrapper.From("saved_filters").
		Where(goqu.Ex{"id": id}).
		ScanStructContext(ctx, &filter)
	if err != nil {
		return nil, fmt.Errorf("failed to read saved filter %d: %w", id, err)
	}
	if !found {
		return nil, fmt.Errorf("필터를 찾을 수 없습니다: %w", custom_error.ErrNotFound)
	}
	return &filter, nil
}

func (r *FiltersRepository) Create(ctx context.Context, req models.SavedFilterRequest) (*models.SavedFilter, error) {
	var id int
	_, err := r.repository.GoquDBWrapper.Insert("saved_filters").
		Rows(goqu.Record{
			"name":         req.Name,
			"page_context": req.PageContext,
			"filter_data":  string(req.FilterData),
		}).
		Returning("id").
		Executor().
		ScanValContext(ctx, &id)
	if err != nil {
		return nil, custom_error.WrapDBError("failed to insert saved filter", err)
	}

	return r.Get(ctx, id)
}

func (r *FiltersRepository) Patch(ctx context.Context, id int, patch models.SavedFilterPatch) error {
	record := goqu.Record{}
	if patch.Name != nil {
		record["name"] = *patch.Name
	}
	if patch.SortOrder != nil {
		record["sort_order"] = *patch.SortOrder
	}
	if len(patch.FilterData) > 0 {
		record["filter_data"] = string(normalizeFilterData(patch.FilterData))
	}

	res, err := r.repository.GoquDBWrapper.Update("saved_filters").
		Set(record).
		Where(goqu.Ex{"id": id}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return custom_error.WrapDBError("failed to update saved filter", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("필터를 찾을 수 없습니다: %w", custom_error.ErrNotFound)
	}
	return nil
}

func (r *FiltersRepository) Reorder(ctx context.Context, orders []models.FilterOrder) error {
	return repository.WithTransaction(ctx, r.repository.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		for _, order := range orders {
			_, err := tx.Update("saved_filters").
				Set(goqu.Record{"sort_order": order.SortOrder}).
				Where(goqu.Ex{"id": order.ID}).
				Executor().
				ExecContext(ctx)
			if err != nil {
				return fmt.Errorf("failed to reorder filter %d: %w", order.ID, err)
			}
		}
		return nil
	})
}

func (r *FiltersRepository) Delete(ctx context.Context, id int) error {
	res, err := r.repository.GoquDBWrapper.Delete("saved_filters").
		Where(goqu.Ex{"id": id}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete saved filter %d: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("필터를 찾을 수 없거나 삭제에 실패했습니다: %w", custom_error.ErrNotFound)
	}
	return nil
}

// normalizeFilterData accepts filter_data sent either as an object or as a
// JSON-encoded string of one.
func normalizeFilterData(raw json.RawMessage) json.RawMessage {
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil && json.Valid([]byte(encoded)) {
		return json.RawMessage(encoded)
	}
	return raw
}

// IsProtected reports whether the filter is one of the seeded defaults.
func IsProtected(filter *models.SavedFilter) bool {
	var data struct {
		IsProtected bool `json:"is_protected"`
	}
	if err := json.Unmarshal(filter.FilterData, &data); err != nil {
		return false
	}
	return data.IsProtected
}
