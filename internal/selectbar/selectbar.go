// Package selectbar backs the autocomplete inputs of the frontend.
package selectbar

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"assetdb/internal/repository"
	"assetdb/internal/search"
	"assetdb/pkg/response"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const resultLimit = 500

// columns lists what each table may be searched and ordered by.
var columns = map[string][]string{
	"users":  {"user_id", "cj_id", "name", "part", "state"},
	"assets": {"asset_id", "asset_number", "category", "model", "serial_number", "state", "in_user", "replacement"},
	"trade":  {"trade_id", "work_type", "asset_number", "cj_id", "ex_user", "memo"},
}

// companions are extra columns matched alongside the requested one.
var companions = map[string]map[string][]string{
	"users":  {"cj_id": {"name"}},
	"assets": {"asset_id": {"model", "category"}},
}

type Request struct {
	Query  string
	Table  string
	Column string
}

// Validate applies the defaults and rejects tables or columns outside the whitelist.
func (r *Request) Validate() error {
	if r.Table == "" {
		r.Table = "users"
	}
	allowed, ok := columns[r.Table]
	if !ok {
		return fmt.Errorf("유효하지 않은 테이블명: %s", r.Table)
	}
	if r.Column == "" {
		r.Column = allowed[0]
	}
	if !slices.Contains(allowed, r.Column) {
		return fmt.Errorf("유효하지 않은 컬럼명: %s", r.Column)
	}
	return nil
}

// Condition matches the query as a substring of the column and its companions.
func (r *Request) Condition() exp.Expression {
	query := strings.TrimSpace(r.Query)
	if query == "" {
		return nil
	}
	pattern := search.ContainsPattern(query)
	matches := []exp.Expression{goqu.Cast(goqu.I(r.Column), "TEXT").ILike(pattern)}
	for _, extra := range companions[r.Table][r.Column] {
		matches = append(matches, goqu.I(extra).ILike(pattern))
	}
	return goqu.Or(matches...)
}

type Searcher interface {
	Search(ctx context.Context, req Request) ([]map[string]interface{}, error)
}

type SelectBarRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *SelectBarRepository {
	return &SelectBarRepository{repository: r}
}

func (s *SelectBarRepository) Search(ctx context.Context, req Request) ([]map[string]interface{}, error) {
	query := s.repository.GoquDBWrapper.From(req.Table).
		Select(selectColumns(req.Table)...).
		Order(goqu.Cast(goqu.I(req.Column), "TEXT").Asc()).
		Limit(resultLimit)
	if cond := req.Condition(); cond != nil {
		query = query.Where(cond)
	}

	sql, args, err := query.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build select bar query: %w", err)
	}

	rows, err := s.repository.DB.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", req.Table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, len(names))
		pointers := make([]interface{}, len(names))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", req.Table, err)
		}

		row := make(map[string]interface{}, len(names))
		for i, name := range names {
			if b, ok := values[i].([]byte); ok {
				row[name] = string(b)
			} else {
				row[name] = values[i]
			}
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

func selectColumns(table string) []interface{} {
	selected := make([]interface{}, 0, len(columns[table]))
	for _, column := range columns[table] {
		selected = append(selected, column)
	}
	return selected
}

type Handler struct {
	searcher Searcher
	log      *zap.Logger
}

func NewHandler(searcher Searcher, log *zap.Logger) *Handler {
	return &Handler{searcher: searcher, log: log}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/selectBar", h.Search)
}

func (h *Handler) Search(c *gin.Context) {
	req := Request{
		Query:  c.Query("query"),
		Table:  c.Query("table"),
		Column: c.Query("column"),
	}
	if err := req.Validate(); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.searcher.Search(c.Request.Context(), req)
	if err != nil {
		h.log.Error("select bar search failed", zap.String("table", req.Table), zap.Error(err))
		response.FromError(c, err)
		return
	}
	response.OK(c, rows)
}
