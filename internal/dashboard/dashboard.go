// Package dashboard serves the summary counters shown on the landing page.
package dashboard

import (
	"context"
	"fmt"

	"assetdb/internal/repository"
	"assetdb/pkg/models"
	"assetdb/pkg/response"

	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const recentTradeCount = 5

type GroupCount struct {
	Key   string `json:"key" db:"key"`
	Count int    `json:"count" db:"count"`
}

type RecentTrade struct {
	models.Trade
	Model    string `json:"model" db:"model"`
	Category string `json:"category" db:"category"`
}

type Summary struct {
	TotalAssets   int           `json:"total_assets"`
	TotalUsers    int           `json:"total_users"`
	StateStats    []GroupCount  `json:"state_stats"`
	CategoryStats []GroupCount  `json:"category_stats"`
	RecentTrades  []RecentTrade `json:"recent_trades"`
}

type Reader interface {
	Summary(ctx context.Context) (*Summary, error)
}

type DashboardRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *DashboardRepository {
	return &DashboardRepository{repository: r}
}

// Summary runs the independent counters concurrently.
func (r *DashboardRepository) Summary(ctx context.Context) (*Summary, error) {
	db := r.repository.GoquDBWrapper
	summary := &Summary{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := db.From("assets").CountContext(ctx)
		summary.TotalAssets = int(count)
		return err
	})
	g.Go(func() error {
		count, err := db.From("users").CountContext(ctx)
		summary.TotalUsers = int(count)
		return err
	})
	g.Go(func() error {
		var err error
		summary.StateStats, err = r.groupCount(ctx, "state")
		return err
	})
	g.Go(func() error {
		var err error
		summary.CategoryStats, err = r.groupCount(ctx, "category")
		return err
	})
	g.Go(func() error {
		summary.RecentTrades = []RecentTrade{}
		return db.From(goqu.T("trade").As("t")).
			LeftJoin(goqu.T("assets").As("a"), goqu.On(goqu.I("t.asset_number").Eq(goqu.I("a.asset_number")))).
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
				goqu.COALESCE(goqu.I("a.category"), "").As("category"),
			).
			Order(goqu.I("t.trade_id").Desc()).
			Limit(recentTradeCount).
			ScanStructsContext(ctx, &summary.RecentTrades)
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	return summary, nil
}

func (r *DashboardRepository) groupCount(ctx context.Context, column string) ([]GroupCount, error) {
	counts := []GroupCount{}
	err := r.repository.GoquDBWrapper.From("assets").
		Select(goqu.COALESCE(goqu.I(column), "").As("key"), goqu.COUNT(goqu.Star()).As("count")).
		GroupBy(goqu.I(column)).
		Order(goqu.C("count").Desc()).
		ScanStructsContext(ctx, &counts)
	return counts, err
}

type Handler struct {
	reader Reader
	log    *zap.Logger
}

func NewHandler(reader Reader, log *zap.Logger) *Handler {
	return &Handler{reader: reader, log: log}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", h.GetDashboard)
}

func (h *Handler) GetDashboard(c *gin.Context) {
	summary, err := h.reader.Summary(c.Request.Context())
	if err != nil {
		h.log.Error("failed to build dashboard", zap.Error(err))
		response.FromError(c, err)
		return
	}
	response.OK(c, summary)
}
