package trades

import (
	"context"
	"net/http"
	"strconv"

	"assetdb/internal/worktypes"
	custom_error "assetdb/pkg/errors"
	"assetdb/pkg/models"
	"assetdb/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TradeStore interface {
	List(ctx context.Context) ([]models.TradeView, error)
	Get(ctx context.Context, id int) (*models.TradeView, error)
	Update(ctx context.Context, id int, upd models.TradeUpdate) (*models.TradeView, error)
	AssetHistory(ctx context.Context, assetNumber string) ([]models.HistoryEntry, error)
	CurrentHolders(ctx context.Context, workTypes []string) ([]models.CurrentHolder, error)
}

type Registrar interface {
	Register(ctx context.Context, requests []models.TradeRequest) ([]models.Trade, error)
}

type TradeHandler struct {
	store     TradeStore
	service   Registrar
	catalogue *worktypes.Catalogue
	log       *zap.Logger
}

func NewHandler(store TradeStore, service Registrar, catalogue *worktypes.Catalogue, log *zap.Logger) *TradeHandler {
	return &TradeHandler{
		store:     store,
		service:   service,
		catalogue: catalogue,
		log:       log,
	}
}

func (h *TradeHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/work-types", h.GetWorkTypes)
	router.GET("/trades", h.GetTrades)
	router.GET("/trades/history/:asset_number", h.GetAssetHistory)
	router.GET("/trades/current-holders", h.GetCurrentHolders)
	router.GET("/trades/:id", h.GetTrade)
	router.PUT("/trades/:id", h.UpdateTrade)
	router.POST("/trades", h.RegisterTrades)

	// paths used by older frontend builds
	router.GET("/asset-logs", h.GetAssetHistory)
	router.GET("/asset-logs/currentUsers", h.GetCurrentHolders)
}

func (h *TradeHandler) GetWorkTypes(c *gin.Context) {
	response.OK(c, h.catalogue.All())
}

func (h *TradeHandler) GetTrades(c *gin.Context) {
	trades, err := h.store.List(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list trades", zap.Error(err))
		response.FromError(c, err)
		return
	}

	response.OK(c, trades)
}

func (h *TradeHandler) GetTrade(c *gin.Context) {
	id, ok := tradeID(c)
	if !ok {
		return
	}

	trade, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, trade)
}

func (h *TradeHandler) UpdateTrade(c *gin.Context) {
	id, ok := tradeID(c)
	if !ok {
		return
	}

	var req models.TradeUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "잘못된 요청 형식입니다.")
		return
	}
	if !req.HasChanges() {
		response.Error(c, http.StatusBadRequest, "수정할 데이터가 없습니다.")
		return
	}

	trade, err := h.store.Update(c.Request.Context(), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Message(c, "거래 정보가 수정되었습니다.", trade)
}

func (h *TradeHandler) RegisterTrades(c *gin.Context) {
	var requests []models.TradeRequest
	if err := c.ShouldBindJSON(&requests); err != nil {
		response.Error(c, http.StatusBadRequest, "거래 목록은 배열 형식이어야 하며 작업 유형과 자산번호가 필요합니다.")
		return
	}

	created, err := h.service.Register(c.Request.Context(), requests)
	if err != nil {
		if !custom_error.IsValidation(err) {
			h.log.Error("failed to register trades", zap.Error(err))
		}
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, created)
}

// GetAssetHistory serves both /trades/history/:asset_number and the
// asset_id query parameter of /asset-logs.
func (h *TradeHandler) GetAssetHistory(c *gin.Context) {
	assetNumber := c.Param("asset_number")
	if assetNumber == "" {
		assetNumber = c.Query("asset_id")
	}
	if assetNumber == "" {
		response.Error(c, http.StatusBadRequest, "자산ID가 필요합니다.")
		return
	}

	history, err := h.store.AssetHistory(c.Request.Context(), assetNumber)
	if err != nil {
		h.log.Error("failed to read asset history", zap.String("asset_number", assetNumber), zap.Error(err))
		response.FromError(c, err)
		return
	}

	response.OK(c, history)
}

func (h *TradeHandler) GetCurrentHolders(c *gin.Context) {
	holders, err := h.store.CurrentHolders(c.Request.Context(), h.catalogue.HolderChanging())
	if err != nil {
		h.log.Error("failed to read current holders", zap.Error(err))
		response.FromError(c, err)
		return
	}

	response.OK(c, holders)
}

func tradeID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "유효하지 않은 거래 ID입니다.")
		return 0, false
	}
	return id, true
}
