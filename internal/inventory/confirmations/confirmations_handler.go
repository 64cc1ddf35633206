package confirmations

import (
	"context"
	"net/http"

	"assetdb/pkg/models"
	"assetdb/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ConfirmationStore interface {
	ListAssets(ctx context.Context) ([]models.ConfirmedAsset, error)
	Latest(ctx context.Context, assetNumber string) (*models.ConfirmedAsset, error)
	ConfirmAsset(ctx context.Context, assetNumber, cjID string) error
	UnconfirmAsset(ctx context.Context, assetNumber, cjID string) (int64, error)
	DeleteAssetConfirmations(ctx context.Context, assetNumber string) (int64, error)
	ListReplacements(ctx context.Context) ([]models.ConfirmedReplacement, error)
	ConfirmReplacement(ctx context.Context, assetNumber string) error
	UnconfirmReplacement(ctx context.Context, assetNumber string) (int64, error)
}

type ConfirmationHandler struct {
	store ConfirmationStore
	log   *zap.Logger
}

func NewHandler(store ConfirmationStore, log *zap.Logger) *ConfirmationHandler {
	return &ConfirmationHandler{store: store, log: log}
}

func (h *ConfirmationHandler) RegisterRoutes(router *gin.RouterGroup) {
	assets := router.Group("/confirmed-assets")
	assets.GET("", h.GetConfirmedAssets)
	assets.GET("/:asset_number", h.GetLatestConfirmation)
	assets.POST("", h.ConfirmAsset)
	assets.DELETE("/:asset_number/:cj_id", h.UnconfirmAsset)
	assets.DELETE("/:asset_number", h.DeleteAssetConfirmations)

	replacements := router.Group("/confirmed-replacements")
	replacements.GET("", h.GetConfirmedReplacements)
	replacements.POST("", h.ConfirmReplacement)
	replacements.DELETE("/:asset_number", h.UnconfirmReplacement)
}

func (h *ConfirmationHandler) GetConfirmedAssets(c *gin.Context) {
	confirmed, err := h.store.ListAssets(c.Request.Context())
	if err != nil {
		h.fail(c, "failed to list confirmed assets", err)
		return
	}
	response.OK(c, confirmed)
}

// GetLatestConfirmation answers data: null when the asset was never confirmed.
func (h *ConfirmationHandler) GetLatestConfirmation(c *gin.Context) {
	confirmed, err := h.store.Latest(c.Request.Context(), c.Param("asset_number"))
	if err != nil {
		h.fail(c, "failed to read confirmation", err)
		return
	}
	if confirmed == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": nil})
		return
	}
	response.OK(c, confirmed)
}

func (h *ConfirmationHandler) ConfirmAsset(c *gin.Context) {
	var req struct {
		AssetNumber string `json:"asset_number" binding:"required"`
		CjID        string `json:"cj_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "asset_number와 cj_id가 필요합니다.")
		return
	}

	if err := h.store.ConfirmAsset(c.Request.Context(), req.AssetNumber, req.CjID); err != nil {
		h.fail(c, "failed to confirm asset", err)
		return
	}
	response.Message(c, "자산이 확인되었습니다.", nil)
}

func (h *ConfirmationHandler) UnconfirmAsset(c *gin.Context) {
	deleted, err := h.store.UnconfirmAsset(c.Request.Context(), c.Param("asset_number"), c.Param("cj_id"))
	if err != nil {
		h.fail(c, "failed to unconfirm asset", err)
		return
	}
	response.Message(c, "자산 확인이 취소되었습니다.", gin.H{"deleted": deleted})
}

func (h *ConfirmationHandler) DeleteAssetConfirmations(c *gin.Context) {
	deleted, err := h.store.DeleteAssetConfirmations(c.Request.Context(), c.Param("asset_number"))
	if err != nil {
		h.fail(c, "failed to delete asset confirmations", err)
		return
	}
	response.Message(c, "자산 모든 확인이 삭제되었습니다.", gin.H{"deleted": deleted})
}

func (h *ConfirmationHandler) GetConfirmedReplacements(c *gin.Context) {
	confirmed, err := h.store.ListReplacements(c.Request.Context())
	if err != nil {
		h.fail(c, "failed to list confirmed replacements", err)
		return
	}
	response.OK(c, confirmed)
}

func (h *ConfirmationHandler) ConfirmReplacement(c *gin.Context) {
	var req struct {
		AssetNumber string `json:"asset_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "asset_number가 필요합니다.")
		return
	}

	if err := h.store.ConfirmReplacement(c.Request.Context(), req.AssetNumber); err != nil {
		h.fail(c, "failed to confirm replacement", err)
		return
	}
	response.Message(c, "교체 자산이 확인되었습니다.", nil)
}

func (h *ConfirmationHandler) UnconfirmReplacement(c *gin.Context) {
	deleted, err := h.store.UnconfirmReplacement(c.Request.Context(), c.Param("asset_number"))
	if err != nil {
		h.fail(c, "failed to unconfirm replacement", err)
		return
	}
	response.Message(c, "교체 확인이 취소되었습니다.", gin.H{"deleted": deleted})
}

func (h *ConfirmationHandler) fail(c *gin.Context, msg string, err error) {
	h.log.Error(msg, zap.Error(err))
	response.FromError(c, err)
}
