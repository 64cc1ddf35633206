package returns

import (
	"context"
	"net/http"
	"strconv"

	"assetdb/pkg/auditlog"
	custom_error "assetdb/pkg/errors"
	"assetdb/pkg/models"
	"assetdb/pkg/response"
	"assetdb/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReturnStore interface {
	List(ctx context.Context) ([]models.ReturnedAsset, error)
	Create(ctx context.Context, req models.ReturnedAssetRequest) (*models.ReturnedAsset, error)
	Update(ctx context.Context, id int, upd models.ReturnedAssetUpdate) (*models.ReturnedAsset, error)
	Cancel(ctx context.Context, id int) (*models.ReturnedAsset, error)
	Delete(ctx context.Context, id int) (*models.ReturnedAsset, error)
}

type ReturnHandler struct {
	store    ReturnStore
	auditLog *auditlog.Auditlog
	log      *zap.Logger
}

func NewHandler(store ReturnStore, auditLog *auditlog.Auditlog, log *zap.Logger) *ReturnHandler {
	return &ReturnHandler{
		store:    store,
		auditLog: auditLog,
		log:      log,
	}
}

func (h *ReturnHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/returned-assets")
	group.GET("", h.GetReturns)
	group.POST("", h.CreateReturn)
	group.PUT("/:id", h.UpdateReturn)
	group.POST("/cancel/:id", h.CancelReturn)
	group.DELETE("/:id", h.DeleteReturn)
}

func (h *ReturnHandler) GetReturns(c *gin.Context) {
	returned, err := h.store.List(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list returned assets", zap.Error(err))
		response.FromError(c, err)
		return
	}

	response.OK(c, returned)
}

func (h *ReturnHandler) CreateReturn(c *gin.Context) {
	var req models.ReturnedAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "자산번호는 필수입니다.")
		return
	}

	returned, err := h.store.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, "failed to create returned asset", err)
		return
	}

	go h.auditLog.Log(
		"create",
		security.GetUserIDFromContext(c),
		map[string]interface{}{
			"asset_number": returned.AssetNumber,
			"user_id":      returned.UserID,
			"return_type":  returned.ReturnType,
		},
		returned,
	)

	response.Success(c, http.StatusCreated, returned)
}

func (h *ReturnHandler) UpdateReturn(c *gin.Context) {
	id, ok := returnID(c)
	if !ok {
		return
	}

	var req models.ReturnedAssetUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "잘못된 요청 형식입니다.")
		return
	}

	returned, err := h.store.Update(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, "failed to update returned asset", err)
		return
	}

	go h.auditLog.Log(
		"update",
		security.GetUserIDFromContext(c),
		map[string]interface{}{"asset_number": returned.AssetNumber, "complete": returned.Complete},
		returned,
	)

	response.Message(c, "반납 자산 정보가 수정되었습니다.", returned)
}

func (h *ReturnHandler) CancelReturn(c *gin.Context) {
	id, ok := returnID(c)
	if !ok {
		return
	}

	cancelled, err := h.store.Cancel(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "failed to cancel return", err)
		return
	}

	go h.auditLog.Log(
		"cancel",
		security.GetUserIDFromContext(c),
		map[string]interface{}{"asset_number": cancelled.AssetNumber},
		cancelled,
	)

	response.Message(c, "반납 처리가 취소되었습니다.", nil)
}

func (h *ReturnHandler) DeleteReturn(c *gin.Context) {
	id, ok := returnID(c)
	if !ok {
		return
	}

	deleted, err := h.store.Delete(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "failed to delete returned asset", err)
		return
	}

	go h.auditLog.Log(
		"delete",
		security.GetUserIDFromContext(c),
		map[string]interface{}{"asset_number": deleted.AssetNumber},
		deleted,
	)

	response.Message(c, "반납 자산이 삭제되었습니다.", nil)
}

func (h *ReturnHandler) respondError(c *gin.Context, msg string, err error) {
	if !custom_error.IsValidation(err) {
		h.log.Error(msg, zap.Error(err))
	}
	response.FromError(c, err)
}

func returnID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "유효하지 않은 반납 ID입니다.")
		return 0, false
	}
	return id, true
}
