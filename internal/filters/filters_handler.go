package filters

import (
	"context"
	"net/http"
	"strconv"

	"assetdb/pkg/models"
	"assetdb/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FilterStore interface {
	List(ctx context.Context, page string) ([]models.SavedFilter, error)
	Get(ctx context.Context, id int) (*models.SavedFilter, error)
	Create(ctx context.Context, req models.SavedFilterRequest) (*models.SavedFilter, error)
	Patch(ctx context.Context, id int, patch models.SavedFilterPatch) error
	Reorder(ctx context.Context, orders []models.FilterOrder) error
	Delete(ctx context.Context, id int) error
}

type FilterHandler struct {
	store FilterStore
	log   *zap.Logger
}

func NewHandler(store FilterStore, log *zap.Logger) *FilterHandler {
	return &FilterHandler{store: store, log: log}
}

func (h *FilterHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/filters")
	group.GET("", h.GetFilters)
	group.POST("", h.CreateFilter)
	group.PUT("/reorder", h.ReorderFilters)
	group.PATCH("/:id", h.PatchFilter)
	group.DELETE("/:id", h.DeleteFilter)
}

func (h *FilterHandler) GetFilters(c *gin.Context) {
	filters, err := h.store.List(c.Request.Context(), c.Query("page"))
	if err != nil {
		h.log.Error("failed to list filters", zap.Error(err))
		response.FromError(c, err)
		return
	}
	response.OK(c, filters)
}

func (h *FilterHandler) CreateFilter(c *gin.Context) {
	var req models.SavedFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.FilterData) == 0 || string(req.FilterData) == "null" {
		response.Error(c, http.StatusBadRequest, "필수 필드가 누락되었습니다.")
		return
	}
	req.FilterData = normalizeFilterData(req.FilterData)

	filter, err := h.store.Create(c.Request.Context(), req)
	if err != nil {
		h.log.Error("failed to create filter", zap.Error(err))
		response.FromError(c, err)
		return
	}
	response.OK(c, filter)
}

func (h *FilterHandler) PatchFilter(c *gin.Context) {
	id, ok := filterID(c)
	if !ok {
		return
	}

	var patch models.SavedFilterPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, http.StatusBadRequest, "잘못된 형식의 데이터입니다.")
		return
	}
	if !patch.HasChanges() {
		response.Error(c, http.StatusBadRequest, "수정할 데이터가 없습니다.")
		return
	}

	if err := h.store.Patch(c.Request.Context(), id, patch); err != nil {
		response.FromError(c, err)
		return
	}
	response.Message(c, "필터가 수정되었습니다.", nil)
}

func (h *FilterHandler) ReorderFilters(c *gin.Context) {
	var req struct {
		Orders []models.FilterOrder `json:"orders" binding:"required,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "잘못된 형식의 데이터입니다.")
		return
	}

	if err := h.store.Reorder(c.Request.Context(), req.Orders); err != nil {
		h.log.Error("failed to reorder filters", zap.Error(err))
		response.FromError(c, err)
		return
	}
	response.Message(c, "순서가 저장되었습니다.", nil)
}

func (h *FilterHandler) DeleteFilter(c *gin.Context) {
	id, ok := filterID(c)
	if !ok {
		return
	}

	filter, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if IsProtected(filter) {
		response.Error(c, http.StatusForbidden, "기본 필터는 삭제할 수 없습니다.")
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Message(c, "필터가 삭제되었습니다.", nil)
}

func filterID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "유효하지 않은 필터 ID입니다.")
		return 0, false
	}
	return id, true
}
