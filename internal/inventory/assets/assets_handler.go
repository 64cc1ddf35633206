package assets

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"assetdb/internal/export"
	"assetdb/internal/repository"
	"assetdb/internal/worktypes"
	"assetdb/pkg/auditlog"
	custom_error "assetdb/pkg/errors"
	"assetdb/pkg/models"
	"assetdb/pkg/response"
	"assetdb/pkg/roles"
	"assetdb/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AssetStore interface {
	List(ctx context.Context, conditions repository.QueryBuilder, query string) ([]models.AssetView, error)
	ListReplacements(ctx context.Context) ([]models.ReplacementView, error)
	Get(ctx context.Context, id int) (*models.AssetView, error)
	GetByNumber(ctx context.Context, assetNumber string) (*models.AssetView, error)
	Update(ctx context.Context, id int, upd models.AssetUpdate) (*models.AssetView, error)
}

type BulkRegistrar interface {
	BulkRegister(ctx context.Context, req models.BulkAssetRequest, actor string) (*models.BulkAssetResult, error)
}

type AuditReader interface {
	GetResourceLog(ctx context.Context, resourceID int, resourceType string) ([]models.AuditLog, error)
}

type AssetHandler struct {
	store     AssetStore
	bulk      BulkRegistrar
	catalogue *worktypes.Catalogue
	audit     AuditReader
	auditLog  *auditlog.Auditlog
	log       *zap.Logger
}

func NewAssetHandler(store AssetStore, bulk BulkRegistrar, catalogue *worktypes.Catalogue, audit AuditReader, auditLog *auditlog.Auditlog, log *zap.Logger) *AssetHandler {
	return &AssetHandler{
		store:     store,
		bulk:      bulk,
		catalogue: catalogue,
		audit:     audit,
		auditLog:  auditLog,
		log:       log,
	}
}

func (h *AssetHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/assets", h.GetAssets)
	router.GET("/assets/export", h.ExportAssets)
	router.GET("/assets/number/:asset_number", h.GetAssetByNumber)
	router.GET("/assets/:id", h.GetAsset)
	router.GET("/assets/:id/work-types", h.GetAvailableWorkTypes)
	router.GET("/assets/:id/audit", h.GetAssetAudit)
	router.PUT("/assets/:id", h.UpdateAsset)
	router.POST("/assets/bulk", security.Authorize(roles.Admin), h.BulkRegister)
}

func (h *AssetHandler) GetAssets(c *gin.Context) {
	if c.Query("only_replacements") == "true" {
		replacements, err := h.store.ListReplacements(c.Request.Context())
		if err != nil {
			h.log.Error("failed to list replacements", zap.Error(err))
			response.FromError(c, err)
			return
		}
		response.OK(c, replacements)
		return
	}

	assets, err := h.store.List(c.Request.Context(), listConditions(c), c.Query("q"))
	if err != nil {
		if !custom_error.IsValidation(err) {
			h.log.Error("failed to list assets", zap.Error(err))
		}
		response.FromError(c, err)
		return
	}

	response.OK(c, assets)
}

func (h *AssetHandler) GetAsset(c *gin.Context) {
	id, ok := assetID(c)
	if !ok {
		return
	}

	asset, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, asset)
}

func (h *AssetHandler) GetAssetByNumber(c *gin.Context) {
	asset, err := h.store.GetByNumber(c.Request.Context(), c.Param("asset_number"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, asset)
}

func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	id, ok := assetID(c)
	if !ok {
		return
	}

	var req models.AssetUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "자산번호는 필수입니다.")
		return
	}

	asset, err := h.store.Update(c.Request.Context(), id, req)
	if err != nil {
		if !custom_error.IsValidation(err) {
			h.log.Error("failed to update asset", zap.Int("asset_id", id), zap.Error(err))
		}
		response.FromError(c, err)
		return
	}

	go h.auditLog.Log(
		"update",
		security.GetUserIDFromContext(c),
		map[string]interface{}{
			"asset_number": asset.AssetNumber,
			"state":        asset.State,
			"in_user":      asset.InUser,
		},
		&asset.Asset,
	)

	response.Message(c, "자산 정보가 수정되었습니다.", asset)
}

func (h *AssetHandler) GetAvailableWorkTypes(c *gin.Context) {
	id, ok := assetID(c)
	if !ok {
		return
	}

	asset, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, h.catalogue.AvailableFor(asset.State, asset.InUser))
}

func (h *AssetHandler) GetAssetAudit(c *gin.Context) {
	id, ok := assetID(c)
	if !ok {
		return
	}

	entries, err := h.audit.GetResourceLog(c.Request.Context(), id, "asset")
	if err != nil {
		h.log.Error("failed to read asset audit log", zap.Int("asset_id", id), zap.Error(err))
		response.FromError(c, err)
		return
	}

	response.OK(c, entries)
}

func (h *AssetHandler) BulkRegister(c *gin.Context) {
	var req models.BulkAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "등록할 자산 목록이 필요합니다.")
		return
	}

	result, err := h.bulk.BulkRegister(c.Request.Context(), req, security.GetUserIDFromContext(c))
	if err != nil {
		if !custom_error.IsValidation(err) {
			h.log.Error("bulk registration failed", zap.Error(err))
		}
		response.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": result.Message,
		"data":    result,
	})
}

// ExportAssets streams the filtered listing as CSV.
func (h *AssetHandler) ExportAssets(c *gin.Context) {
	assets, err := h.store.List(c.Request.Context(), listConditions(c), c.Query("q"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	filename := fmt.Sprintf("assets_%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	if err := export.WriteCSV(c.Writer, export.AssetTable(assets)); err != nil {
		h.log.Error("failed to write asset export", zap.Error(err))
	}
}

func listConditions(c *gin.Context) repository.QueryBuilder {
	conditions := repository.NewQueryBuilder()
	conditions.AddCondition("state", c.Query("state"))
	conditions.AddCondition("category", c.Query("category"))
	conditions.AddCondition("in_user", c.Query("in_user"))
	return conditions
}

func assetID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "유효하지 않은 자산 ID입니다.")
		return 0, false
	}
	return id, true
}
