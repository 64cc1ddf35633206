package imports

import (
	"context"
	"net/http"

	"assetdb/pkg/auditlog"
	"assetdb/pkg/models"
	"assetdb/pkg/response"
	"assetdb/pkg/roles"
	"assetdb/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Importer interface {
	Import(ctx context.Context, t Target, rows []Row) (*Summary, error)
}

type ImportHandler struct {
	importer Importer
	auditLog *auditlog.Auditlog
	log      *zap.Logger
}

func NewHandler(importer Importer, auditLog *auditlog.Auditlog, log *zap.Logger) *ImportHandler {
	return &ImportHandler{importer: importer, auditLog: auditLog, log: log}
}

func (h *ImportHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/import", security.Authorize(roles.Admin))
	group.POST("/assets", h.handle(Assets))
	group.POST("/users", h.handle(Users))
}

func (h *ImportHandler) handle(t Target) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rows []Row
		if err := c.ShouldBindJSON(&rows); err != nil {
			response.Error(c, http.StatusBadRequest, "처리할 데이터가 없습니다.")
			return
		}

		summary, err := h.importer.Import(c.Request.Context(), t, rows)
		if err != nil {
			h.log.Error("import failed", zap.String("table", t.Table), zap.Error(err))
			response.FromError(c, err)
			return
		}

		go h.auditLog.Log("import", security.GetUserIDFromContext(c), map[string]interface{}{
			"total":    summary.Total,
			"inserted": summary.Inserted,
			"updated":  summary.Updated,
		}, &models.ImportBatch{Table: t.Table})

		response.OK(c, summary)
	}
}
