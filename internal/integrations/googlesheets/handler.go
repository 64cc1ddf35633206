package googlesheets

import (
	"net/http"

	"assetdb/pkg/response"
	"assetdb/pkg/roles"
	"assetdb/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BackupHandler struct {
	runner   Runner
	settings BackupSettings
	log      *zap.Logger
}

func NewBackupHandler(runner Runner, settings BackupSettings, log *zap.Logger) *BackupHandler {
	return &BackupHandler{runner: runner, settings: settings, log: log}
}

func (h *BackupHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/backup")
	group.GET("/status", h.GetStatus)
	group.GET("/config", h.GetConfig)
	group.POST("/config", security.Authorize(roles.Admin), h.SaveConfig)
	group.POST("/manual", security.Authorize(roles.Admin), h.RunManual)
}

func (h *BackupHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.runner.Status(c.Request.Context()))
}

func (h *BackupHandler) GetConfig(c *gin.Context) {
	enabled, err := h.settings.AutoBackupEnabled(c.Request.Context())
	if err != nil {
		h.log.Error("failed to read backup config", zap.Error(err))
		response.FromError(c, err)
		return
	}

	response.OK(c, gin.H{"auto_backup_enabled": enabled})
}

func (h *BackupHandler) SaveConfig(c *gin.Context) {
	var req struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "enabled 값이 필요합니다.")
		return
	}

	if err := h.settings.SetAutoBackup(c.Request.Context(), *req.Enabled); err != nil {
		h.log.Error("failed to save backup config", zap.Error(err))
		response.FromError(c, err)
		return
	}

	response.Message(c, "설정이 저장되었습니다.", gin.H{"auto_backup_enabled": *req.Enabled})
}

func (h *BackupHandler) RunManual(c *gin.Context) {
	result, err := h.runner.Run(c.Request.Context())
	if err != nil {
		if authErr, ok := AsAuthError(err); ok {
			response.ErrorWithCode(c, http.StatusUnauthorized, authErr.Message, authErr.Code)
			return
		}
		h.log.Error("manual backup failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "백업 중 오류가 발생했습니다.")
		return
	}

	response.Message(c, "백업이 완료되었습니다.", result)
}
