package users

import (
	"net/http"
	"strconv"
	"strings"

	"assetdb/pkg/auditlog"
	custom_error "assetdb/pkg/errors"
	"assetdb/pkg/models"
	"assetdb/pkg/response"
	"assetdb/pkg/roles"
	"assetdb/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const minPasswordLength = 6

type UsersHandler struct {
	Repository UserRepository
	auditLog   *auditlog.Auditlog
	log        *zap.Logger
	newTempID  func() string
}

func NewHandler(r UserRepository, auditLog *auditlog.Auditlog, log *zap.Logger) *UsersHandler {
	return &UsersHandler{
		Repository: r,
		auditLog:   auditLog,
		log:        log,
		newTempID:  NewTemporaryID,
	}
}

func (h *UsersHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/users", h.GetUserList)
	router.GET("/users/temporary/count", h.GetTemporaryCount)
	router.POST("/users/temporary", h.RegisterTemporaryUser)
	router.GET("/users/:id", h.GetUser)
	router.PUT("/users/:id", h.UpdateUser)
	router.DELETE("/users/:id", security.Authorize(roles.Admin), h.DeleteUser)
	router.PATCH("/users/:id/finalize", h.FinalizeUser)
}

func (h *UsersHandler) GetUserList(c *gin.Context) {
	users, err := h.Repository.GetUsers(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list users", zap.Error(err))
		response.FromError(c, err)
		return
	}

	response.OK(c, users)
}

func (h *UsersHandler) GetUser(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	user, err := h.Repository.GetUser(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	counts, err := h.Repository.GetAssetCounts(c.Request.Context(), user.CjID)
	if err != nil {
		h.log.Error("failed to count user assets", zap.String("cj_id", user.CjID), zap.Error(err))
		response.FromError(c, err)
		return
	}

	response.OK(c, models.UserDetail{User: *user, AssetCounts: counts})
}

func (h *UsersHandler) UpdateUser(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req models.UserUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "잘못된 요청 형식입니다.")
		return
	}

	user, err := h.Repository.GetUser(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	if !h.isAllowed(c, user) {
		response.Error(c, http.StatusForbidden, "권한이 없습니다.")
		return
	}
	if req.SecLevel != nil && !security.IsAllowed(c, roles.Admin) {
		response.Error(c, http.StatusForbidden, "보안 등급은 관리자만 변경할 수 있습니다.")
		return
	}

	changes := &models.UserChanges{
		Name:     req.Name,
		Part:     req.Part,
		State:    req.State,
		SecLevel: req.SecLevel,
	}

	if req.Password != nil && *req.Password != "" {
		if len(*req.Password) < minPasswordLength {
			response.Error(c, http.StatusBadRequest, "비밀번호는 6자 이상이어야 합니다.")
			return
		}
		hashed, err := security.HashPassword(*req.Password)
		if err != nil {
			response.Error(c, http.StatusInternalServerError, "비밀번호 처리에 실패했습니다.")
			return
		}
		changes.PasswordHash = &hashed
	}

	if !changes.HasChanges() {
		response.OK(c, user)
		return
	}

	if err := h.Repository.UpdateUser(c.Request.Context(), userID, changes); err != nil {
		h.log.Error("failed to update user", zap.Int("user_id", userID), zap.Error(err))
		response.FromError(c, err)
		return
	}

	updated, err := h.Repository.GetUser(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	go h.auditLog.Log(
		"update",
		security.GetUserIDFromContext(c),
		map[string]interface{}{
			"cj_id":            updated.CjID,
			"password_changed": changes.PasswordHash != nil,
		},
		updated,
	)

	response.Message(c, "사용자 정보가 수정되었습니다.", updated)
}

func (h *UsersHandler) DeleteUser(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	user, err := h.Repository.GetUser(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	if err := h.Repository.DeleteUser(c.Request.Context(), userID); err != nil {
		if custom_error.IsForeignKeyViolation(err) {
			response.Error(c, http.StatusConflict, "자산을 보유한 사용자는 삭제할 수 없습니다.")
			return
		}
		h.log.Error("failed to delete user", zap.Int("user_id", userID), zap.Error(err))
		response.FromError(c, err)
		return
	}

	go h.auditLog.Log(
		"delete",
		security.GetUserIDFromContext(c),
		map[string]interface{}{"cj_id": user.CjID, "name": user.Name},
		user,
	)

	response.Message(c, "사용자가 삭제되었습니다.", nil)
}

func (h *UsersHandler) GetTemporaryCount(c *gin.Context) {
	count, err := h.Repository.TemporaryCount(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, gin.H{"count": count})
}

func (h *UsersHandler) RegisterTemporaryUser(c *gin.Context) {
	var req models.TemporaryUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		response.Error(c, http.StatusBadRequest, "이름을 입력해주세요.")
		return
	}
	name := strings.TrimSpace(req.Name)
	ctx := c.Request.Context()

	taken, err := h.Repository.TemporaryNameTaken(ctx, name)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if taken {
		response.Error(c, http.StatusConflict, "이미 동일한 이름의 임시 사용자가 존재합니다.")
		return
	}

	cjID, err := h.freeTemporaryID(c)
	if err != nil {
		h.log.Error("failed to allocate temporary id", zap.Error(err))
		response.FromError(c, err)
		return
	}

	user := models.User{CjID: cjID, Name: name, Part: strings.TrimSpace(req.Part), IsTemporary: true}
	user.ID, err = h.Repository.PersistTemporaryUser(ctx, user)
	if err != nil {
		h.log.Error("failed to create temporary user", zap.Error(err))
		response.FromError(c, err)
		return
	}

	go h.auditLog.Log("create", security.GetUserIDFromContext(c), map[string]interface{}{"cj_id": cjID, "name": name}, &user)

	response.Message(c, "임시 사용자가 등록되었습니다.", user)
}

func (h *UsersHandler) FinalizeUser(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req models.FinalizeUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.CjID) == "" {
		response.Error(c, http.StatusBadRequest, "cj_id는 필수입니다.")
		return
	}

	previous, err := h.Repository.GetUser(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	if err := h.Repository.FinalizeUser(c.Request.Context(), userID, req.CjID, req.Part); err != nil {
		if !custom_error.IsValidation(err) {
			h.log.Error("failed to finalize user", zap.Int("user_id", userID), zap.Error(err))
		}
		response.FromError(c, err)
		return
	}

	user, err := h.Repository.GetUser(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	go h.auditLog.Log(
		"finalize",
		security.GetUserIDFromContext(c),
		map[string]interface{}{"from": previous.CjID, "to": user.CjID},
		user,
	)

	response.Message(c, "정식 사용자로 전환되었습니다.", user)
}

func (h *UsersHandler) freeTemporaryID(c *gin.Context) (string, error) {
	for attempt := 0; attempt < maxTemporaryIDAttempts; attempt++ {
		cjID := h.newTempID()
		exists, err := h.Repository.CjIDExists(c.Request.Context(), cjID)
		if err != nil {
			return "", err
		}
		if !exists {
			return cjID, nil
		}
	}
	return "", errTemporaryIDExhausted
}

// isAllowed lets users edit their own account and admins edit any.
func (h *UsersHandler) isAllowed(c *gin.Context, user *models.User) bool {
	authID := security.GetUserIDFromContext(c)
	if authID == "" {
		return false
	}

	return authID == user.CjID || security.IsAllowed(c, roles.Admin)
}

func parseUserID(c *gin.Context) (int, bool) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil || userID <= 0 {
		response.Error(c, http.StatusBadRequest, "유효하지 않은 사용자 ID입니다.")
		return 0, false
	}
	return userID, true
}
