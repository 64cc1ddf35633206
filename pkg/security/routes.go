package security

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"assetdb/internal/rate_limiter"
	"assetdb/pkg/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserLookup interface {
	GetUserByCjID(ctx context.Context, cjID string) (*models.User, error)
}

type LoginHandler struct {
	users       UserLookup
	auth        *Authenticator
	rateLimiter *rate_limiter.RateLimiter
	log         *zap.Logger
}

func NewLoginHandler(users UserLookup, auth *Authenticator, limiter *rate_limiter.RateLimiter, log *zap.Logger) *LoginHandler {
	return &LoginHandler{
		users:       users,
		auth:        auth,
		rateLimiter: limiter,
		log:         log,
	}
}

func (l *LoginHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/users/login", l.Login)
}

func (l *LoginHandler) Login(c *gin.Context) {
	clientKey := clientKey(c)

	if !l.rateLimiter.IsAllowed(clientKey) {
		resetAt := l.rateLimiter.ResetAt(clientKey).Format(time.RFC3339)
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.rateLimiter.Limit()))
		c.Header("X-RateLimit-Remaining", "0")
		c.Header("X-RateLimit-Reset", resetAt)
		c.JSON(http.StatusTooManyRequests, gin.H{
			"success":  false,
			"error":    "Too many login attempts, try again later",
			"reset_at": resetAt,
		})
		return
	}

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request payload"})
		return
	}

	user, err := l.users.GetUserByCjID(c.Request.Context(), req.CjID)
	if err != nil {
		l.log.Warn("login lookup failed", zap.String("cj_id", req.CjID), zap.Error(err))
	}
	if err != nil || CheckCredentials(user, req.Password) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": ErrInvalidCredentials.Error()})
		return
	}

	token, err := l.auth.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"token": token,
			"user": gin.H{
				"user_id":   user.ID,
				"cj_id":     user.CjID,
				"name":      user.Name,
				"sec_level": user.SecLevel,
			},
		},
	})
}

// clientKey identifies a login client. Forwarding headers are honoured only
// when the request came through a proxy listed in the engine's trusted
// proxies. Behind NAT the user agent is appended so colleagues sharing an
// address do not lock each other out.
func clientKey(c *gin.Context) string {
	clientIP := c.ClientIP()
	if isPrivateIP(clientIP) {
		return clientIP + ":" + c.GetHeader("User-Agent")
	}
	return clientIP
}

func isPrivateIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return parsed.IsPrivate() || parsed.IsLoopback() || parsed.IsLinkLocalUnicast()
}
