package routes

import (
	"assetdb/internal/core/container"
	"assetdb/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "1.0.0"

// NewRouter builds the engine with every API route registered under /api.
func NewRouter(c *container.Container, log *zap.Logger) *gin.Engine {
	router := gin.New()
	// Without trusted proxies ClientIP ignores X-Forwarded-For and X-Real-IP.
	if err := router.SetTrustedProxies(c.Config.TrustedProxies); err != nil {
		log.Error("invalid trusted proxies, forwarding headers ignored", zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Logger(), middleware.Recovery(log), middleware.Timeout(c.Config.RequestTimeout))

	router.GET("/health", middleware.HealthCheck(c.DB, version))

	api := router.Group("/api")
	RegisterPublicRoutes(api, c)
	RegisterProtectedRoutes(api, c)

	if middleware.ServeSPA(router, c.Config.StaticDir) {
		log.Info("serving frontend", zap.String("dir", c.Config.StaticDir))
	}

	return router
}

func RegisterPublicRoutes(router *gin.RouterGroup, c *container.Container) {
	c.LoginHandler.RegisterRoutes(router)
}

func RegisterProtectedRoutes(router *gin.RouterGroup, c *container.Container) {
	protected := router.Group("")
	protected.Use(c.Authenticator.JWTMiddleware())

	c.AssetHandler.RegisterRoutes(protected)
	c.TradeHandler.RegisterRoutes(protected)
	c.UserHandler.RegisterRoutes(protected)
	c.ReturnHandler.RegisterRoutes(protected)
	c.ConfirmationHandler.RegisterRoutes(protected)
	c.FilterHandler.RegisterRoutes(protected)
	c.DashboardHandler.RegisterRoutes(protected)
	c.SelectBarHandler.RegisterRoutes(protected)
	c.ImportHandler.RegisterRoutes(protected)
	c.BackupHandler.RegisterRoutes(protected)
}
