package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
	Version  string `json:"version"`
}

var startTime = time.Now()

// HealthCheck answers 503 when the database does not respond within two seconds.
func HealthCheck(db Pinger, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := HealthStatus{
			Status:   "ok",
			Database: "ok",
			Uptime:   time.Since(startTime).Truncate(time.Second).String(),
			Version:  version,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		code := http.StatusOK
		if err := db.PingContext(ctx); err != nil {
			status.Status = "degraded"
			status.Database = err.Error()
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, status)
	}
}
