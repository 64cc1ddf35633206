package middleware

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// ServeSPA serves files from dir and falls back to index.html for unknown
// non-API GET paths. It returns false when dir holds no built frontend.
func ServeSPA(router *gin.Engine, dir string) bool {
	if dir == "" {
		return false
	}
	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		return false
	}

	fileServer := http.FileServer(http.Dir(dir))
	router.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != http.MethodGet || strings.HasPrefix(path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "요청한 경로를 찾을 수 없습니다."})
			return
		}

		if info, err := os.Stat(filepath.Join(dir, filepath.Clean("/"+path))); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(c.Writer, c.Request)
			return
		}
		c.File(index)
	})
	return true
}
