package reports

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/pvsim/core/logger"
	"github.com/kilianp07/pvsim/core/monitoring"
)

// bearer rejects requests without "Authorization: Bearer <token>". An empty
// token disables the check.
func bearer(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		if c.GetHeader("Authorization") != "Bearer "+token {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", fmt.Errorf("missing or invalid bearer token"))
			return
		}
		c.Next()
	}
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debugw("http request", map[string]any{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
	}
}

func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		monitoring.CapturePanic(recovered, map[string]string{"module": "api", "path": c.FullPath()})
		abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", fmt.Errorf("an unexpected error occurred"))
	})
}
