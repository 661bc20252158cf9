package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"pmsdoc-backend/internal/shared/server/respond"
	"pmsdoc-backend/internal/shared/telemetry"
)

// Recovery recovers from panics and returns a standardized error response.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				telemetry.Error("panic", map[string]any{
					"request_id": RequestIDFromContext(c),
					"error":      rec,
					"stack":      string(debug.Stack()),
					"route":      c.FullPath(),
					"method":     c.Request.Method,
				})
				respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "Unexpected server error", nil)
			}
		}()
		c.Next()
	}
}
