package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pmsdoc-backend/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log.
const (
	DocumentIDKey = "documentId"
	IssueIDKey    = "issueId"
	StageKey      = "pipelineStage"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		documentID, _ := c.Get(DocumentIDKey)
		issueID, _ := c.Get(IssueIDKey)
		stage := c.GetString(StageKey)

		telemetry.Info("request.complete", map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"document_id": documentID,
			"issue_id":    issueID,
			"stage":       stage,
			"client_key":  HasClientKey(c),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		})
	}
}
