package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pmsdoc-backend/internal/shared/server/respond"
)

// ClientKeyHeader carries the shared secret used by the browser extension.
const ClientKeyHeader = "X-Client-Key"

const clientKeyCtx = "clientKeyOK"

// ClientKey rejects requests whose X-Client-Key does not match expected.
// An empty expected key rejects everything.
func ClientKey(expected string) gin.HandlerFunc {
	want := []byte(strings.TrimSpace(expected))
	return func(c *gin.Context) {
		got := []byte(c.GetHeader(ClientKeyHeader))
		if len(want) == 0 || subtle.ConstantTimeCompare(want, got) != 1 {
			respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "Unauthorized", nil)
			return
		}
		c.Set(clientKeyCtx, true)
		c.Next()
	}
}

// HasClientKey reports whether ClientKey accepted the request.
func HasClientKey(c *gin.Context) bool {
	return c.GetBool(clientKeyCtx)
}
