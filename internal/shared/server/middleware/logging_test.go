package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"pmsdoc-backend/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	restore := telemetry.SetLogger(zap.New(core))
	defer restore()

	var ctxRequestID string
	router := gin.New()
	router.Use(RequestID(), Logging())
	router.POST("/pms-documents/:id/analyze", func(c *gin.Context) {
		c.Set(DocumentIDKey, "doc-1")
		c.Set(StageKey, "schema")
		ctxRequestID = RequestIDFrom(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/pms-documents/doc-1/analyze", nil)
	req.Header.Set("X-Request-Id", "req-123")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	entries := logs.FilterMessage("request.complete").All()
	if len(entries) != 1 {
		t.Fatalf("expected one request.complete entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	for _, key := range []string{"request_id", "document_id", "duration_ms", "status", "route", "stage"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if fields["request_id"] != "req-123" {
		t.Fatalf("unexpected request_id: %v", fields["request_id"])
	}
	if fields["document_id"] != "doc-1" {
		t.Fatalf("unexpected document_id: %v", fields["document_id"])
	}
	if fields["route"] != "/pms-documents/:id/analyze" {
		t.Fatalf("unexpected route: %v", fields["route"])
	}
	if ctxRequestID != "req-123" {
		t.Fatalf("expected request id on request context, got %q", ctxRequestID)
	}
	if resp.Header().Get("X-Request-Id") != "req-123" {
		t.Fatalf("expected X-Request-Id echoed")
	}
}

func TestLoggingRecordsClientKeyAcceptance(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	restore := telemetry.SetLogger(zap.New(core))
	defer restore()

	router := gin.New()
	router.Use(Logging())
	router.GET("/public", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/guarded", ClientKey("secret"), func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/public", "/guarded"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(ClientKeyHeader, "secret")
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.FilterMessage("request.complete").All()
	if len(entries) != 2 {
		t.Fatalf("expected two entries, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["client_key"]; got != false {
		t.Fatalf("public route client_key = %v", got)
	}
	if got := entries[1].ContextMap()["client_key"]; got != true {
		t.Fatalf("guarded route client_key = %v", got)
	}
}
