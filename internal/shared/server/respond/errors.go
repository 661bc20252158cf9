package respond

import (
	"github.com/gin-gonic/gin"

	"pmsdoc-backend/internal/shared/telemetry"
)

// Error codes returned in ErrorBody.Code.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL_ERROR"
	CodeExtraction   = "EXTRACTION_ERROR"
	CodeAnalysis     = "ANALYSIS_ERROR"
	CodeComposition  = "COMPOSITION_ERROR"
	CodeRemoteFetch  = "REMOTE_FETCH_ERROR"
	CodeTracker      = "TRACKER_ERROR"
	CodeConflict     = "CONFLICT"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if docID := c.GetString("documentId"); docID != "" {
		fields["document_id"] = docID
	}
	if stage := c.GetString("pipelineStage"); stage != "" {
		fields["stage"] = stage
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
