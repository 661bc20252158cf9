package tracker

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pmsdoc-backend/internal/shared/server/middleware"
	"pmsdoc-backend/internal/shared/server/respond"
)

// Handler exposes tracker issues over HTTP.
type Handler struct {
	Tracker Tracker
}

func NewHandler(t Tracker) *Handler {
	return &Handler{Tracker: t}
}

// RegisterRoutes attaches the issue routes. Callers put them behind the client key.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tracker/issues/:issueId", h.show)
	rg.PATCH("/tracker/issues/:issueId", h.update)
}

func (h *Handler) show(c *gin.Context) {
	id := strings.TrimSpace(c.Param("issueId"))
	c.Set(middleware.IssueIDKey, id)

	issue, err := h.Tracker.FetchIssue(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	respond.OK(c, issue)
}

type updateRequest struct {
	Description *string `json:"description"`
}

func (h *Handler) update(c *gin.Context) {
	id := strings.TrimSpace(c.Param("issueId"))
	c.Set(middleware.IssueIDKey, id)

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	if req.Description == nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "The description field is required.", nil)
		return
	}

	if err := h.Tracker.UpdateDescription(c.Request.Context(), id, *req.Description); err != nil {
		RespondError(c, err)
		return
	}
	respond.OK(c, gin.H{"id": id, "description": *req.Description})
}

// RespondError maps tracker failures to HTTP responses.
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "Issue not found.", nil)
	case errors.Is(err, ErrNotConfigured):
		respond.Error(c, http.StatusServiceUnavailable, respond.CodeTracker, err.Error(), nil)
	default:
		respond.Error(c, http.StatusBadGateway, respond.CodeTracker, err.Error(), nil)
	}
}
