package tickets

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pmsdoc-backend/internal/shared/metrics"
	"pmsdoc-backend/internal/shared/server/middleware"
	"pmsdoc-backend/internal/shared/server/respond"
	"pmsdoc-backend/internal/shared/telemetry"
	"pmsdoc-backend/internal/tracker"
)

// Handler serves the email ticket endpoint.
type Handler struct {
	Composer *Composer
	Tracker  tracker.Tracker
	Requests RequestRepo
	now      func() time.Time
}

func NewHandler(composer *Composer, t tracker.Tracker, requests RequestRepo) *Handler {
	return &Handler{Composer: composer, Tracker: t, Requests: requests, now: time.Now}
}

// RegisterRoutes attaches /tickets/from-email. Callers put it behind the client key.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/tickets/from-email", h.fromEmail)
}

type fromEmailRequest struct {
	Type        string       `json:"type"`
	Mode        string       `json:"mode"`
	Email       *EmailSource `json:"email"`
	Summary     string       `json:"summary"`
	Description string       `json:"description"`
}

type fromEmailResponse struct {
	tracker.Created
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Labels      []string `json:"labels"`
}

func (h *Handler) fromEmail(c *gin.Context) {
	var req fromEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}

	t, err := ParseType(req.Type)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
		return
	}
	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	if mode == "" {
		mode = ModeAI
	}
	if mode != ModeAI && mode != ModeManual {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "Mode must be ai or manual.", nil)
		return
	}

	entry := Request{ID: uuid.NewString(), Type: t, Mode: mode}
	if req.Email != nil {
		entry.Email = *req.Email
	}

	var draft Draft
	switch mode {
	case ModeAI:
		if req.Email == nil {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, ErrEmailRequired.Error(), nil)
			return
		}
		c.Set(middleware.StageKey, "compose")
		draft, err = h.Composer.FromEmail(c.Request.Context(), t, *req.Email)
	default:
		draft, err = h.Composer.FromManual(t, req.Summary, req.Description)
	}
	if err != nil {
		var ce *CompositionError
		if errors.As(err, &ce) {
			h.record(c.Request.Context(), entry, err)
			respond.Error(c, http.StatusBadGateway, respond.CodeComposition, err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
		return
	}
	entry.Summary = &draft.Summary
	entry.Description = &draft.Description
	entry.Labels = draft.Labels

	c.Set(middleware.StageKey, "tracker")
	created, err := h.Tracker.CreateIssue(c.Request.Context(), string(t), draft.Summary, draft.Description, draft.Labels)
	if err != nil {
		h.record(c.Request.Context(), entry, err)
		tracker.RespondError(c, err)
		return
	}
	entry.IssueID = &created.IssueID
	h.record(c.Request.Context(), entry, nil)
	c.Set(middleware.IssueIDKey, created.IssueID)
	metrics.IncTicketCreated("email")

	respond.Created(c, fromEmailResponse{
		Created:     created,
		Summary:     draft.Summary,
		Description: draft.Description,
		Labels:      draft.Labels,
	})
}

// record writes the request log entry. Failures are logged, not returned.
func (h *Handler) record(ctx context.Context, entry Request, cause error) {
	if h.Requests == nil {
		return
	}
	now := h.now().UTC()
	entry.CreatedAt, entry.UpdatedAt = now, now
	entry.Status = RequestCreated
	if cause != nil {
		msg := cause.Error()
		entry.Status = RequestFailed
		entry.ErrorMessage = &msg
	}
	if err := h.Requests.Create(ctx, entry); err != nil {
		telemetry.Warn("ticket.request_log_failed", map[string]any{
			"request_id": middleware.RequestIDFrom(ctx),
			"error":      err,
		})
	}
}
