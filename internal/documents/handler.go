package documents

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"pmsdoc-backend/internal/analysis"
	"pmsdoc-backend/internal/extract"
	"pmsdoc-backend/internal/shared/server/middleware"
	"pmsdoc-backend/internal/shared/server/respond"
	"pmsdoc-backend/internal/tracker"
)

// Handler serves the /pms-documents endpoints.
type Handler struct {
	Service *Service
	// PublicBaseURL is the API base used in download links. When empty it
	// is derived from the request.
	PublicBaseURL string
}

func NewHandler(svc *Service, publicBaseURL string) *Handler {
	return &Handler{Service: svc, PublicBaseURL: publicBaseURL}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/pms-documents", h.list)
	rg.POST("/pms-documents", h.create)
	rg.GET("/pms-documents/:id", h.show)
	rg.PATCH("/pms-documents/:id", h.update)
	rg.GET("/pms-documents/:id/download", h.download)
	rg.POST("/pms-documents/:id/analyze", h.analyze)
	rg.POST("/pms-documents/:id/example", h.example)
	rg.POST("/pms-documents/:id/ticket", h.createTicket)
	rg.GET("/pms-documents/:id/tickets", h.listTickets)
}

func (h *Handler) list(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	result, err := h.Service.List(c.Request.Context(), page)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond.OK(c, toList(result))
}

type createRequest struct {
	DocumentURL     string `json:"document_url" form:"document_url"`
	Title           string `json:"title" form:"title"`
	IsBookingEngine string `json:"-" form:"is_booking_engine"`
}

type createJSONRequest struct {
	DocumentURL     string `json:"document_url"`
	Title           string `json:"title"`
	IsBookingEngine any    `json:"is_booking_engine"`
}

func (h *Handler) create(c *gin.Context) {
	in := CreateInput{}
	ct, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))

	switch ct {
	case "application/json":
		var req createJSONRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
			return
		}
		in.URL, in.Title = req.DocumentURL, req.Title
		in.BookingEngine = parseBool(fmt.Sprint(req.IsBookingEngine))
	default:
		var req createRequest
		if err := c.ShouldBind(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
			return
		}
		in.URL, in.Title = req.DocumentURL, req.Title
		in.BookingEngine = parseBool(req.IsBookingEngine)

		if fh, err := c.FormFile("document"); err == nil {
			f, err := fh.Open()
			if err != nil {
				respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "The document failed to upload.", nil)
				return
			}
			defer f.Close()
			in.File, in.FileName = f, fh.Filename
		}
	}

	doc, err := h.Service.Create(c.Request.Context(), in)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Set(middleware.DocumentIDKey, doc.ID)
	respond.Created(c, createResponse{ID: doc.ID})
}

func (h *Handler) show(c *gin.Context) {
	id := h.documentID(c)
	doc, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond.OK(c, toDetail(doc))
}

type updateRequest struct {
	Title *string `json:"title" form:"title"`
}

func (h *Handler) update(c *gin.Context) {
	id := h.documentID(c)
	var req updateRequest
	if err := c.ShouldBind(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	title := ""
	if req.Title != nil {
		title = *req.Title
	}
	doc, err := h.Service.UpdateTitle(c.Request.Context(), id, title)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond.OK(c, titleResponse{ID: doc.ID, Title: doc.Title})
}

func (h *Handler) download(c *gin.Context) {
	id := h.documentID(c)
	doc, rc, err := h.Service.Open(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	defer rc.Close()

	contentType := doc.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.OriginalFilename}))
	c.DataFromReader(http.StatusOK, doc.SizeBytes, contentType, rc, nil)
}

func (h *Handler) analyze(c *gin.Context) {
	id := h.documentID(c)
	c.Set(middleware.StageKey, "analyze")
	report, err := h.Service.Analyze(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond.OK(c, report)
}

func (h *Handler) example(c *gin.Context) {
	id := h.documentID(c)
	c.Set(middleware.StageKey, "example")
	example, err := h.Service.AnalyzeExample(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond.OK(c, example)
}

type ticketRequest struct {
	Description string `json:"description" form:"description"`
}

func (h *Handler) createTicket(c *gin.Context) {
	id := h.documentID(c)
	c.Set(middleware.StageKey, "tracker")

	var req ticketRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
			return
		}
	}

	created, err := h.Service.CreateTicket(c.Request.Context(), id, req.Description, h.baseURL(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Set(middleware.IssueIDKey, created.IssueID)
	respond.OK(c, created)
}

func (h *Handler) listTickets(c *gin.Context) {
	id := h.documentID(c)
	refresh := parseBool(c.Query("refresh"))
	list, err := h.Service.ListTickets(c.Request.Context(), id, refresh)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond.OK(c, toTickets(list))
}

func (h *Handler) documentID(c *gin.Context) string {
	id := strings.TrimSpace(c.Param("id"))
	c.Set(middleware.DocumentIDKey, id)
	return id
}

// baseURL returns the API base for download links.
func (h *Handler) baseURL(c *gin.Context) string {
	if base := strings.TrimSpace(h.PublicBaseURL); base != "" {
		return strings.TrimRight(base, "/")
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if fwd := c.GetHeader("X-Forwarded-Proto"); fwd != "" {
		scheme = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return scheme + "://" + c.Request.Host + "/api/v1"
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func respondErr(c *gin.Context, err error) {
	var (
		fetchErr *RemoteFetchError
		extErr   *extract.ExtractionError
		anaErr   *analysis.AnalysisError
		trkErr   *TrackerError
	)
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, ErrNotFound.Error(), nil)
	case errors.As(err, &fetchErr):
		respond.Error(c, http.StatusBadRequest, respond.CodeRemoteFetch, fetchErr.Error(), nil)
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrSourceRequired),
		errors.Is(err, ErrNotPDF),
		errors.Is(err, ErrTooLarge),
		errors.Is(err, ErrEmptyDocument),
		errors.Is(err, ErrNotAnalyzed):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
	case errors.As(err, &extErr):
		msg := err.Error()
		if extract.IsEmptyOutput(err) {
			msg = "No readable text could be extracted from the document."
		}
		respond.Error(c, http.StatusUnprocessableEntity, respond.CodeExtraction, msg, gin.H{"stage": extErr.Stage})
	case errors.As(err, &anaErr):
		status := http.StatusBadGateway
		if anaErr.Stage == analysis.StageInput {
			status = http.StatusUnprocessableEntity
		}
		respond.Error(c, status, respond.CodeAnalysis, err.Error(), gin.H{"stage": anaErr.Stage})
	case errors.As(err, &trkErr):
		tracker.RespondError(c, trkErr.Err)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "Unexpected server error", nil)
	}
}
