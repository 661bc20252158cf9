package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"pmsdoc-backend/internal/analysis"
	"pmsdoc-backend/internal/extract"
	"pmsdoc-backend/internal/shared/metrics"
	"pmsdoc-backend/internal/shared/server/middleware"
	"pmsdoc-backend/internal/shared/storage/object"
	"pmsdoc-backend/internal/shared/telemetry"
	"pmsdoc-backend/internal/shared/util"
	"pmsdoc-backend/internal/tickets"
	"pmsdoc-backend/internal/tracker"
)

const (
	storageNamespace = "pms-documents"
	maxTitleLen      = 255
	maxURLLen        = 2048
)

// Service contains the document pipeline: storage, extraction, analysis
// and tracker tickets.
type Service struct {
	Repo       Repo
	Tickets    TicketRepo
	Store      object.ObjectStore
	Fetcher    *RemoteFetcher
	Normalizer *extract.Normalizer
	Analyzer   *analysis.Analyzer
	Composer   *tickets.Composer
	Tracker    tracker.Tracker
	Now        func() time.Time
}

// CreateInput describes a new document: either an uploaded PDF or a URL.
type CreateInput struct {
	File          io.Reader
	FileName      string
	URL           string
	Title         string
	BookingEngine bool
}

// Page is one page of analyzed documents.
type Page struct {
	Items   []Document
	Page    int
	HasNext bool
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create stores an uploaded PDF or fetches a URL and records the document.
func (s *Service) Create(ctx context.Context, in CreateInput) (Document, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return Document{}, err
	}

	var (
		name      string
		data      []byte
		sourceURL *string
		source    string
	)
	switch {
	case in.File != nil:
		data, err = io.ReadAll(io.LimitReader(in.File, MaxDocumentBytes+1))
		if err != nil {
			return Document{}, fmt.Errorf("read upload: %w", err)
		}
		if len(data) > MaxDocumentBytes {
			return Document{}, ErrTooLarge
		}
		if !bytes.HasPrefix(data, []byte("%PDF")) {
			return Document{}, ErrNotPDF
		}
		name = strings.TrimSpace(in.FileName)
		if name == "" {
			name = defaultFileName
		}
		name = util.EnsureExtension(name, "pdf")
		source = "upload"
	case strings.TrimSpace(in.URL) != "":
		raw := strings.TrimSpace(in.URL)
		if err := validateURL(raw); err != nil {
			return Document{}, err
		}
		if s.Fetcher == nil {
			return Document{}, &RemoteFetchError{URL: raw, Reason: "Unable to fetch the document from the provided URL."}
		}
		remote, err := s.Fetcher.Fetch(ctx, raw)
		if err != nil {
			return Document{}, err
		}
		name, data, sourceURL = remote.Name, remote.Data, &raw
		source = "url"
	default:
		return Document{}, ErrSourceRequired
	}

	stored, err := s.Store.Save(ctx, storageNamespace, name, bytes.NewReader(data))
	if err != nil {
		return Document{}, fmt.Errorf("store document: %w", err)
	}

	now := s.now()
	doc := Document{
		ID:               uuid.NewString(),
		OriginalFilename: name,
		StoragePath:      stored.Key,
		MimeType:         stored.MimeType,
		SizeBytes:        stored.Size,
		Checksum:         stored.Checksum,
		SourceURL:        sourceURL,
		Title:            title,
		IsBookingEngine:  in.BookingEngine,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	metrics.IncDocumentCreated(source)
	telemetry.Info("document.created", map[string]any{
		"request_id":     middleware.RequestIDFrom(ctx),
		"document_id":    doc.ID,
		"source":         source,
		"size_bytes":     doc.SizeBytes,
		"booking_engine": doc.IsBookingEngine,
	})
	return doc, nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	return s.Repo.GetByID(ctx, id)
}

// List returns one page of analyzed documents.
func (s *Service) List(ctx context.Context, page int) (Page, error) {
	if page < 1 {
		page = 1
	}
	docs, hasNext, err := s.Repo.ListAnalyzed(ctx, page)
	if err != nil {
		return Page{}, err
	}
	return Page{Items: docs, Page: page, HasNext: hasNext}, nil
}

// UpdateTitle sets the title. A blank title clears it.
func (s *Service) UpdateTitle(ctx context.Context, id, rawTitle string) (Document, error) {
	title, err := normalizeTitle(rawTitle)
	if err != nil {
		return Document{}, err
	}
	if err := s.Repo.UpdateTitle(ctx, id, title, s.now()); err != nil {
		return Document{}, err
	}
	return s.Repo.GetByID(ctx, id)
}

// Open returns the stored bytes of a document for download.
func (s *Service) Open(ctx context.Context, id string) (Document, io.ReadCloser, error) {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Document{}, nil, err
	}
	rc, err := s.Store.Open(ctx, doc.StoragePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, nil, ErrNotFound
		}
		return Document{}, nil, err
	}
	return doc, rc, nil
}

// ExtractText runs the text normalizer over the stored document.
func (s *Service) ExtractText(ctx context.Context, doc Document) (string, error) {
	rc, err := s.Store.Open(ctx, doc.StoragePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read stored document: %w", err)
	}
	return s.Normalizer.Extract(ctx, data, doc.StoragePath)
}

// Analyze extracts the document text, asks for a capability report and
// persists it.
func (s *Service) Analyze(ctx context.Context, id string) (analysis.Report, error) {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return analysis.Report{}, err
	}

	metrics.IncAnalysisStarted()
	start := time.Now()
	text, err := s.ExtractText(ctx, doc)
	if err != nil {
		stage := "extract"
		if extract.IsEmptyOutput(err) {
			stage = "empty"
		}
		metrics.IncAnalysisFailed(stage)
		return analysis.Report{}, err
	}
	report, err := s.Analyzer.Analyze(ctx, text, doc.IsBookingEngine)
	if err != nil {
		stage := analysis.StageOf(err)
		if stage == "" {
			stage = "unknown"
		}
		metrics.IncAnalysisFailed(stage)
		return analysis.Report{}, err
	}
	if err := s.Repo.SaveAnalysis(ctx, doc.ID, report, s.now()); err != nil {
		return analysis.Report{}, err
	}

	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDuration(time.Since(start))
	telemetry.Info("document.analyzed", map[string]any{
		"request_id":  middleware.RequestIDFrom(ctx),
		"document_id": doc.ID,
		"text_chars":  utf8.RuneCountInString(text),
	})
	return report, nil
}

// AnalyzeExample asks for a GET reservations response example. Nothing is persisted.
func (s *Service) AnalyzeExample(ctx context.Context, id string) (analysis.Example, error) {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return analysis.Example{}, err
	}
	text, err := s.ExtractText(ctx, doc)
	if err != nil {
		return analysis.Example{}, err
	}
	return s.Analyzer.AnalyzeExample(ctx, text, doc.IsBookingEngine)
}

// CreateTicket opens a spike for an analyzed document and records it.
// baseURL is used for the download link in the description.
func (s *Service) CreateTicket(ctx context.Context, id, override, baseURL string) (tracker.Created, error) {
	doc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return tracker.Created{}, err
	}
	if doc.AnalysisResult == nil {
		return tracker.Created{}, ErrNotAnalyzed
	}

	draft := s.Composer.Compose(*doc.AnalysisResult, doc.Identity(baseURL), tickets.TypeSpike, override)
	created, err := s.Tracker.CreateIssue(ctx, string(tickets.TypeSpike), draft.Summary, draft.Description, draft.Labels)
	if err != nil {
		return tracker.Created{}, &TrackerError{Err: err}
	}

	status, err := s.Tracker.FetchStatus(ctx, created.IssueID)
	if err != nil {
		telemetry.Warn("ticket.status_failed", map[string]any{
			"document_id": doc.ID,
			"issue_id":    created.IssueID,
			"error":       err,
		})
		status = nil
	}

	now := s.now()
	ticket := Ticket{
		ID:          uuid.NewString(),
		DocumentID:  doc.ID,
		IssueID:     created.IssueID,
		IssueURL:    created.URL,
		IssueStatus: status,
		IssueType:   string(tickets.TypeSpike),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Tickets.Create(ctx, ticket); err != nil {
		return tracker.Created{}, fmt.Errorf("record ticket: %w", err)
	}

	metrics.IncTicketCreated("document")
	telemetry.Info("ticket.created", map[string]any{
		"request_id":  middleware.RequestIDFrom(ctx),
		"document_id": doc.ID,
		"issue_id":    created.IssueID,
	})
	return created, nil
}

// ListTickets returns the document's tickets, newest first. With refresh,
// each status is re-read from the tracker first; tickets the tracker no
// longer knows are deleted and per-ticket errors are skipped.
func (s *Service) ListTickets(ctx context.Context, id string, refresh bool) ([]Ticket, error) {
	if _, err := s.Repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	list, err := s.Tickets.ListByDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if !refresh || len(list) == 0 {
		return list, nil
	}

	for _, t := range list {
		status, err := s.Tracker.FetchStatus(ctx, t.IssueID)
		if err != nil && !errors.Is(err, tracker.ErrNotFound) {
			telemetry.Warn("ticket.refresh_failed", map[string]any{
				"document_id": id,
				"issue_id":    t.IssueID,
				"error":       err,
			})
			continue
		}
		if status == nil {
			if err := s.Tickets.Delete(ctx, t.ID); err != nil {
				telemetry.Warn("ticket.delete_failed", map[string]any{"issue_id": t.IssueID, "error": err})
			}
			continue
		}
		if err := s.Tickets.UpdateStatus(ctx, t.ID, status, s.now()); err != nil {
			telemetry.Warn("ticket.update_failed", map[string]any{"issue_id": t.IssueID, "error": err})
		}
	}
	return s.Tickets.ListByDocument(ctx, id)
}

func normalizeTitle(raw string) (*string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, invalid("The title field must not be greater than 255 characters.")
	}
	return &title, nil
}

func validateURL(raw string) error {
	if len(raw) > maxURLLen {
		return invalid("The document url field must not be greater than 2048 characters.")
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("The document url field must be a valid URL.")
	}
	return nil
}
