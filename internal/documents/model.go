package documents

import (
	"strings"
	"time"

	"pmsdoc-backend/internal/analysis"
	"pmsdoc-backend/internal/tickets"
)

// Document is a stored piece of PMS API documentation.
type Document struct {
	ID               string
	OriginalFilename string
	StoragePath      string
	MimeType         string
	SizeBytes        int64
	Checksum         string
	SourceURL        *string
	Title            *string
	IsBookingEngine  bool
	AnalysisResult   *analysis.Report
	AnalyzedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Identity describes the document for ticket rendering. baseURL, when set,
// is used to build the download link.
func (d Document) Identity(baseURL string) tickets.DocumentIdentity {
	id := tickets.DocumentIdentity{ID: d.ID, FileName: d.OriginalFilename}
	if d.Title != nil {
		id.Title = *d.Title
	}
	if d.SourceURL != nil {
		id.SourceURL = *d.SourceURL
	}
	if base := strings.TrimRight(strings.TrimSpace(baseURL), "/"); base != "" {
		id.DownloadURL = base + "/pms-documents/" + d.ID + "/download"
	}
	return id
}

// Ticket is a tracker issue created for a document.
type Ticket struct {
	ID          string
	DocumentID  string
	IssueID     string
	IssueURL    string
	IssueStatus *string
	IssueType   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
