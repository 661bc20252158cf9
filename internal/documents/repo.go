package documents

import (
	"context"
	"time"

	"pmsdoc-backend/internal/analysis"
)

// PageSize is the number of analyzed documents per listing page.
const PageSize = 10

// Repo defines persistence operations for documents.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	// ListAnalyzed returns one page (1-based) of analyzed documents, newest
	// first, and whether another page follows.
	ListAnalyzed(ctx context.Context, page int) ([]Document, bool, error)
	UpdateTitle(ctx context.Context, id string, title *string, at time.Time) error
	SaveAnalysis(ctx context.Context, id string, report analysis.Report, at time.Time) error
}

// TicketRepo defines persistence operations for document tickets.
type TicketRepo interface {
	Create(ctx context.Context, t Ticket) error
	ListByDocument(ctx context.Context, documentID string) ([]Ticket, error)
	UpdateStatus(ctx context.Context, id string, status *string, at time.Time) error
	Delete(ctx context.Context, id string) error
}
