package documents

import (
	"context"
	"sort"
	"sync"
	"time"

	"pmsdoc-backend/internal/analysis"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Document)}
}

func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = doc
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (r *MemoryRepo) ListAnalyzed(ctx context.Context, page int) ([]Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if page < 1 {
		page = 1
	}

	r.mu.RLock()
	docs := make([]Document, 0, len(r.data))
	for _, d := range r.data {
		if d.AnalysisResult != nil {
			docs = append(docs, d)
		}
	}
	r.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})

	offset := (page - 1) * PageSize
	if offset >= len(docs) {
		return []Document{}, false, nil
	}
	end := offset + PageSize
	if end > len(docs) {
		end = len(docs)
	}
	return docs[offset:end], end < len(docs), nil
}

func (r *MemoryRepo) UpdateTitle(ctx context.Context, id string, title *string, at time.Time) error {
	return r.update(ctx, id, func(d *Document) {
		d.Title = title
		d.UpdatedAt = at
	})
}

func (r *MemoryRepo) SaveAnalysis(ctx context.Context, id string, report analysis.Report, at time.Time) error {
	return r.update(ctx, id, func(d *Document) {
		d.AnalysisResult = &report
		d.AnalyzedAt = &at
		d.UpdatedAt = at
	})
}

func (r *MemoryRepo) update(ctx context.Context, id string, fn func(*Document)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	fn(&doc)
	r.data[id] = doc
	return nil
}

// MemoryTicketRepo is an in-memory implementation of TicketRepo.
type MemoryTicketRepo struct {
	mu   sync.RWMutex
	data map[string]Ticket
}

// NewMemoryTicketRepo constructs a MemoryTicketRepo.
func NewMemoryTicketRepo() *MemoryTicketRepo {
	return &MemoryTicketRepo{data: make(map[string]Ticket)}
}

func (r *MemoryTicketRepo) Create(ctx context.Context, t Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[t.ID] = t
	return nil
}

func (r *MemoryTicketRepo) ListByDocument(ctx context.Context, documentID string) ([]Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := []Ticket{}
	for _, t := range r.data {
		if t.DocumentID == documentID {
			out = append(out, t)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryTicketRepo) UpdateStatus(ctx context.Context, id string, status *string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	t.IssueStatus = status
	t.UpdatedAt = at
	r.data[id] = t
	return nil
}

func (r *MemoryTicketRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}
