package tickets

import (
	"context"
	"sort"
	"sync"
)

// MemoryRequestRepo is an in-memory RequestRepo.
type MemoryRequestRepo struct {
	mu   sync.RWMutex
	data []Request
}

func NewMemoryRequestRepo() *MemoryRequestRepo {
	return &MemoryRequestRepo{}
}

func (r *MemoryRequestRepo) Create(ctx context.Context, req Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	req.Labels = append([]string(nil), req.Labels...)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(r.data, req)
	return nil
}

// List returns requests newest first. A non-positive limit returns all.
func (r *MemoryRequestRepo) List(ctx context.Context, limit int) ([]Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Request, len(r.data))
	copy(out, r.data)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
