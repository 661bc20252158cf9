package tickets

import (
	"context"
	"time"
)

// Request statuses.
const (
	RequestCreated = "created"
	RequestFailed  = "failed"
)

// Request modes.
const (
	ModeAI     = "ai"
	ModeManual = "manual"
)

// Request is one logged call to the email ticket endpoint.
type Request struct {
	ID           string
	Type         Type
	Mode         string
	Email        EmailSource
	Summary      *string
	Description  *string
	Labels       []string
	IssueID      *string
	Status       string
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RequestRepo persists the email ticket request log.
type RequestRepo interface {
	Create(ctx context.Context, req Request) error
	List(ctx context.Context, limit int) ([]Request, error)
}
