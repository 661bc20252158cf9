// Package tracker defines the issue tracker collaborator.
package tracker

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the tracker has no issue with the given ID.
	ErrNotFound = errors.New("issue not found")
	// ErrNotConfigured is returned by Noop and by clients missing credentials.
	ErrNotConfigured = errors.New("issue tracker is not configured")
)

// Created identifies a newly created issue.
type Created struct {
	IssueID string `json:"issueId"`
	URL     string `json:"url"`
}

// Project names the tracker project an issue belongs to.
type Project struct {
	Key  *string `json:"key"`
	Name *string `json:"name"`
}

// Issue is the tracker's view of an issue. Fields maps each custom field to
// a string, a list of names or nil.
type Issue struct {
	ID          *string        `json:"id"`
	Summary     *string        `json:"summary"`
	Description *string        `json:"description"`
	Project     Project        `json:"project"`
	Fields      map[string]any `json:"fields"`
}

// Tracker creates and reads issues.
type Tracker interface {
	CreateIssue(ctx context.Context, issueType, summary, description string, labels []string) (Created, error)
	// FetchStatus returns the issue state, or nil when the tracker reports none.
	FetchStatus(ctx context.Context, issueID string) (*string, error)
	UpdateDescription(ctx context.Context, issueID, description string) error
	FetchIssue(ctx context.Context, issueID string) (Issue, error)
}

// Noop is used when no tracker is configured.
type Noop struct{}

func (Noop) CreateIssue(context.Context, string, string, string, []string) (Created, error) {
	return Created{}, ErrNotConfigured
}

func (Noop) FetchStatus(context.Context, string) (*string, error) {
	return nil, ErrNotConfigured
}

func (Noop) UpdateDescription(context.Context, string, string) error {
	return ErrNotConfigured
}

func (Noop) FetchIssue(context.Context, string) (Issue, error) {
	return Issue{}, ErrNotConfigured
}
