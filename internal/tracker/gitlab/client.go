// Package gitlab implements the issue tracker on GitLab issues.
package gitlab

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"pmsdoc-backend/internal/shared/telemetry"
	"pmsdoc-backend/internal/tracker"
)

// Config holds the GitLab connection settings. Project is an ID or a
// "group/project" path.
type Config struct {
	BaseURL string
	Token   string
	Project string
}

// Client implements tracker.Tracker. Issue IDs have the form "#<iid>".
type Client struct {
	api     *gitlab.Client
	project string
}

// New returns a Client for cfg.
func New(cfg Config) (*Client, error) {
	token := strings.TrimSpace(cfg.Token)
	project := strings.TrimSpace(cfg.Project)
	if token == "" {
		return nil, fmt.Errorf("GITLAB_TOKEN is not set: %w", tracker.ErrNotConfigured)
	}
	if project == "" {
		return nil, fmt.Errorf("GITLAB_PROJECT is not set: %w", tracker.ErrNotConfigured)
	}

	var (
		api *gitlab.Client
		err error
	)
	if base := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		api, err = gitlab.NewClient(token, gitlab.WithBaseURL(base+"/api/v4"))
	} else {
		api, err = gitlab.NewClient(token)
	}
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}
	return &Client{api: api, project: project}, nil
}

// CreateIssue opens an issue labeled with the issue type and labels.
func (c *Client) CreateIssue(ctx context.Context, issueType, summary, description string, labels []string) (tracker.Created, error) {
	all := append([]string{strings.ToLower(issueType)}, labels...)
	opts := &gitlab.CreateIssueOptions{
		Title:       gitlab.Ptr(summary),
		Description: gitlab.Ptr(description),
		Labels:      (*gitlab.LabelOptions)(&all),
	}

	telemetry.Info("tracker.create_issue", map[string]any{
		"tracker": "gitlab",
		"type":    issueType,
		"project": c.project,
	})

	issue, resp, err := c.api.Issues.CreateIssue(c.project, opts, gitlab.WithContext(ctx))
	if err != nil {
		return tracker.Created{}, mapError(resp, err)
	}
	return tracker.Created{IssueID: FormatID(issue.IID), URL: issue.WebURL}, nil
}

// FetchIssue reads an issue. Fields carries State and Labels.
func (c *Client) FetchIssue(ctx context.Context, issueID string) (tracker.Issue, error) {
	issue, err := c.get(ctx, issueID)
	if err != nil {
		return tracker.Issue{}, err
	}
	id := FormatID(issue.IID)
	fields := map[string]any{"State": nilIfEmpty(issue.State)}
	if len(issue.Labels) > 0 {
		fields["Labels"] = []string(issue.Labels)
	} else {
		fields["Labels"] = nil
	}
	project := c.project
	return tracker.Issue{
		ID:          &id,
		Summary:     gitlab.Ptr(issue.Title),
		Description: gitlab.Ptr(issue.Description),
		Project:     tracker.Project{Key: &project},
		Fields:      fields,
	}, nil
}

// FetchStatus returns "opened" or "closed".
func (c *Client) FetchStatus(ctx context.Context, issueID string) (*string, error) {
	issue, err := c.get(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if s, ok := nilIfEmpty(issue.State).(string); ok {
		return &s, nil
	}
	return nil, nil
}

// UpdateDescription replaces the description of an issue.
func (c *Client) UpdateDescription(ctx context.Context, issueID, description string) error {
	iid, err := ParseID(issueID)
	if err != nil {
		return err
	}
	_, resp, err := c.api.Issues.UpdateIssue(c.project, iid, &gitlab.UpdateIssueOptions{
		Description: gitlab.Ptr(description),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return mapError(resp, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, issueID string) (*gitlab.Issue, error) {
	iid, err := ParseID(issueID)
	if err != nil {
		return nil, err
	}
	issue, resp, err := c.api.Issues.GetIssue(c.project, iid, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, mapError(resp, err)
	}
	return issue, nil
}

// FormatID renders an issue IID as "#<iid>".
func FormatID(iid int64) string {
	return "#" + strconv.FormatInt(iid, 10)
}

// ParseID accepts "#12" or "12". Anything else is reported as not found.
func ParseID(issueID string) (int64, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(issueID), "#")
	iid, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || iid <= 0 {
		return 0, fmt.Errorf("gitlab issue id %q: %w", issueID, tracker.ErrNotFound)
	}
	return iid, nil
}

func mapError(resp *gitlab.Response, err error) error {
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return tracker.ErrNotFound
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("gitlab API error: %w", err)
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
