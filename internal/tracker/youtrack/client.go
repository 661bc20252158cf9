// Package youtrack talks to the YouTrack REST API.
package youtrack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pmsdoc-backend/internal/shared/telemetry"
	"pmsdoc-backend/internal/tracker"
)

const (
	issueFields  = "idReadable,summary,description,project(shortName,name),created,updated,customFields(name,$type,value(name,id,$type))"
	stateField   = "State"
	maxErrorBody = 2048
)

// Config holds the YouTrack connection settings.
type Config struct {
	BaseURL   string
	Token     string
	ProjectID string
	// CustomFields enables the Type and Team(s) fields on created issues.
	// YouTrack rejects fields the project does not define, so it is off by default.
	CustomFields bool
	// Team is written to the "Team(s)" field when CustomFields is set.
	Team       string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client implements tracker.Tracker for YouTrack.
type Client struct {
	base      string
	token     string
	projectID string
	team      string
	fields    bool
	http      *http.Client
}

// APIError is a non-success response from YouTrack.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("YouTrack API error: status %d: %s", e.Status, e.Body)
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	switch {
	case base == "":
		return nil, fmt.Errorf("YOUTRACK_BASE_URL is not set: %w", tracker.ErrNotConfigured)
	case strings.TrimSpace(cfg.Token) == "":
		return nil, fmt.Errorf("YOUTRACK_TOKEN is not set: %w", tracker.ErrNotConfigured)
	case strings.TrimSpace(cfg.ProjectID) == "":
		return nil, fmt.Errorf("YOUTRACK_PROJECT_ID is not set: %w", tracker.ErrNotConfigured)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		base:      base,
		token:     strings.TrimSpace(cfg.Token),
		projectID: strings.TrimSpace(cfg.ProjectID),
		team:      strings.TrimSpace(cfg.Team),
		fields:    cfg.CustomFields,
		http:      hc,
	}, nil
}

type named struct {
	Type string `json:"$type,omitempty"`
	Name string `json:"name"`
}

type customField struct {
	Type  string `json:"$type"`
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type createRequest struct {
	Project      map[string]string `json:"project"`
	Summary      string            `json:"summary"`
	Description  string            `json:"description"`
	IssueType    named             `json:"issuetype"`
	Labels       []named           `json:"labels"`
	CustomFields []customField     `json:"customFields,omitempty"`
}

// CreateIssue creates an issue in the configured project.
func (c *Client) CreateIssue(ctx context.Context, issueType, summary, description string, labels []string) (tracker.Created, error) {
	typeName := "Task"
	if strings.EqualFold(issueType, "spike") {
		typeName = "Spike"
	}

	payload := createRequest{
		Project:     map[string]string{"shortName": c.projectID},
		Summary:     summary,
		Description: description,
		IssueType:   named{Name: typeName},
		Labels:      make([]named, 0, len(labels)),
	}
	for _, l := range labels {
		payload.Labels = append(payload.Labels, named{Name: l})
	}
	if c.fields {
		payload.CustomFields = append(payload.CustomFields, customField{
			Type:  "SingleEnumIssueCustomField",
			Name:  "Type",
			Value: named{Type: "EnumBundleElement", Name: typeName},
		})
		if c.team != "" {
			payload.CustomFields = append(payload.CustomFields, customField{
				Type:  "MultiEnumIssueCustomField",
				Name:  "Team(s)",
				Value: []named{{Type: "EnumBundleElement", Name: c.team}},
			})
		}
	}

	telemetry.Info("tracker.create_issue", map[string]any{
		"tracker": "youtrack",
		"type":    typeName,
		"project": c.projectID,
		"labels":  labels,
	})

	var out struct {
		IDReadable string `json:"idReadable"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/issues", url.Values{"fields": {"idReadable"}}, payload, &out); err != nil {
		return tracker.Created{}, err
	}
	if out.IDReadable == "" {
		return tracker.Created{}, errors.New("YouTrack response missing idReadable")
	}
	return tracker.Created{
		IssueID: out.IDReadable,
		URL:     c.base + "/issue/" + out.IDReadable,
	}, nil
}

type issueResponse struct {
	IDReadable  *string `json:"idReadable"`
	Summary     *string `json:"summary"`
	Description *string `json:"description"`
	Project     *struct {
		ShortName *string `json:"shortName"`
		Name      *string `json:"name"`
	} `json:"project"`
	CustomFields []struct {
		Name  string          `json:"name"`
		Value json.RawMessage `json:"value"`
	} `json:"customFields"`
}

// FetchIssue reads an issue with its custom fields.
func (c *Client) FetchIssue(ctx context.Context, issueID string) (tracker.Issue, error) {
	var raw issueResponse
	if err := c.do(ctx, http.MethodGet, "/api/issues/"+url.PathEscape(issueID), url.Values{"fields": {issueFields}}, nil, &raw); err != nil {
		return tracker.Issue{}, err
	}
	issue := tracker.Issue{
		ID:          raw.IDReadable,
		Summary:     raw.Summary,
		Description: raw.Description,
		Fields:      make(map[string]any, len(raw.CustomFields)),
	}
	if raw.Project != nil {
		issue.Project = tracker.Project{Key: raw.Project.ShortName, Name: raw.Project.Name}
	}
	for _, f := range raw.CustomFields {
		if f.Name == "" {
			continue
		}
		issue.Fields[f.Name] = NormalizeFieldValue(f.Value)
	}
	return issue, nil
}

// FetchStatus returns the State custom field of an issue.
func (c *Client) FetchStatus(ctx context.Context, issueID string) (*string, error) {
	issue, err := c.FetchIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if s, ok := issue.Fields[stateField].(string); ok && s != "" {
		return &s, nil
	}
	return nil, nil
}

// UpdateDescription replaces the description of an issue.
func (c *Client) UpdateDescription(ctx context.Context, issueID, description string) error {
	body := map[string]string{"description": description}
	return c.do(ctx, http.MethodPost, "/api/issues/"+url.PathEscape(issueID), url.Values{"fields": {"idReadable"}}, body, nil)
}

// NormalizeFieldValue flattens a custom field value to a name, a list of
// names, a scalar string or nil.
func NormalizeFieldValue(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		var names []string
		for _, entry := range val {
			switch e := entry.(type) {
			case map[string]any:
				if name, ok := e["name"].(string); ok {
					names = append(names, name)
				}
			case string:
				names = append(names, e)
			}
		}
		if len(names) == 0 {
			return nil
		}
		return names
	case map[string]any:
		if name, ok := val["name"].(string); ok {
			return name
		}
		return nil
	case string:
		return val
	case bool, float64:
		return fmt.Sprint(val)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	endpoint := c.base + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode youtrack request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build youtrack request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("youtrack request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return tracker.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("YouTrack response was not valid JSON: %w", err)
	}
	return nil
}
