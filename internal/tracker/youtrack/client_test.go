package youtrack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pmsdoc-backend/internal/tracker"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	return newTestClientWith(t, Config{Token: "tok", ProjectID: "INT", Team: "BE", CustomFields: true}, h)
}

func newTestClientWith(t *testing.T, cfg Config, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg.BaseURL = srv.URL + "/"
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRequiresSettings(t *testing.T) {
	cases := []Config{
		{Token: "t", ProjectID: "P"},
		{BaseURL: "http://yt", ProjectID: "P"},
		{BaseURL: "http://yt", Token: "t"},
	}
	for _, cfg := range cases {
		if _, err := New(cfg); !errors.Is(err, tracker.ErrNotConfigured) {
			t.Fatalf("New(%+v) err = %v, want ErrNotConfigured", cfg, err)
		}
	}
}

func TestCreateIssueSendsPayload(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/issues" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("fields") != "idReadable" {
			t.Errorf("fields = %q", r.URL.Query().Get("fields"))
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"idReadable":"INT-42"}`))
	})

	created, err := c.CreateIssue(context.Background(), "spike", "PMS analysis: Acme", "body", []string{"pms", "analysis"})
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if created.IssueID != "INT-42" {
		t.Fatalf("issue id = %q", created.IssueID)
	}
	if created.URL != c.base+"/issue/INT-42" {
		t.Fatalf("url = %q", created.URL)
	}

	if got["issuetype"].(map[string]any)["name"] != "Spike" {
		t.Fatalf("issuetype = %v", got["issuetype"])
	}
	if got["project"].(map[string]any)["shortName"] != "INT" {
		t.Fatalf("project = %v", got["project"])
	}
	if labels := got["labels"].([]any); len(labels) != 2 {
		t.Fatalf("labels = %v", labels)
	}
	fields := got["customFields"].([]any)
	if len(fields) != 2 {
		t.Fatalf("customFields = %v", fields)
	}
	team := fields[1].(map[string]any)
	if team["name"] != "Team(s)" || team["$type"] != "MultiEnumIssueCustomField" {
		t.Fatalf("team field = %v", team)
	}
}

func TestCreateIssueOmitsCustomFieldsByDefault(t *testing.T) {
	var got map[string]any
	c := newTestClientWith(t, Config{Token: "tok", ProjectID: "INT", Team: "BE"}, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"idReadable":"INT-43"}`))
	})

	if _, err := c.CreateIssue(context.Background(), "task", "s", "d", nil); err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if _, ok := got["customFields"]; ok {
		t.Fatalf("customFields sent without opt-in: %v", got["customFields"])
	}
	if got["issuetype"].(map[string]any)["name"] != "Task" {
		t.Fatalf("issuetype = %v", got["issuetype"])
	}
}

func TestCreateIssueAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad project"}`, http.StatusBadRequest)
	})
	_, err := c.CreateIssue(context.Background(), "task", "s", "d", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("err = %v, want APIError 400", err)
	}
}

func TestCreateIssueMissingID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	if _, err := c.CreateIssue(context.Background(), "task", "s", "d", nil); err == nil {
		t.Fatalf("expected error for missing idReadable")
	}
}

func TestFetchIssueNormalizesFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/issues/INT-7" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"idReadable":"INT-7",
			"summary":"s",
			"description":null,
			"project":{"shortName":"INT","name":"Integrations"},
			"customFields":[
				{"name":"State","value":{"name":"Open","$type":"StateBundleElement"}},
				{"name":"Team(s)","value":[{"name":"BE"},{"name":"FE"}]},
				{"name":"Assignee","value":null},
				{"name":"Estimate","value":3},
				{"name":"Tags","value":[]}
			]}`))
	})

	issue, err := c.FetchIssue(context.Background(), "INT-7")
	if err != nil {
		t.Fatalf("FetchIssue: %v", err)
	}
	if issue.ID == nil || *issue.ID != "INT-7" {
		t.Fatalf("id = %v", issue.ID)
	}
	if issue.Description != nil {
		t.Fatalf("description = %v", *issue.Description)
	}
	if issue.Project.Key == nil || *issue.Project.Key != "INT" {
		t.Fatalf("project = %+v", issue.Project)
	}
	if issue.Fields["State"] != "Open" {
		t.Fatalf("State = %v", issue.Fields["State"])
	}
	teams, ok := issue.Fields["Team(s)"].([]string)
	if !ok || len(teams) != 2 || teams[1] != "FE" {
		t.Fatalf("Team(s) = %v", issue.Fields["Team(s)"])
	}
	if issue.Fields["Assignee"] != nil || issue.Fields["Tags"] != nil {
		t.Fatalf("expected nil values, got %v / %v", issue.Fields["Assignee"], issue.Fields["Tags"])
	}
	if issue.Fields["Estimate"] != "3" {
		t.Fatalf("Estimate = %v", issue.Fields["Estimate"])
	}
}

func TestFetchStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/issues/INT-1":
			_, _ = w.Write([]byte(`{"idReadable":"INT-1","customFields":[{"name":"State","value":{"name":"Done"}}]}`))
		case "/api/issues/INT-2":
			_, _ = w.Write([]byte(`{"idReadable":"INT-2","customFields":[]}`))
		default:
			http.NotFound(w, r)
		}
	})

	status, err := c.FetchStatus(context.Background(), "INT-1")
	if err != nil || status == nil || *status != "Done" {
		t.Fatalf("status = %v, err = %v", status, err)
	}
	status, err = c.FetchStatus(context.Background(), "INT-2")
	if err != nil || status != nil {
		t.Fatalf("expected nil status, got %v, err = %v", status, err)
	}
	if _, err := c.FetchStatus(context.Background(), "INT-404"); !errors.Is(err, tracker.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateDescription(t *testing.T) {
	var body map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/issues/INT-3" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"idReadable":"INT-3"}`))
	})
	if err := c.UpdateDescription(context.Background(), "INT-3", "new text"); err != nil {
		t.Fatalf("UpdateDescription: %v", err)
	}
	if body["description"] != "new text" {
		t.Fatalf("body = %v", body)
	}
}
