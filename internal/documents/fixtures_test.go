package documents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"pmsdoc-backend/internal/analysis"
	"pmsdoc-backend/internal/extract"
	"pmsdoc-backend/internal/llm"
	"pmsdoc-backend/internal/shared/storage/object/local"
	"pmsdoc-backend/internal/tickets"
	"pmsdoc-backend/internal/tracker"
)

const reportJSON = `{
  "has_get_reservations_endpoint": true,
  "get_reservations_endpoint": "GET /v1/reservations",
  "has_get_availability_endpoint": true,
  "get_availability_endpoint": "GET /v1/availability",
  "supports_webhooks": false,
  "webhook_details": null,
  "fields": {
    "check_in_date": {"available": true, "source_label": "arrival"},
    "checkout_date": {"available": true, "source_label": "departure"},
    "first_name": {"available": true, "source_label": "first_name"},
    "last_name": {"available": true, "source_label": "last_name"},
    "reservation_id": {"available": true, "source_label": "id"},
    "mobile_phone": {"available": false, "source_label": null},
    "email": {"available": false, "source_label": null},
    "reservation_status": {"available": true, "source_label": "status", "values": ["confirmed"]}
  },
  "availability_fields": {
    "room_name": {"available": true, "source_label": "room"},
    "room_image": {"available": false, "source_label": null},
    "price": {"available": true, "source_label": "rate"},
    "currency": {"available": true, "source_label": "currency"}
  },
  "optional_fields": ["adults"],
  "notes": []
}`

const docHTML = `<html><body>
<h1>Acme PMS API</h1>
<p>GET /v1/reservations returns arrival, departure and status.</p>
<p>GET /v1/availability returns room and rate.</p>
</body></html>`

// stubTracker records calls and answers FetchStatus from statuses.
type stubTracker struct {
	tracker.Noop
	mu        sync.Mutex
	created   []string
	createErr error
	statuses  map[string]*string
	statusErr map[string]error
	nextID    int
}

func (s *stubTracker) CreateIssue(_ context.Context, issueType, summary, description string, labels []string) (tracker.Created, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return tracker.Created{}, s.createErr
	}
	s.nextID++
	id := "INT-" + string(rune('0'+s.nextID))
	s.created = append(s.created, issueType+"|"+summary+"|"+description)
	return tracker.Created{IssueID: id, URL: "https://yt.test/issue/" + id}, nil
}

func (s *stubTracker) FetchStatus(_ context.Context, id string) (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.statusErr[id]; err != nil {
		return nil, err
	}
	return s.statuses[id], nil
}

func str(s string) *string { return &s }

func modelReturning(out string) llm.Completer {
	return llm.CompleterFunc(func(ctx context.Context, system, user string) (json.RawMessage, error) {
		return json.RawMessage(out), nil
	})
}

type testEnv struct {
	svc     *Service
	repo    *MemoryRepo
	tickets *MemoryTicketRepo
	tracker *stubTracker
	docURL  string
}

func newTestEnv(t *testing.T, model llm.Completer) *testEnv {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(docHTML))
	}))
	t.Cleanup(srv.Close)

	env := &testEnv{
		repo:    NewMemoryRepo(),
		tickets: NewMemoryTicketRepo(),
		tracker: &stubTracker{statuses: map[string]*string{}, statusErr: map[string]error{}},
		docURL:  srv.URL + "/acme-api",
	}
	clock := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	env.svc = &Service{
		Repo:       env.repo,
		Tickets:    env.tickets,
		Store:      local.New(t.TempDir()),
		Fetcher:    NewRemoteFetcher(nil),
		Normalizer: extract.NewNormalizer(extract.DefaultOptions()),
		Analyzer:   analysis.NewAnalyzer(model, llm.Prompts{}),
		Composer:   tickets.NewComposer(nil, llm.Prompts{}),
		Tracker:    env.tracker,
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	}
	return env
}
