package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"pmsdoc-backend/internal/extract"
	"pmsdoc-backend/internal/llm"
)

func newDocumentRouter(env *testEnv, publicBase string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(env.svc, publicBase).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func do(r *gin.Engine, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return body.Error.Code
}

func createViaJSON(t *testing.T, r *gin.Engine, payload map[string]any) string {
	t.Helper()
	raw, _ := json.Marshal(payload)
	w := do(r, http.MethodPost, "/api/v1/pms-documents", "application/json", raw)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp createResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp.ID
}

func TestHandlerCreateMultipartUpload(t *testing.T) {
	env := newTestEnv(t, nil)
	r := newDocumentRouter(env, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("document", "guide.pdf")
	_, _ = fw.Write([]byte("%PDF-1.4\n%fake"))
	_ = mw.WriteField("title", "Acme")
	_ = mw.WriteField("is_booking_engine", "1")
	_ = mw.Close()

	w := do(r, http.MethodPost, "/api/v1/pms-documents", mw.FormDataContentType(), buf.Bytes())
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp createResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)

	doc, err := env.svc.Get(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !doc.IsBookingEngine || doc.Title == nil || *doc.Title != "Acme" {
		t.Fatalf("unexpected document %+v", doc)
	}

	w = do(r, http.MethodGet, "/api/v1/pms-documents/"+resp.ID+"/download", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("download status = %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "guide.pdf") {
		t.Fatalf("disposition = %q", w.Header().Get("Content-Disposition"))
	}
	if w.Body.String() != "%PDF-1.4\n%fake" {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestHandlerCreateValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	r := newDocumentRouter(env, "")

	w := do(r, http.MethodPost, "/api/v1/pms-documents", "application/json", []byte(`{}`))
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "VALIDATION_ERROR" {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodPost, "/api/v1/pms-documents", "application/json",
		[]byte(`{"document_url":"http://127.0.0.1:1/unreachable"}`))
	if w.Code != http.StatusBadRequest || errorCode(t, w) != "REMOTE_FETCH_ERROR" {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestHandlerShowListAndUpdate(t *testing.T) {
	env := newTestEnv(t, modelReturning(reportJSON))
	r := newDocumentRouter(env, "")
	id := createViaJSON(t, r, map[string]any{"document_url": env.docURL, "is_booking_engine": true})

	w := do(r, http.MethodPost, "/api/v1/pms-documents/"+id+"/analyze", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("analyze status = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodGet, "/api/v1/pms-documents?page=1", "", nil)
	var list listResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Data) != 1 || list.Pagination.CurrentPage != 1 || list.Pagination.NextPage != nil || list.Pagination.PrevPage != nil {
		t.Fatalf("list = %+v", list)
	}
	if !list.Data[0].IsBookingEngine {
		t.Fatal("booking engine flag lost")
	}

	w = do(r, http.MethodPatch, "/api/v1/pms-documents/"+id, "application/json", []byte(`{"title":"Renamed"}`))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"title":"Renamed"`) {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodGet, "/api/v1/pms-documents/"+id, "", nil)
	var detail map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &detail)
	if detail["title"] != "Renamed" || detail["analysis_result"] == nil {
		t.Fatalf("detail = %v", detail)
	}

	w = do(r, http.MethodGet, "/api/v1/pms-documents/unknown", "", nil)
	if w.Code != http.StatusNotFound || errorCode(t, w) != "NOT_FOUND" {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestHandlerAnalyzeErrors(t *testing.T) {
	model := llm.CompleterFunc(func(ctx context.Context, system, user string) (json.RawMessage, error) {
		return nil, errors.New("rate limited")
	})
	env := newTestEnv(t, model)
	r := newDocumentRouter(env, "")
	id := createViaJSON(t, r, map[string]any{"document_url": env.docURL})

	w := do(r, http.MethodPost, "/api/v1/pms-documents/"+id+"/analyze", "", nil)
	if w.Code != http.StatusBadGateway || errorCode(t, w) != "ANALYSIS_ERROR" {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodPost, "/api/v1/pms-documents/"+id+"/ticket", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("ticket before analysis status = %d", w.Code)
	}
}

func TestRespondErrEmptyExtraction(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	respondErr(c, &extract.ExtractionError{Stage: extract.StageEmpty, Err: extract.ErrEmptyOutput})

	if w.Code != http.StatusUnprocessableEntity || errorCode(t, w) != "EXTRACTION_ERROR" {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "No readable text") || !strings.Contains(w.Body.String(), `"stage":"empty"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestHandlerTickets(t *testing.T) {
	env := newTestEnv(t, modelReturning(reportJSON))
	r := newDocumentRouter(env, "https://public.test/api/v1")
	id := createViaJSON(t, r, map[string]any{"document_url": env.docURL, "title": "Acme"})
	if w := do(r, http.MethodPost, "/api/v1/pms-documents/"+id+"/analyze", "", nil); w.Code != http.StatusOK {
		t.Fatalf("analyze status = %d", w.Code)
	}

	env.tracker.statuses["INT-1"] = str("Open")
	w := do(r, http.MethodPost, "/api/v1/pms-documents/"+id+"/ticket", "application/json", []byte(`{}`))
	if w.Code != http.StatusOK {
		t.Fatalf("ticket status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"issueId":"INT-1"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
	if !strings.Contains(env.tracker.created[0], "https://public.test/api/v1/pms-documents/"+id+"/download") {
		t.Fatalf("download link missing: %q", env.tracker.created[0])
	}

	env.tracker.statuses["INT-1"] = str("In Progress")
	w = do(r, http.MethodGet, "/api/v1/pms-documents/"+id+"/tickets?refresh=1", "", nil)
	var tickets []ticketResponse
	if err := json.Unmarshal(w.Body.Bytes(), &tickets); err != nil {
		t.Fatalf("decode tickets: %v", err)
	}
	if len(tickets) != 1 || tickets[0].IssueStatus == nil || *tickets[0].IssueStatus != "In Progress" {
		t.Fatalf("tickets = %+v", tickets)
	}

	env.tracker.createErr = errors.New("youtrack 500")
	w = do(r, http.MethodPost, "/api/v1/pms-documents/"+id+"/ticket", "", nil)
	if w.Code != http.StatusBadGateway || errorCode(t, w) != "TRACKER_ERROR" {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestListPagination(t *testing.T) {
	got := toList(Page{Items: []Document{{ID: "a"}}, Page: 2, HasNext: true})
	if got.Pagination.NextPage == nil || *got.Pagination.NextPage != 3 {
		t.Fatalf("next = %v", got.Pagination.NextPage)
	}
	if got.Pagination.PrevPage == nil || *got.Pagination.PrevPage != 1 {
		t.Fatalf("prev = %v", got.Pagination.PrevPage)
	}
}
