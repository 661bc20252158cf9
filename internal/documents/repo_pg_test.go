package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var docColumns = []string{
	"id", "original_filename", "storage_path", "mime_type", "size_bytes", "checksum",
	"source_url", "title", "is_booking_engine", "analysis_result", "analyzed_at",
	"created_at", "updated_at",
}

func newMock(t *testing.T) (*PGRepo, *PGTicketRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, &PGTicketRepo{DB: db}, mock
}

func TestPGRepoCreate(t *testing.T) {
	repo, _, mock := newMock(t)
	now := time.Now().UTC()
	doc := Document{
		ID:               "doc-1",
		OriginalFilename: "guide.pdf",
		StoragePath:      "ns/guide.pdf",
		MimeType:         "application/pdf",
		SizeBytes:        42,
		Checksum:         "abc",
		Title:            str("Acme"),
		CreatedAt:        now,
	}

	mock.ExpectExec("INSERT INTO pms_documents").
		WithArgs("doc-1", "guide.pdf", "ns/guide.pdf", "application/pdf", int64(42), "abc",
			sqlmock.AnyArg(), sqlmock.AnyArg(), false, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByID(t *testing.T) {
	repo, _, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM pms_documents WHERE id").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows(docColumns).AddRow(
			"doc-1", "guide.pdf", "ns/guide.pdf", "application/pdf", int64(42), "abc",
			"https://acme.test/docs", nil, true, []byte(reportJSON), now, now, now,
		))

	doc, err := repo.GetByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if doc.SourceURL == nil || *doc.SourceURL != "https://acme.test/docs" || doc.Title != nil {
		t.Fatalf("unexpected nullable columns: %+v", doc)
	}
	if doc.AnalysisResult == nil || !doc.AnalysisResult.HasGetReservationsEndpoint {
		t.Fatal("stored analysis should be decoded")
	}

	mock.ExpectQuery("SELECT (.+) FROM pms_documents WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(docColumns))
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListAnalyzedPagination(t *testing.T) {
	repo, _, mock := newMock(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(docColumns)
	for i := 0; i < PageSize+1; i++ {
		rows.AddRow("doc", "a.pdf", "k", "application/pdf", int64(1), "c", nil, nil, false, []byte(reportJSON), now, now, now)
	}
	mock.ExpectQuery("WHERE analysis_result IS NOT NULL").
		WithArgs(PageSize+1, PageSize).
		WillReturnRows(rows)

	docs, hasNext, err := repo.ListAnalyzed(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListAnalyzed: %v", err)
	}
	if len(docs) != PageSize || !hasNext {
		t.Fatalf("got %d docs, hasNext=%v", len(docs), hasNext)
	}
}

func TestPGRepoUpdateTitleNotFound(t *testing.T) {
	repo, _, mock := newMock(t)
	mock.ExpectExec("UPDATE pms_documents SET title").
		WithArgs("missing", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdateTitle(context.Background(), "missing", nil, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGTicketRepo(t *testing.T) {
	_, repo, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO pms_document_tickets").
		WithArgs("t-1", "doc-1", "INT-1", "https://yt.test/issue/INT-1", sqlmock.AnyArg(), "spike", now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("FROM pms_document_tickets").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "document_id", "issue_id", "issue_url", "issue_status", "issue_type", "created_at", "updated_at"}).
			AddRow("t-1", "doc-1", "INT-1", "https://yt.test/issue/INT-1", "Open", "spike", now, now))
	mock.ExpectExec("DELETE FROM pms_document_tickets").
		WithArgs("t-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	if err := repo.Create(ctx, Ticket{ID: "t-1", DocumentID: "doc-1", IssueID: "INT-1", IssueURL: "https://yt.test/issue/INT-1", IssueType: "spike", CreatedAt: now}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	list, err := repo.ListByDocument(ctx, "doc-1")
	if err != nil {
		t.Fatalf("ListByDocument: %v", err)
	}
	if len(list) != 1 || list[0].IssueStatus == nil || *list[0].IssueStatus != "Open" {
		t.Fatalf("unexpected tickets %+v", list)
	}
	if err := repo.Delete(ctx, "t-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
