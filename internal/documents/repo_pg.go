package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pmsdoc-backend/internal/analysis"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, original_filename, storage_path, mime_type, size_bytes, checksum, source_url, title, is_booking_engine, analysis_result, analyzed_at, created_at, updated_at`

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO pms_documents (
    id,
    original_filename,
    storage_path,
    mime_type,
    size_bytes,
    checksum,
    source_url,
    title,
    is_booking_engine,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.OriginalFilename,
		doc.StoragePath,
		doc.MimeType,
		doc.SizeBytes,
		doc.Checksum,
		nullString(doc.SourceURL),
		nullString(doc.Title),
		doc.IsBookingEngine,
		doc.CreatedAt,
	)
	return err
}

// GetByID fetches a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	query := `SELECT ` + documentColumns + ` FROM pms_documents WHERE id = $1 LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListAnalyzed fetches one extra row to tell whether a next page exists.
func (r *PGRepo) ListAnalyzed(ctx context.Context, page int) ([]Document, bool, error) {
	if page < 1 {
		page = 1
	}
	query := `SELECT ` + documentColumns + `
FROM pms_documents
WHERE analysis_result IS NOT NULL
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, PageSize+1, (page-1)*PageSize)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, false, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	hasNext := len(docs) > PageSize
	if hasNext {
		docs = docs[:PageSize]
	}
	return docs, hasNext, nil
}

// UpdateTitle sets or clears the title.
func (r *PGRepo) UpdateTitle(ctx context.Context, id string, title *string, at time.Time) error {
	const query = `UPDATE pms_documents SET title = $2, updated_at = $3 WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, nullString(title), at)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// SaveAnalysis stores the validated report.
func (r *PGRepo) SaveAnalysis(ctx context.Context, id string, report analysis.Report, at time.Time) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	const query = `UPDATE pms_documents SET analysis_result = $2, analyzed_at = $3, updated_at = $3 WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, raw, at)
	if err != nil {
		return err
	}
	return expectOne(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var (
		doc        Document
		sourceURL  sql.NullString
		title      sql.NullString
		result     []byte
		analyzedAt sql.NullTime
	)
	if err := row.Scan(
		&doc.ID,
		&doc.OriginalFilename,
		&doc.StoragePath,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.Checksum,
		&sourceURL,
		&title,
		&doc.IsBookingEngine,
		&result,
		&analyzedAt,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	); err != nil {
		return Document{}, err
	}
	doc.SourceURL = ptr(sourceURL)
	doc.Title = ptr(title)
	if analyzedAt.Valid {
		doc.AnalyzedAt = &analyzedAt.Time
	}
	if len(result) > 0 {
		report, err := analysis.ParseReport(result)
		if err != nil {
			return Document{}, fmt.Errorf("stored analysis for %s: %w", doc.ID, err)
		}
		doc.AnalysisResult = &report
	}
	return doc, nil
}

// PGTicketRepo implements TicketRepo using Postgres.
type PGTicketRepo struct {
	DB *sql.DB
}

func (r *PGTicketRepo) Create(ctx context.Context, t Ticket) error {
	const query = `
INSERT INTO pms_document_tickets (
    id,
    document_id,
    issue_id,
    issue_url,
    issue_status,
    issue_type,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		t.ID,
		t.DocumentID,
		t.IssueID,
		t.IssueURL,
		nullString(t.IssueStatus),
		t.IssueType,
		t.CreatedAt,
	)
	return err
}

func (r *PGTicketRepo) ListByDocument(ctx context.Context, documentID string) ([]Ticket, error) {
	const query = `
SELECT id, document_id, issue_id, issue_url, issue_status, issue_type, created_at, updated_at
FROM pms_document_tickets
WHERE document_id = $1
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Ticket{}
	for rows.Next() {
		var (
			t      Ticket
			status sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.DocumentID, &t.IssueID, &t.IssueURL, &status, &t.IssueType, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.IssueStatus = ptr(status)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PGTicketRepo) UpdateStatus(ctx context.Context, id string, status *string, at time.Time) error {
	const query = `UPDATE pms_document_tickets SET issue_status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, nullString(status), at)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *PGTicketRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM pms_document_tickets WHERE id = $1`, id)
	return err
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func ptr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
