package tickets

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PGRequestRepo implements RequestRepo using Postgres.
type PGRequestRepo struct {
	DB *sql.DB
}

func (r *PGRequestRepo) Create(ctx context.Context, req Request) error {
	const query = `
INSERT INTO ticket_requests (
    id,
    request_type,
    mode,
    email_subject,
    email_from,
    email_body,
    email_thread_url,
    ai_summary,
    ai_description,
    ai_labels,
    issue_id,
    status,
    error_message,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)`

	var labels any
	if req.Labels != nil {
		raw, err := json.Marshal(req.Labels)
		if err != nil {
			return fmt.Errorf("marshal labels: %w", err)
		}
		labels = raw
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		req.ID,
		string(req.Type),
		req.Mode,
		req.Email.Subject,
		req.Email.From,
		req.Email.Body,
		req.Email.ThreadURL,
		nullString(req.Summary),
		nullString(req.Description),
		labels,
		nullString(req.IssueID),
		req.Status,
		nullString(req.ErrorMessage),
		req.CreatedAt,
	)
	return err
}

func (r *PGRequestRepo) List(ctx context.Context, limit int) ([]Request, error) {
	const query = `
SELECT id, request_type, mode, email_subject, email_from, email_body, email_thread_url,
       ai_summary, ai_description, ai_labels, issue_id, status, error_message, created_at, updated_at
FROM ticket_requests
ORDER BY created_at DESC
LIMIT $1`
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		var (
			req                           Request
			reqType                       string
			summary, description, issueID sql.NullString
			errMsg                        sql.NullString
			labels                        []byte
		)
		if err := rows.Scan(
			&req.ID,
			&reqType,
			&req.Mode,
			&req.Email.Subject,
			&req.Email.From,
			&req.Email.Body,
			&req.Email.ThreadURL,
			&summary,
			&description,
			&labels,
			&issueID,
			&req.Status,
			&errMsg,
			&req.CreatedAt,
			&req.UpdatedAt,
		); err != nil {
			return nil, err
		}
		req.Type = Type(reqType)
		req.Summary = ptr(summary)
		req.Description = ptr(description)
		req.IssueID = ptr(issueID)
		req.ErrorMessage = ptr(errMsg)
		if len(labels) > 0 {
			if err := json.Unmarshal(labels, &req.Labels); err != nil {
				return nil, fmt.Errorf("decode labels for %s: %w", req.ID, err)
			}
		}
		out = append(out, req)
	}
	return out, rows.Err()
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
