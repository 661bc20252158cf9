package documents

import (
	"time"

	"pmsdoc-backend/internal/analysis"
)

type documentSummary struct {
	ID               string  `json:"id"`
	OriginalFilename string  `json:"original_filename"`
	SourceURL        *string `json:"source_url"`
	Title            *string `json:"title"`
	IsBookingEngine  bool    `json:"is_booking_engine"`
	CreatedAt        string  `json:"created_at"`
}

type documentDetail struct {
	documentSummary
	AnalysisResult *analysis.Report `json:"analysis_result"`
}

type pagination struct {
	CurrentPage int  `json:"current_page"`
	NextPage    *int `json:"next_page"`
	PrevPage    *int `json:"prev_page"`
}

type listResponse struct {
	Data       []documentSummary `json:"data"`
	Pagination pagination        `json:"pagination"`
}

type createResponse struct {
	ID string `json:"id"`
}

type titleResponse struct {
	ID    string  `json:"id"`
	Title *string `json:"title"`
}

type ticketResponse struct {
	ID          string  `json:"id"`
	IssueID     string  `json:"issue_id"`
	IssueURL    string  `json:"issue_url"`
	IssueStatus *string `json:"issue_status"`
	IssueType   string  `json:"issue_type"`
	CreatedAt   string  `json:"created_at"`
}

func toSummary(d Document) documentSummary {
	return documentSummary{
		ID:               d.ID,
		OriginalFilename: d.OriginalFilename,
		SourceURL:        d.SourceURL,
		Title:            d.Title,
		IsBookingEngine:  d.IsBookingEngine,
		CreatedAt:        isoTime(d.CreatedAt),
	}
}

func toDetail(d Document) documentDetail {
	return documentDetail{documentSummary: toSummary(d), AnalysisResult: d.AnalysisResult}
}

func toList(p Page) listResponse {
	out := listResponse{
		Data:       make([]documentSummary, 0, len(p.Items)),
		Pagination: pagination{CurrentPage: p.Page},
	}
	for _, d := range p.Items {
		out.Data = append(out.Data, toSummary(d))
	}
	if p.HasNext {
		next := p.Page + 1
		out.Pagination.NextPage = &next
	}
	if p.Page > 1 {
		prev := p.Page - 1
		out.Pagination.PrevPage = &prev
	}
	return out
}

func toTickets(list []Ticket) []ticketResponse {
	out := make([]ticketResponse, 0, len(list))
	for _, t := range list {
		out = append(out, ticketResponse{
			ID:          t.ID,
			IssueID:     t.IssueID,
			IssueURL:    t.IssueURL,
			IssueStatus: t.IssueStatus,
			IssueType:   t.IssueType,
			CreatedAt:   isoTime(t.CreatedAt),
		})
	}
	return out
}

func isoTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05.000000Z")
}
