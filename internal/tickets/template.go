package tickets

import (
	"strings"

	"pmsdoc-backend/internal/analysis"
)

// RenderTemplate writes the deterministic description for a report.
func RenderTemplate(report analysis.Report, doc DocumentIdentity, t Type) string {
	if t == TypeSpike {
		return renderSpike(doc)
	}
	return renderTask(report, doc)
}

func renderTask(r analysis.Report, doc DocumentIdentity) string {
	lines := []string{
		"Source file: " + doc.Source(),
		"Document ID: " + doc.ID,
		"",
		"GET reservations endpoint: " + yesNo(r.HasGetReservationsEndpoint),
	}
	if v := deref(r.GetReservationsEndpoint); v != "" {
		lines = append(lines, "Endpoint: "+v)
	}
	lines = append(lines, "Webhooks: "+yesNo(r.SupportsWebhooks))
	if v := deref(r.WebhookDetails); v != "" {
		lines = append(lines, "Webhook details: "+v)
	}

	lines = append(lines, "", "Fields:")
	f := r.Fields
	for _, entry := range []struct {
		label string
		field analysis.Field
	}{
		{"Check-in date", f.CheckInDate},
		{"Check-out date", f.CheckoutDate},
		{"First name", f.FirstName},
		{"Last name", f.LastName},
		{"Reservation ID", f.ReservationID},
		{"Mobile phone", f.MobilePhone},
		{"Email", f.Email},
	} {
		lines = append(lines, fieldLine(entry.label, entry.field.Available, entry.field.SourceLabel))
	}
	status := f.ReservationStatus
	lines = append(lines, fieldLine("Reservation status", status.Available, status.SourceLabel))
	if len(status.Values) > 0 {
		lines = append(lines, "  Values: "+strings.Join(status.Values, ", "))
	}

	if len(r.Notes) > 0 {
		lines = append(lines, "", "Notes:")
		for _, note := range r.Notes {
			if note != "" {
				lines = append(lines, "- "+note)
			}
		}
	}
	return strings.Join(lines, "\n")
}

func renderSpike(doc DocumentIdentity) string {
	lines := []string{
		"Context:",
		"Integrate with the following PMS: " + doc.Source() + ".",
	}
	if title := strings.TrimSpace(doc.Title); title != "" {
		lines = append(lines, "Document title: "+title+".")
	}
	lines = append(lines,
		"",
		"Goal:",
		"Fetch reservations from the PMS and create tickets in YouTrack.",
		"",
		"Scope:",
		"- Review documented endpoints and required fields for integration readiness.",
		"- Validate GET reservations endpoint availability and response structure.",
		"- Confirm webhook support and payload expectations.",
		"",
		"Expected Outcome:",
		"- Clear mapping of required fields and any gaps to complete the campaigns integration.",
		"",
		"Conclusion:",
		"Pending spike investigation.",
		"",
		"Next Steps:",
		"After successful integration, create the next ticket.",
		"",
		"Documentation:",
	)
	if link := strings.TrimSpace(doc.DownloadURL); link != "" {
		lines = append(lines, link)
	} else {
		lines = append(lines, "Document: "+doc.Source())
	}
	return strings.Join(lines, "\n")
}

func fieldLine(label string, available bool, sourceLabel *string) string {
	line := "- " + label + ": " + yesNo(available)
	if v := deref(sourceLabel); v != "" {
		line += " (source label: " + v + ")"
	}
	return line
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
