package main

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"pmsdoc-backend/internal/analysis"
)

// reportRows flattens a report into label/available/source rows.
func reportRows(r analysis.Report, booking bool) []table.Row {
	f := r.Fields
	rows := []table.Row{
		{"GET reservations endpoint", yesNo(r.HasGetReservationsEndpoint), deref(r.GetReservationsEndpoint)},
		{"Webhooks", yesNo(r.SupportsWebhooks), deref(r.WebhookDetails)},
		fieldRow("Check-in date", f.CheckInDate),
		fieldRow("Check-out date", f.CheckoutDate),
		fieldRow("First name", f.FirstName),
		fieldRow("Last name", f.LastName),
		fieldRow("Reservation ID", f.ReservationID),
		fieldRow("Mobile phone", f.MobilePhone),
		fieldRow("Email", f.Email),
		{"Reservation status", yesNo(f.ReservationStatus.Available), joinSource(f.ReservationStatus.SourceLabel, f.ReservationStatus.Values)},
	}
	if booking {
		a := r.AvailabilityFields
		rows = append(rows,
			table.Row{"GET availability endpoint", yesNo(r.HasGetAvailabilityEndpoint), deref(r.GetAvailabilityEndpoint)},
			fieldRow("Room name", a.RoomName),
			fieldRow("Room image", a.RoomImage),
			fieldRow("Price", a.Price),
			fieldRow("Currency", a.Currency),
		)
	}
	return rows
}

func renderReport(w io.Writer, r analysis.Report, booking bool) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Field", "Available", "Source"})
	tw.AppendRows(reportRows(r, booking))
	if len(r.OptionalFields) > 0 {
		tw.AppendSeparator()
		tw.AppendRow(table.Row{"Optional fields", "", strings.Join(r.OptionalFields, ", ")})
	}
	tw.Render()

	for _, n := range r.Notes {
		_, _ = io.WriteString(w, "- "+n+"\n")
	}
}

func fieldRow(label string, f analysis.Field) table.Row {
	return table.Row{label, yesNo(f.Available), deref(f.SourceLabel)}
}

func joinSource(label *string, values []string) string {
	s := deref(label)
	if len(values) > 0 {
		s += " (" + strings.Join(values, ", ") + ")"
	}
	return strings.TrimSpace(s)
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
