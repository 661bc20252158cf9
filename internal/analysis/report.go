// Package analysis validates model output against the capability report
// schema and turns it into a typed Report.
package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is one required field of the report.
type Field struct {
	Available   bool    `json:"available"`
	SourceLabel *string `json:"source_label"`
}

// StatusField is the reservation status entry, which also lists the documented values.
type StatusField struct {
	Available   bool     `json:"available"`
	SourceLabel *string  `json:"source_label"`
	Values      []string `json:"values"`
}

// FieldMap holds the reservation fields.
type FieldMap struct {
	CheckInDate       Field       `json:"check_in_date"`
	CheckoutDate      Field       `json:"checkout_date"`
	FirstName         Field       `json:"first_name"`
	LastName          Field       `json:"last_name"`
	ReservationID     Field       `json:"reservation_id"`
	MobilePhone       Field       `json:"mobile_phone"`
	Email             Field       `json:"email"`
	ReservationStatus StatusField `json:"reservation_status"`
}

// Labels returns the non-empty source labels of every required field, in key order.
func (f FieldMap) Labels() []string {
	var out []string
	for _, l := range []*string{
		f.CheckInDate.SourceLabel,
		f.CheckoutDate.SourceLabel,
		f.FirstName.SourceLabel,
		f.LastName.SourceLabel,
		f.ReservationID.SourceLabel,
		f.MobilePhone.SourceLabel,
		f.Email.SourceLabel,
		f.ReservationStatus.SourceLabel,
	} {
		if l != nil && *l != "" {
			out = append(out, *l)
		}
	}
	return out
}

// AvailabilityFieldMap holds the booking-engine availability fields.
type AvailabilityFieldMap struct {
	RoomName  Field `json:"room_name"`
	RoomImage Field `json:"room_image"`
	Price     Field `json:"price"`
	Currency  Field `json:"currency"`
}

// Report is a validated capability report.
type Report struct {
	HasGetReservationsEndpoint bool                 `json:"has_get_reservations_endpoint"`
	GetReservationsEndpoint    *string              `json:"get_reservations_endpoint"`
	HasGetAvailabilityEndpoint bool                 `json:"has_get_availability_endpoint"`
	GetAvailabilityEndpoint    *string              `json:"get_availability_endpoint"`
	SupportsWebhooks           bool                 `json:"supports_webhooks"`
	WebhookDetails             *string              `json:"webhook_details"`
	Fields                     FieldMap             `json:"fields"`
	AvailabilityFields         AvailabilityFieldMap `json:"availability_fields"`
	OptionalFields             []string             `json:"optional_fields"`
	Notes                      []string             `json:"notes"`
}

// MarshalJSON writes empty lists as [] rather than null.
func (r Report) MarshalJSON() ([]byte, error) {
	type plain Report
	p := plain(r)
	if p.OptionalFields == nil {
		p.OptionalFields = []string{}
	}
	if p.Notes == nil {
		p.Notes = []string{}
	}
	if p.Fields.ReservationStatus.Values == nil {
		p.Fields.ReservationStatus.Values = []string{}
	}
	return json.Marshal(p)
}

// ToMap returns the report as an untyped JSON tree.
func (r Report) ToMap() (map[string]any, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return decodeTree(raw)
}

// Validate re-checks a typed report, e.g. one loaded from storage, against the combined schema.
func (r Report) Validate() error {
	m, err := r.ToMap()
	if err != nil {
		return err
	}
	return Validate(m, VariantCombined)
}

// ExamplePayload is a documented response example for GET reservations.
type ExamplePayload struct {
	Format  *string `json:"format"`
	Payload *string `json:"payload"`
}

// Example wraps the example payload the way the model returns it.
type Example struct {
	GetReservationsExample ExamplePayload `json:"get_reservations_example"`
}

// fromTree converts a validated JSON tree into dst.
func fromTree(tree map[string]any, dst any) error {
	raw, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode report: %w", err)
	}
	return nil
}

func decodeTree(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseReport decodes and validates a stored report.
func ParseReport(raw []byte) (Report, error) {
	tree, err := decodeTree(raw)
	if err != nil {
		return Report{}, fmt.Errorf("decode report: %w", err)
	}
	if err := Validate(tree, VariantCombined); err != nil {
		return Report{}, err
	}
	var r Report
	if err := fromTree(tree, &r); err != nil {
		return Report{}, err
	}
	return r, nil
}
