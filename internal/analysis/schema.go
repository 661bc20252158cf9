package analysis

// Variant selects which report key set Validate expects.
type Variant string

const (
	// VariantPMS is the reservation-only report.
	VariantPMS Variant = "pms"
	// VariantBookingEngine is the availability-only report.
	VariantBookingEngine Variant = "booking_engine"
	// VariantCombined carries both key sets; the analyzer always requests it.
	VariantCombined Variant = "combined"
)

// ParseVariant maps a name to a Variant.
func ParseVariant(s string) (Variant, bool) {
	switch Variant(s) {
	case VariantPMS, VariantBookingEngine, VariantCombined:
		return Variant(s), true
	case "booking-engine", "booking":
		return VariantBookingEngine, true
	}
	return "", false
}

var (
	reservationRootKeys = []string{
		"has_get_reservations_endpoint",
		"get_reservations_endpoint",
		"supports_webhooks",
		"webhook_details",
		"fields",
	}
	availabilityRootKeys = []string{
		"has_get_availability_endpoint",
		"get_availability_endpoint",
		"availability_fields",
	}
	commonRootKeys = []string{"optional_fields", "notes"}

	// plainFieldKeys are the reservation fields shaped {available, source_label}.
	plainFieldKeys = []string{
		"check_in_date",
		"checkout_date",
		"first_name",
		"last_name",
		"reservation_id",
		"mobile_phone",
		"email",
	}
	fieldKeys          = append(append([]string{}, plainFieldKeys...), "reservation_status")
	availabilityKeys   = []string{"room_name", "room_image", "price", "currency"}
	fieldEntryKeys     = []string{"available", "source_label"}
	statusEntryKeys    = []string{"available", "source_label", "values"}
	examplePayloadKeys = []string{"format", "payload"}
	exampleRootKeys    = []string{"get_reservations_example"}
)

// RootKeys returns the top-level keys required by v.
func RootKeys(v Variant) []string {
	var keys []string
	switch v {
	case VariantPMS:
		keys = append(keys, reservationRootKeys...)
	case VariantBookingEngine:
		keys = append(keys, availabilityRootKeys...)
	default:
		keys = append(keys, reservationRootKeys...)
		keys = append(keys, availabilityRootKeys...)
	}
	return append(keys, commonRootKeys...)
}

func (v Variant) hasReservations() bool { return v != VariantBookingEngine }
func (v Variant) hasAvailability() bool { return v != VariantPMS }
