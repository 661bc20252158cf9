package analysis

import (
	"encoding/json"
	"testing"
)

const validReportJSON = `{
  "has_get_reservations_endpoint": true,
  "get_reservations_endpoint": "GET /v1/reservations",
  "has_get_availability_endpoint": true,
  "get_availability_endpoint": "GET /v1/availability",
  "supports_webhooks": false,
  "webhook_details": null,
  "fields": {
    "check_in_date": {"available": true, "source_label": "arrival"},
    "checkout_date": {"available": true, "source_label": "departure"},
    "first_name": {"available": true, "source_label": "nombre"},
    "last_name": {"available": false, "source_label": null},
    "reservation_id": {"available": true, "source_label": "booking_id"},
    "mobile_phone": {"available": true, "source_label": "@Telefono"},
    "email": {"available": false, "source_label": null},
    "reservation_status": {"available": true, "source_label": "status", "values": ["confirmed", "cancelled"]}
  },
  "availability_fields": {
    "room_name": {"available": true, "source_label": "room_type_name"},
    "room_image": {"available": false, "source_label": null},
    "price": {"available": true, "source_label": "rate"},
    "currency": {"available": true, "source_label": "currency_code"}
  },
  "optional_fields": ["telefono", "Room Type", " Room Type ", "STATUS:", "modified_date_time"],
  "notes": ["Pagination via cursor."]
}`

// reportTree returns a fresh decoded copy of validReportJSON.
func reportTree(t *testing.T) map[string]any {
	t.Helper()
	tree, err := decodeTree([]byte(validReportJSON))
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return tree
}

func subtree(t *testing.T, tree map[string]any, keys ...string) map[string]any {
	t.Helper()
	cur := tree
	for _, k := range keys {
		next, ok := cur[k].(map[string]any)
		if !ok {
			t.Fatalf("fixture missing object %q", k)
		}
		cur = next
	}
	return cur
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}
