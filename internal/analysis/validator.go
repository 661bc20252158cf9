package analysis

import (
	"sort"
	"strings"
)

// Validate checks an untyped JSON tree against the report schema for v.
// The first violation is returned as a *SchemaError.
func Validate(candidate any, v Variant) error {
	root, ok := candidate.(map[string]any)
	if !ok {
		return schemaErr("root", "root must be an object.")
	}
	if err := exactKeys(root, RootKeys(v), "root"); err != nil {
		return err
	}

	if v.hasReservations() {
		if err := boolean(root["has_get_reservations_endpoint"], "has_get_reservations_endpoint"); err != nil {
			return err
		}
	}
	if v.hasAvailability() {
		if err := boolean(root["has_get_availability_endpoint"], "has_get_availability_endpoint"); err != nil {
			return err
		}
	}
	if v.hasReservations() {
		if err := boolean(root["supports_webhooks"], "supports_webhooks"); err != nil {
			return err
		}
		if err := nullableString(root["get_reservations_endpoint"], "get_reservations_endpoint"); err != nil {
			return err
		}
	}
	if v.hasAvailability() {
		if err := nullableString(root["get_availability_endpoint"], "get_availability_endpoint"); err != nil {
			return err
		}
	}
	if v.hasReservations() {
		if err := nullableString(root["webhook_details"], "webhook_details"); err != nil {
			return err
		}
	}
	if err := stringArray(root["optional_fields"], "optional_fields"); err != nil {
		return err
	}
	if err := stringArray(root["notes"], "notes"); err != nil {
		return err
	}

	if v.hasReservations() {
		if err := gate(root, "has_get_reservations_endpoint", "get_reservations_endpoint"); err != nil {
			return err
		}
	}
	if v.hasAvailability() {
		if err := gate(root, "has_get_availability_endpoint", "get_availability_endpoint"); err != nil {
			return err
		}
	}
	if v.hasReservations() {
		if err := gate(root, "supports_webhooks", "webhook_details"); err != nil {
			return err
		}
		if err := validateFields(root["fields"]); err != nil {
			return err
		}
	}
	if v.hasAvailability() {
		if err := validateAvailability(root["availability_fields"]); err != nil {
			return err
		}
	}
	return nil
}

// ValidateExample checks the example-extraction output.
func ValidateExample(candidate any) error {
	root, ok := candidate.(map[string]any)
	if !ok {
		return schemaErr("root", "root must be an object.")
	}
	if err := exactKeys(root, exampleRootKeys, "root"); err != nil {
		return err
	}
	return examplePayload(root["get_reservations_example"], "get_reservations_example")
}

func validateFields(value any) error {
	fields, ok := value.(map[string]any)
	if !ok {
		return schemaErr("fields", "fields must be an object.")
	}
	if err := exactKeys(fields, fieldKeys, "fields"); err != nil {
		return err
	}
	for _, key := range plainFieldKeys {
		if err := field(fields[key], "fields."+key); err != nil {
			return err
		}
	}

	const path = "fields.reservation_status"
	status, ok := fields["reservation_status"].(map[string]any)
	if !ok {
		return schemaErr(path, "%s must be an object.", path)
	}
	if err := exactKeys(status, statusEntryKeys, path); err != nil {
		return err
	}
	if err := boolean(status["available"], path+".available"); err != nil {
		return err
	}
	if err := nullableString(status["source_label"], path+".source_label"); err != nil {
		return err
	}
	if err := stringArray(status["values"], path+".values"); err != nil {
		return err
	}

	available := status["available"].(bool)
	if !available && len(status["values"].([]any)) > 0 {
		return schemaErr(path+".values", "%s.values must be empty when unavailable.", path)
	}
	return labelGate(available, status["source_label"], path)
}

func validateAvailability(value any) error {
	fields, ok := value.(map[string]any)
	if !ok {
		return schemaErr("availability_fields", "availability_fields must be an object.")
	}
	if err := exactKeys(fields, availabilityKeys, "availability_fields"); err != nil {
		return err
	}
	for _, key := range availabilityKeys {
		if err := field(fields[key], "availability_fields."+key); err != nil {
			return err
		}
	}
	return nil
}

func field(value any, path string) error {
	entry, ok := value.(map[string]any)
	if !ok {
		return schemaErr(path, "%s must be an object.", path)
	}
	if err := exactKeys(entry, fieldEntryKeys, path); err != nil {
		return err
	}
	if err := boolean(entry["available"], path+".available"); err != nil {
		return err
	}
	if err := nullableString(entry["source_label"], path+".source_label"); err != nil {
		return err
	}
	return labelGate(entry["available"].(bool), entry["source_label"], path)
}

func labelGate(available bool, label any, path string) error {
	if !available && label != nil {
		return schemaErr(path+".source_label", "%s.source_label must be null when unavailable.", path)
	}
	if available && label == nil {
		return schemaErr(path+".source_label", "%s.source_label must be set when available.", path)
	}
	return nil
}

func examplePayload(value any, path string) error {
	entry, ok := value.(map[string]any)
	if !ok {
		return schemaErr(path, "%s must be an object.", path)
	}
	if err := exactKeys(entry, examplePayloadKeys, path); err != nil {
		return err
	}
	if err := nullableString(entry["format"], path+".format"); err != nil {
		return err
	}
	payload := entry["payload"]
	if payload != nil && !nonBlank(payload) {
		return schemaErr(path+".payload", "%s.payload must be a non-empty string or null.", path)
	}
	if payload == nil && entry["format"] != nil {
		return schemaErr(path+".format", "%s.format must be null when payload is null.", path)
	}
	if payload != nil && entry["format"] == nil {
		return schemaErr(path+".format", "%s.format must be set when payload is provided.", path)
	}
	return nil
}

// gate enforces that a nullable field is null when its boolean flag is false.
func gate(root map[string]any, flag, dependent string) error {
	if root[flag] == false && root[dependent] != nil {
		return schemaErr(dependent, "%s must be null when %s is false.", dependent, flag)
	}
	return nil
}

func exactKeys(payload map[string]any, keys []string, context string) error {
	got := make([]string, 0, len(payload))
	for k := range payload {
		got = append(got, k)
	}
	want := append([]string(nil), keys...)
	sort.Strings(got)
	sort.Strings(want)
	if len(got) != len(want) {
		return schemaErr(context, "%s keys do not match required schema.", context)
	}
	for i := range got {
		if got[i] != want[i] {
			return schemaErr(context, "%s keys do not match required schema.", context)
		}
	}
	return nil
}

func boolean(value any, path string) error {
	if _, ok := value.(bool); !ok {
		return schemaErr(path, "%s must be a boolean.", path)
	}
	return nil
}

func nullableString(value any, path string) error {
	if value == nil || nonBlank(value) {
		return nil
	}
	return schemaErr(path, "%s must be a non-empty string or null.", path)
}

func stringArray(value any, path string) error {
	items, ok := value.([]any)
	if !ok {
		return schemaErr(path, "%s must be an array.", path)
	}
	for _, item := range items {
		if !nonBlank(item) {
			return schemaErr(path, "%s entries must be non-empty strings.", path)
		}
	}
	return nil
}

func nonBlank(value any) bool {
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) != ""
}
