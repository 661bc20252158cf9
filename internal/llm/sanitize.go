package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// StripCodeFence removes a surrounding ``` or ```json fence, if present.
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// language tag line
		if tag := strings.TrimSpace(s[:nl]); !strings.ContainsAny(tag, "{[") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// DecodeObject strips code fences and decodes a JSON object into an untyped tree.
// Numbers are kept as json.Number.
func DecodeObject(raw json.RawMessage) (map[string]any, error) {
	clean := StripCodeFence(string(raw))
	if clean == "" {
		return nil, ErrEmptyResponse
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(clean)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("model returned invalid JSON: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return obj, nil
}
