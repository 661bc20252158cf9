package analysis

import (
	"regexp"
	"strings"
)

var (
	leadingNonAlnum = regexp.MustCompile(`^[^a-z0-9]+`)
	nonAlnum        = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizeLabel lowercases a label and drops every character outside a-z0-9.
// Accented letters are dropped, not folded.
func NormalizeLabel(label string) string {
	s := strings.ToLower(label)
	s = leadingNonAlnum.ReplaceAllString(s, "")
	return nonAlnum.ReplaceAllString(s, "")
}

// DedupOptional trims optional field labels, drops blanks, drops labels that
// normalize to a required field's source label and removes exact duplicates.
// First-seen order is kept.
func DedupOptional(optional []string, fields FieldMap) []string {
	required := make(map[string]struct{})
	for _, label := range fields.Labels() {
		if n := NormalizeLabel(label); n != "" {
			required[n] = struct{}{}
		}
	}

	out := make([]string, 0, len(optional))
	seen := make(map[string]struct{}, len(optional))
	for _, value := range optional {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if n := NormalizeLabel(trimmed); n != "" {
			if _, ok := required[n]; ok {
				continue
			}
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
