package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// TruncatedMarker is appended to text cut at MaxOutputChars.
const TruncatedMarker = "\n\n[Truncated]"

var blankRun = regexp.MustCompile(`\n{3,}`)

// CleanLines NFC-normalizes s, splits it into lines, collapses whitespace
// inside each line and drops blank lines.
func CleanLines(s string) []string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var out []string
	for _, line := range strings.Split(s, "\n") {
		collapsed := strings.Join(strings.Fields(line), " ")
		if collapsed == "" {
			continue
		}
		out = append(out, collapsed)
	}
	return out
}

// joinPages joins lines with "\n" and pages with "\n\n", trims the result and
// collapses runs of three or more newlines.
func joinPages(pages [][]string) string {
	parts := make([]string, len(pages))
	for i, lines := range pages {
		parts[i] = strings.Join(lines, "\n")
	}
	text := strings.TrimSpace(strings.Join(parts, "\n\n"))
	return blankRun.ReplaceAllString(text, "\n\n")
}

// Truncate cuts text to max runes and appends TruncatedMarker when it does.
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	n := 0
	for i := range text {
		if n == max {
			return text[:i] + TruncatedMarker
		}
		n++
	}
	return text
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
