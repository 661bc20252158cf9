package extract

import (
	"regexp"
	"strings"
)

var httpVerb = regexp.MustCompile(`(?i)\b(GET|POST|PUT|PATCH|DELETE)\b`)

// LooksLikeEndpoint reports whether a line names an HTTP verb or a path.
func LooksLikeEndpoint(line string) bool {
	return strings.Contains(line, "/") || httpVerb.MatchString(line)
}

// IsRemovable reports whether a line seen on pageCount pages is a running
// header or footer. Endpoint-like lines are always kept.
func IsRemovable(line string, pageCount int, opts Options) bool {
	if pageCount < opts.RepeatThreshold {
		return false
	}
	n := runeLen(line)
	if n > opts.HardLineCeiling {
		return false
	}
	if LooksLikeEndpoint(line) {
		return false
	}
	return n <= opts.MaxRemovableLen
}

// ShouldUseRaw reports whether filtering removed so much that the raw
// reconstruction should win.
func ShouldUseRaw(raw, filtered string, opts Options) bool {
	rawLen := runeLen(raw)
	filteredLen := runeLen(filtered)

	if rawLen == 0 {
		return false
	}
	if filteredLen == 0 {
		return true
	}
	if rawLen >= opts.RawMinLen && filteredLen < int(float64(rawLen)*opts.RawKeepRatio) {
		return true
	}
	return filteredLen < opts.ShortFilteredLen && rawLen > filteredLen+opts.RawSurplus
}

// PageCounts returns, for every distinct line, the number of pages it appears on.
func PageCounts(pages [][]string) map[string]int {
	counts := make(map[string]int)
	for _, lines := range pages {
		seen := make(map[string]struct{}, len(lines))
		for _, line := range lines {
			if _, ok := seen[line]; ok {
				continue
			}
			seen[line] = struct{}{}
			counts[line]++
		}
	}
	return counts
}

// FilterPages drops removable lines from every page.
func FilterPages(pages [][]string, counts map[string]int, opts Options) [][]string {
	out := make([][]string, len(pages))
	for i, lines := range pages {
		kept := make([]string, 0, len(lines))
		for _, line := range lines {
			if IsRemovable(line, counts[line], opts) {
				continue
			}
			kept = append(kept, line)
		}
		out[i] = kept
	}
	return out
}
