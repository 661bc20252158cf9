package extract

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var tagLike = regexp.MustCompile(`<[^>]+>`)

// IsPlainText reports whether content should skip markup stripping.
func IsPlainText(fileName string, content []byte) bool {
	if strings.HasSuffix(strings.ToLower(fileName), ".txt") {
		return true
	}
	return !tagLike.Match(content)
}

// StripMarkup drops script and style blocks, removes tags and decodes entities.
func StripMarkup(content []byte) string {
	z := html.NewTokenizer(bytes.NewReader(content))
	var b strings.Builder
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a malformed tail; either way keep what was read.
			return b.String()
		case html.StartTagToken:
			name, _ := z.TagName()
			if isRawBlock(name) {
				skip++
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if isRawBlock(name) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isRawBlock(name []byte) bool {
	n := string(name)
	return n == "script" || n == "style"
}
