// Package extract turns PDF, HTML and plain-text documents into clean,
// size-bounded text.
package extract

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
)

// Kind is the detected document format.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindHTML Kind = "html"
	KindText Kind = "text"
)

// DetectKind picks a Kind for data. A %PDF signature wins over the file
// extension; otherwise the extension decides, defaulting to HTML.
func DetectKind(fileName string, data []byte) Kind {
	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("%PDF")) {
		return KindPDF
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return KindPDF
	case ".txt":
		return KindText
	}
	return KindHTML
}

// Normalizer extracts text with a fixed set of thresholds.
type Normalizer struct {
	opts Options
}

// NewNormalizer returns a Normalizer. Zero-valued options fall back to defaults.
func NewNormalizer(opts Options) *Normalizer {
	if opts == (Options{}) {
		opts = DefaultOptions()
	}
	return &Normalizer{opts: opts}
}

// Options returns the thresholds in use.
func (n *Normalizer) Options() Options { return n.opts }

// Extract dispatches on the detected kind.
func (n *Normalizer) Extract(ctx context.Context, data []byte, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return "", fail(StageRead, ErrEmptyInput)
	}
	if DetectKind(fileName, data) == KindPDF {
		return n.ExtractPDF(data)
	}
	return n.ExtractHTML(data, fileName)
}

// ExtractPDF parses data page by page and applies the header/footer filter.
func (n *Normalizer) ExtractPDF(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fail(StageRead, ErrEmptyInput)
	}
	raw, err := readPDFPages(data)
	if err != nil {
		return "", fail(StageParse, err)
	}
	if len(raw) == 0 {
		return "", fail(StageParse, ErrNoPages)
	}
	pages := make([][]string, len(raw))
	for i, p := range raw {
		pages[i] = CleanLines(p)
	}
	return n.NormalizePages(pages)
}

// NormalizePages builds the raw and filtered reconstructions of already
// cleaned pages and returns whichever survives the fallback rules, truncated.
func (n *Normalizer) NormalizePages(pages [][]string) (string, error) {
	counts := PageCounts(pages)
	raw := joinPages(pages)
	text := joinPages(FilterPages(pages, counts, n.opts))

	if text == "" && raw != "" {
		text = raw
	}
	if raw != "" && ShouldUseRaw(raw, text, n.opts) {
		text = raw
	}
	return n.finish(text)
}

// ExtractHTML strips markup unless the content is plain text, then normalizes lines.
func (n *Normalizer) ExtractHTML(data []byte, fileName string) (string, error) {
	if len(data) == 0 {
		return "", fail(StageRead, ErrEmptyInput)
	}
	content := string(data)
	if !IsPlainText(fileName, data) {
		content = StripMarkup(data)
	}
	return n.finish(joinPages([][]string{CleanLines(content)}))
}

func (n *Normalizer) finish(text string) (string, error) {
	text = Truncate(text, n.opts.MaxOutputChars)
	if text == "" {
		return "", fail(StageEmpty, ErrEmptyOutput)
	}
	return text, nil
}

// IsEmptyOutput reports whether err means the document had no usable text.
func IsEmptyOutput(err error) bool {
	return errors.Is(err, ErrEmptyOutput) || errors.Is(err, ErrEmptyInput)
}
