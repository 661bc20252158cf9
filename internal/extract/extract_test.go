package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestIsRemovable(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		name  string
		line  string
		count int
		want  bool
	}{
		{name: "repeated footer", line: "Acme PMS API Guide", count: 3, want: true},
		{name: "below threshold", line: "Acme PMS API Guide", count: 2, want: false},
		{name: "http verb kept", line: "GET reservations", count: 9, want: false},
		{name: "lowercase verb kept", line: "post booking", count: 9, want: false},
		{name: "slash kept", line: "v1 reservations/list", count: 9, want: false},
		{name: "verb inside word removed", line: "Getting started", count: 5, want: true},
		{name: "too long", line: strings.Repeat("a", 81), count: 5, want: false},
		{name: "at ceiling", line: strings.Repeat("a", 80), count: 5, want: true},
		{name: "over hard ceiling", line: strings.Repeat("a", 121), count: 5, want: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRemovable(tt.line, tt.count, opts); got != tt.want {
				t.Fatalf("IsRemovable(%q, %d) = %v, want %v", tt.line, tt.count, got, tt.want)
			}
		})
	}
}

func TestShouldUseRaw(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		name     string
		raw      int
		filtered int
		want     bool
	}{
		{name: "empty raw", raw: 0, filtered: 0, want: false},
		{name: "empty filtered", raw: 10, filtered: 0, want: true},
		{name: "large raw heavily filtered", raw: 10000, filtered: 3000, want: true},
		{name: "large raw lightly filtered", raw: 10000, filtered: 9000, want: false},
		{name: "short filtered much shorter", raw: 3500, filtered: 1000, want: true},
		{name: "short filtered close to raw", raw: 2500, filtered: 1000, want: false},
		{name: "short overall", raw: 100, filtered: 90, want: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			raw := strings.Repeat("r", tt.raw)
			filtered := strings.Repeat("f", tt.filtered)
			if got := ShouldUseRaw(raw, filtered, opts); got != tt.want {
				t.Fatalf("ShouldUseRaw(%d, %d) = %v, want %v", tt.raw, tt.filtered, got, tt.want)
			}
		})
	}
}

func TestPageCountsCountsOncePerPage(t *testing.T) {
	counts := PageCounts([][]string{
		{"Header", "Header", "body a"},
		{"Header", "body b"},
	})
	if counts["Header"] != 2 {
		t.Fatalf("expected Header on 2 pages, got %d", counts["Header"])
	}
	if counts["body a"] != 1 {
		t.Fatalf("expected body a on 1 page, got %d", counts["body a"])
	}
}

func TestNormalizePagesDropsRunningFooterKeepsEndpoints(t *testing.T) {
	n := NewNormalizer(DefaultOptions())
	var pages [][]string
	for i := 1; i <= 4; i++ {
		pages = append(pages, []string{
			"Acme Hotel Systems - Confidential",
			"GET /v1/reservations",
			fmt.Sprintf("Page body paragraph number %d describing the reservation payload in detail.", i),
		})
	}

	text, err := n.NormalizePages(pages)
	if err != nil {
		t.Fatalf("NormalizePages: %v", err)
	}
	if strings.Contains(text, "Confidential") {
		t.Fatalf("expected footer removed, got %q", text)
	}
	if strings.Count(text, "GET /v1/reservations") != 4 {
		t.Fatalf("expected endpoint kept on every page, got %q", text)
	}
	if !strings.Contains(text, "paragraph number 3") {
		t.Fatalf("expected body kept")
	}
}

func TestNormalizePagesFallsBackToRawWhenFilterEmptiesText(t *testing.T) {
	n := NewNormalizer(DefaultOptions())
	pages := [][]string{{"Same line"}, {"Same line"}, {"Same line"}}

	text, err := n.NormalizePages(pages)
	if err != nil {
		t.Fatalf("NormalizePages: %v", err)
	}
	if text != "Same line\n\nSame line\n\nSame line" {
		t.Fatalf("expected raw text, got %q", text)
	}
}

func TestNormalizePagesEmpty(t *testing.T) {
	n := NewNormalizer(DefaultOptions())
	_, err := n.NormalizePages([][]string{{}, {}})
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if extractErr.Stage != StageEmpty || !IsEmptyOutput(err) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestCleanLines(t *testing.T) {
	got := CleanLines("  a \t b  \r\n\r\n c\rd\n   \n")
	want := []string{"a b", "c", "d"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("CleanLines = %q, want %q", got, want)
	}
}

func TestCleanLinesComposesUnicode(t *testing.T) {
	got := CleanLines("Teléfono")
	if len(got) != 1 || got[0] != "Teléfono" {
		t.Fatalf("expected NFC form, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("héllo", 5); got != "héllo" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := Truncate("héllo world", 5); got != "héllo"+TruncatedMarker {
		t.Fatalf("unexpected truncation %q", got)
	}
}

func TestExtractHTMLStripsMarkup(t *testing.T) {
	n := NewNormalizer(DefaultOptions())
	doc := `<html><head><style>body { color: red }</style><script>var x = "<b>";</script></head>
<body><h1>Reservations &amp; Guests</h1>


<p>GET   /api/reservations</p>



<p>Returns&nbsp;a list.</p></body></html>`

	text, err := n.ExtractHTML([]byte(doc), "page.html")
	if err != nil {
		t.Fatalf("ExtractHTML: %v", err)
	}
	if strings.Contains(text, "color") || strings.Contains(text, "var x") {
		t.Fatalf("expected script and style removed, got %q", text)
	}
	want := "Reservations & Guests\nGET /api/reservations\nReturns a list."
	if text != want {
		t.Fatalf("ExtractHTML = %q, want %q", text, want)
	}
}

func TestExtractHTMLPlainTextKeepsAngleBrackets(t *testing.T) {
	n := NewNormalizer(DefaultOptions())
	text, err := n.ExtractHTML([]byte("id <reservation_id>\n\nstatus"), "notes.txt")
	if err != nil {
		t.Fatalf("ExtractHTML: %v", err)
	}
	if text != "id <reservation_id>\nstatus" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractRejectsEmptyInput(t *testing.T) {
	n := NewNormalizer(Options{})
	_, err := n.Extract(context.Background(), []byte("  \n"), "doc.html")
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestExtractRejectsMarkupOnly(t *testing.T) {
	n := NewNormalizer(Options{})
	_, err := n.Extract(context.Background(), []byte("<div><span></span></div>"), "doc.html")
	if !errors.Is(err, ErrEmptyOutput) {
		t.Fatalf("expected ErrEmptyOutput, got %v", err)
	}
}

func TestExtractInvalidPDF(t *testing.T) {
	n := NewNormalizer(Options{})
	_, err := n.Extract(context.Background(), []byte("%PDF-1.4 not really a pdf"), "doc.bin")
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) || extractErr.Stage != StageParse {
		t.Fatalf("expected parse ExtractionError, got %v", err)
	}
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Kind
	}{
		{name: "a.PDF", want: KindPDF},
		{name: "a.txt", want: KindText},
		{name: "a.htm", want: KindHTML},
		{name: "download", data: "%PDF-1.7", want: KindPDF},
		{name: "download", data: "<html>", want: KindHTML},
		{name: "notes.txt", data: "%PDF-1.4\n1 0 obj", want: KindPDF},
		{name: "guide.html", data: "\n%PDF-1.7", want: KindPDF},
	}
	for _, tt := range tests {
		if got := DetectKind(tt.name, []byte(tt.data)); got != tt.want {
			t.Fatalf("DetectKind(%q, %q) = %s, want %s", tt.name, tt.data, got, tt.want)
		}
	}
}
