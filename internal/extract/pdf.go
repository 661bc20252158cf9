package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// readPDFPages returns the text of each page, one string per text row.
func readPDFPages(data []byte) (pages []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf parser panic: %v", rec)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := pageText(p)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func pageText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return p.GetPlainText(nil)
	}
	var b strings.Builder
	for _, row := range rows {
		for _, t := range row.Content {
			b.WriteString(t.S)
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}
