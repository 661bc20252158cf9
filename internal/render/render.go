// Package render loads web pages in a headless browser so documentation
// that is built client-side can still be stored.
package render

import "context"

// Renderer renders a page as text, HTML or PDF. Empty results mean the
// page produced nothing usable.
type Renderer interface {
	RenderText(ctx context.Context, url string) (string, error)
	RenderHTML(ctx context.Context, url string) (string, error)
	RenderPDF(ctx context.Context, url string) ([]byte, error)
}

// Noop is used when no browser is configured.
type Noop struct{}

func (Noop) RenderText(context.Context, string) (string, error) { return "", nil }
func (Noop) RenderHTML(context.Context, string) (string, error) { return "", nil }
func (Noop) RenderPDF(context.Context, string) ([]byte, error)  { return nil, nil }
