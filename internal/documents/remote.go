package documents

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode"

	"pmsdoc-backend/internal/render"
	"pmsdoc-backend/internal/shared/telemetry"
	"pmsdoc-backend/internal/shared/util"
)

const (
	// MaxDocumentBytes caps uploads and fetched documents.
	MaxDocumentBytes = 20 << 20
	fetchTimeout     = 20 * time.Second
	defaultFileName  = "pms-document"
)

// RemoteFile is a fetched document ready to be stored.
type RemoteFile struct {
	Name string
	Data []byte
}

// RemoteFetcher downloads documentation from a URL, falling back to a
// headless browser for pages built client-side.
type RemoteFetcher struct {
	Client   *http.Client
	Renderer render.Renderer
	MaxBytes int64
}

// NewRemoteFetcher returns a fetcher with a 20s HTTP timeout.
func NewRemoteFetcher(renderer render.Renderer) *RemoteFetcher {
	if renderer == nil {
		renderer = render.Noop{}
	}
	return &RemoteFetcher{
		Client:   &http.Client{Timeout: fetchTimeout},
		Renderer: renderer,
		MaxBytes: MaxDocumentBytes,
	}
}

// Fetch tries, in order: a direct PDF download, rendered page text,
// rendered HTML, a rendered PDF and finally the static response body.
func (f *RemoteFetcher) Fetch(ctx context.Context, rawURL string) (RemoteFile, error) {
	body, contentType, disposition, status := f.download(ctx, rawURL)

	if len(body) > 0 && LooksLikePDF(rawURL, contentType, body) {
		return f.file(rawURL, ResolveFileName(rawURL, disposition, "pdf"), body)
	}

	if text := f.renderText(ctx, rawURL); text != "" {
		return f.file(rawURL, ResolveFileName(rawURL, "", "txt"), []byte(text))
	}

	if html, err := f.Renderer.RenderHTML(ctx, rawURL); err != nil {
		f.warn(rawURL, "html", err)
	} else if html != "" {
		return f.file(rawURL, ResolveFileName(rawURL, "", "html"), []byte(html))
	}

	if pdf, err := f.Renderer.RenderPDF(ctx, rawURL); err != nil {
		f.warn(rawURL, "pdf", err)
	} else if len(pdf) > 0 && LooksLikePDF(rawURL, "application/pdf", pdf) {
		return f.file(rawURL, ResolveFileName(rawURL, "", "pdf"), pdf)
	}

	if len(body) > 0 {
		return f.file(rawURL, ResolveFileName(rawURL, "", "html"), body)
	}

	if status != 0 && (status < 200 || status >= 300) {
		return RemoteFile{}, &RemoteFetchError{URL: rawURL, Reason: "Unable to download the document from the provided URL."}
	}
	return RemoteFile{}, &RemoteFetchError{URL: rawURL, Reason: "Unable to fetch the document from the provided URL."}
}

// download performs the plain GET. Transport errors and non-2xx responses
// yield an empty body so the renderer still gets a chance.
func (f *RemoteFetcher) download(ctx context.Context, rawURL string) (body []byte, contentType, disposition string, status int) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", "", 0
	}
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		f.warn(rawURL, "download", err)
		return nil, "", "", 0
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", "", resp.StatusCode
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes()+1))
	if err != nil {
		f.warn(rawURL, "download", err)
		return nil, "", "", resp.StatusCode
	}
	return data, resp.Header.Get("Content-Type"), resp.Header.Get("Content-Disposition"), resp.StatusCode
}

func (f *RemoteFetcher) renderText(ctx context.Context, rawURL string) string {
	text, err := f.Renderer.RenderText(ctx, rawURL)
	if err != nil {
		f.warn(rawURL, "text", err)
		return ""
	}
	text = strings.TrimSpace(text)
	if !IsUsefulText(text) {
		return ""
	}
	return text
}

func (f *RemoteFetcher) file(rawURL, name string, data []byte) (RemoteFile, error) {
	if len(data) == 0 {
		return RemoteFile{}, &RemoteFetchError{URL: rawURL, Reason: ErrEmptyDocument.Error(), Err: ErrEmptyDocument}
	}
	if int64(len(data)) > f.maxBytes() {
		return RemoteFile{}, &RemoteFetchError{URL: rawURL, Reason: ErrTooLarge.Error(), Err: ErrTooLarge}
	}
	return RemoteFile{Name: name, Data: data}, nil
}

func (f *RemoteFetcher) maxBytes() int64 {
	if f.MaxBytes > 0 {
		return f.MaxBytes
	}
	return MaxDocumentBytes
}

func (f *RemoteFetcher) warn(rawURL, step string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	telemetry.Warn("document.fetch_step_failed", map[string]any{
		"url":   rawURL,
		"step":  step,
		"error": err,
	})
}

// LooksLikePDF checks the content type, the URL path and the %PDF signature.
func LooksLikePDF(rawURL, contentType string, data []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "pdf") {
		return true
	}
	if u, err := url.Parse(rawURL); err == nil && strings.HasSuffix(strings.ToLower(u.Path), ".pdf") {
		return true
	}
	return bytes.HasPrefix(data, []byte("%PDF"))
}

// ResolveFileName picks a name from Content-Disposition, then the URL
// basename, then "pms-document", and ensures ext.
func ResolveFileName(rawURL, disposition, ext string) string {
	var name string
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			name = params["filename"]
		}
	}
	if name == "" {
		if u, err := url.Parse(rawURL); err == nil {
			if base := path.Base(u.Path); base != "/" && base != "." {
				name = base
			}
		}
	}
	name = strings.TrimSpace(name)
	if sanitized, err := util.SanitizeFileName(name); err == nil {
		name = sanitized
	} else {
		name = ""
	}
	if name == "" {
		name = defaultFileName
	}
	return util.EnsureExtension(name, ext)
}

// IsUsefulText rejects rendered text too short to be documentation.
func IsUsefulText(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	length := len(trimmed)
	words := 0
	for _, w := range strings.FieldsFunc(trimmed, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(w)) >= 3 {
			words++
		}
	}
	lines := strings.Count(trimmed, "\n")

	if length < 200 && words < 30 {
		return false
	}
	if length < 500 && lines < 3 {
		return false
	}
	return true
}
