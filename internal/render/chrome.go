package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

const (
	userAgent     = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	viewportW     = 1366
	viewportH     = 900
	settleDelay   = 3 * time.Second
	renderTimeout = 60 * time.Second
)

// textScript scrolls the page five times, drops script/style/noscript and
// keeps the longest of innerText and textContent seen.
const textScript = `(async () => {
  const sleep = (ms) => new Promise(resolve => setTimeout(resolve, ms));
  const cleanup = () => {
    document.querySelectorAll("script,style,noscript").forEach(el => el.remove());
  };
  const getInner = () => document.body ? document.body.innerText : "";
  const getTextContent = () => document.body ? document.body.textContent : "";
  const pickBest = () => {
    const inner = getInner();
    const raw = getTextContent();
    if (raw && raw.length > inner.length * 1.2) { return raw; }
    return inner || raw;
  };
  let best = "";
  for (let i = 0; i < 5; i++) {
    window.scrollTo(0, document.body.scrollHeight);
    await sleep(900);
    cleanup();
    const current = pickBest();
    if (current && current.length > best.length) { best = current; }
  }
  return best || pickBest();
})()`

// Chrome renders through a remote Chrome DevTools endpoint.
type Chrome struct {
	wsURL   string
	timeout time.Duration
}

// NewChrome returns a Chrome renderer for the DevTools websocket or HTTP
// endpoint at wsURL.
func NewChrome(wsURL string) *Chrome {
	return &Chrome{wsURL: strings.TrimSpace(wsURL), timeout: renderTimeout}
}

func (c *Chrome) RenderText(ctx context.Context, url string) (string, error) {
	var text string
	err := c.run(ctx, url, chromedp.Evaluate(textScript, &text, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}))
	if err != nil {
		return "", fmt.Errorf("render text %s: %w", url, err)
	}
	return strings.TrimSpace(text), nil
}

func (c *Chrome) RenderHTML(ctx context.Context, url string) (string, error) {
	var html string
	if err := c.run(ctx, url, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("render html %s: %w", url, err)
	}
	return strings.TrimSpace(html), nil
}

func (c *Chrome) RenderPDF(ctx context.Context, url string) ([]byte, error) {
	var buf []byte
	err := c.run(ctx, url, chromedp.ActionFunc(func(ctx context.Context) error {
		data, _, err := page.PrintToPDF().
			WithPrintBackground(true).
			WithPaperWidth(8.27).
			WithPaperHeight(11.69).
			Do(ctx)
		if err != nil {
			return err
		}
		buf = data
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("render pdf %s: %w", url, err)
	}
	return buf, nil
}

func (c *Chrome) run(ctx context.Context, url string, action chromedp.Action) error {
	if c.wsURL == "" {
		return fmt.Errorf("renderer url is not set")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, c.wsURL)
	defer cancelAlloc()
	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	return chromedp.Run(taskCtx,
		emulation.SetUserAgentOverride(userAgent),
		chromedp.EmulateViewport(viewportW, viewportH),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settleDelay),
		action,
	)
}
