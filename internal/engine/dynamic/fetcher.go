// internal/engine/dynamic/fetcher.go
package dynamic

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/law-makers/encuestas/internal/engine"
	"github.com/law-makers/encuestas/internal/ratelimit"
	"github.com/law-makers/encuestas/pkg/models"
	"github.com/rs/zerolog"
)

// Options configures the headless browser
type Options struct {
	UserAgent  string
	Proxy      string
	ChromePath string
	Timeout    time.Duration
	// WaitSelector is awaited before the DOM is captured, e.g. "#table_1 tbody"
	WaitSelector string
}

// Fetcher renders the page in headless Chrome and returns the resulting DOM.
// Use it when the source fills its tables client-side.
type Fetcher struct {
	limiter ratelimit.RateLimiter
	opts    Options
}

// New creates a browser-backed Fetcher
func New(lim ratelimit.RateLimiter, opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Fetcher{limiter: lim, opts: opts}
}

// Name returns the name of this fetcher
func (f *Fetcher) Name() string {
	return "BrowserFetcher"
}

// Fetch navigates to url and captures the rendered HTML.
// A non-200 main document is reported as BAD_STATUS like the static fetcher.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*models.Document, error) {
	logger := zerolog.Ctx(ctx)
	start := time.Now()

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, url); err != nil {
			return nil, engine.NetworkFailure(url, err)
		}
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(f.opts.UserAgent),
	)
	if path := FindChrome(f.opts.ChromePath); path != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(path))
	}
	if f.opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(f.opts.Proxy))
	}

	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	// Written from the target listener goroutine
	var statusCode atomic.Int64
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		if ev, ok := ev.(*network.EventResponseReceived); ok {
			if ev.Type == network.ResourceTypeDocument && ev.Response.URL == url {
				statusCode.Store(ev.Response.Status)
			}
		}
	})

	var html string
	tasks := chromedp.Tasks{
		network.Enable(),
		chromedp.Navigate(url),
	}
	if f.opts.WaitSelector != "" {
		tasks = append(tasks, chromedp.WaitReady(f.opts.WaitSelector, chromedp.ByQuery))
	}
	tasks = append(tasks, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(browserCtx, tasks); err != nil {
		if ctx.Err() != nil {
			return nil, engine.NewFetchError(engine.ErrCodeTimeout, url, "browser render timed out", err).WithRetry()
		}
		return nil, engine.NewFetchError(engine.ErrCodeBrowser, url, "browser render failed", err).WithRetry()
	}

	// Status is unknown when the response event was missed (e.g. served from cache)
	if status := statusCode.Load(); status != 0 && status != 200 {
		return nil, engine.BadStatus(url, int(status))
	}

	doc := &models.Document{
		URL:          url,
		StatusCode:   200,
		Body:         html,
		FetchedAt:    time.Now(),
		ResponseTime: time.Since(start).Milliseconds(),
	}

	logger.Debug().
		Str("url", url).
		Str("fetcher", f.Name()).
		Int64("response_time_ms", doc.ResponseTime).
		Msg("Render completed")

	return doc, nil
}
