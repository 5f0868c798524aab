// internal/engine/static/fetcher.go
package static

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/law-makers/encuestas/internal/engine"
	"github.com/law-makers/encuestas/internal/ratelimit"
	"github.com/law-makers/encuestas/pkg/models"
	"github.com/rs/zerolog"
)

// Fetcher implements engine.Fetcher with plain HTTP requests
type Fetcher struct {
	limiter   ratelimit.RateLimiter
	client    *http.Client
	userAgent string
	headers   map[string]string
}

// New creates a new static Fetcher with dependency injection
func New(lim ratelimit.RateLimiter, client *http.Client, ua string, headers map[string]string) *Fetcher {
	return &Fetcher{
		limiter:   lim,
		client:    client,
		userAgent: ua,
		headers:   headers,
	}
}

// Name returns the name of this fetcher
func (f *Fetcher) Name() string {
	return "StaticFetcher"
}

// Fetch issues a single GET and returns the body of a 200 response.
// It never retries; retry policy belongs to whoever triggers the run.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*models.Document, error) {
	logger := zerolog.Ctx(ctx)
	start := time.Now()

	logger.Debug().
		Str("url", url).
		Str("fetcher", f.Name()).
		Msg("Starting fetch")

	resp, err := f.do(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		logger.Warn().
			Str("url", url).
			Int("status", resp.StatusCode).
			Msg("Failed to retrieve source page")
		return nil, engine.BadStatus(url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, engine.NetworkFailure(url, err)
	}

	doc := &models.Document{
		URL:          url,
		StatusCode:   resp.StatusCode,
		Body:         string(body),
		FetchedAt:    time.Now(),
		ResponseTime: time.Since(start).Milliseconds(),
	}

	logger.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Int64("response_time_ms", doc.ResponseTime).
		Msg("Fetch completed")

	return doc, nil
}

// Probe checks that the source answers with a 2xx status without reading the body
func (f *Fetcher) Probe(ctx context.Context, url string) error {
	resp, err := f.do(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return engine.BadStatus(url, resp.StatusCode)
	}

	zerolog.Ctx(ctx).Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Msg("Source is available")
	return nil
}

func (f *Fetcher) do(ctx context.Context, url string) (*http.Response, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, url); err != nil {
			return nil, engine.NetworkFailure(url, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, engine.NewFetchError(engine.ErrCodeInvalidURL, url, "failed to create request", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "es-MX,es;q=0.9,en;q=0.8")

	for key, value := range f.headers {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, engine.NetworkFailure(url, err)
	}
	return resp, nil
}
