// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/encuestas/internal/cache"
	"github.com/law-makers/encuestas/internal/config"
	"github.com/law-makers/encuestas/internal/engine"
	"github.com/law-makers/encuestas/internal/engine/dynamic"
	"github.com/law-makers/encuestas/internal/engine/static"
	"github.com/law-makers/encuestas/internal/extract"
	"github.com/law-makers/encuestas/internal/pipeline"
	"github.com/law-makers/encuestas/internal/ratelimit"
	"github.com/law-makers/encuestas/internal/store"
	urlutil "github.com/law-makers/encuestas/internal/utils/url"
	"github.com/law-makers/encuestas/pkg/models"
)

// Prober checks that the source is reachable
type Prober interface {
	Probe(ctx context.Context, url string) error
}

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once per command invocation. Use Close() to release
// idle connections on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	RateLimiter ratelimit.RateLimiter
	HTTPClient  *http.Client
	Fetcher     engine.Fetcher
	Prober      Prober
	Destination store.Descriptor
	startTime   time.Time

	progress pipeline.ProgressFunc
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Creates the per-host rate limiter shared by both variant pipelines
//   - Initializes the HTTP client with timeout and optional proxy
//   - Selects the static or browser fetcher, behind a short-lived page cache
//
// The destination is not contacted here; each load opens its own connection.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := NewLogger(cfg, os.Stderr)
	log.Logger = logger
	zerolog.DefaultContextLogger = &logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	rateLimiter := ratelimit.NewHostLimiter(cfg.Source.RateLimitRPS, cfg.Source.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.Source.RateLimitRPS).
		Int("burst", cfg.Source.RateLimitBurst).
		Msg("Rate limiter initialized")

	httpClient, err := newHTTPClient(cfg.Source)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Dur("timeout", cfg.Source.Timeout).
		Str("proxy", urlutil.Redact(cfg.Source.Proxy)).
		Msg("HTTP client initialized")

	staticFetcher := static.New(rateLimiter, httpClient, cfg.Source.UserAgent, cfg.Source.Headers)

	var fetcher engine.Fetcher = staticFetcher
	if models.FetchMode(cfg.Source.Mode) == models.ModeBrowser {
		timeout := cfg.Source.Timeout
		if timeout < config.DefaultBrowserTimeout {
			timeout = config.DefaultBrowserTimeout
		}
		fetcher = dynamic.New(rateLimiter, dynamic.Options{
			UserAgent:    cfg.Source.UserAgent,
			Proxy:        cfg.Source.Proxy,
			ChromePath:   cfg.Source.ChromePath,
			Timeout:      timeout,
			WaitSelector: cfg.Source.WaitSelector,
		})
	}
	if cfg.Source.CacheTTL > 0 {
		fetcher = cache.NewFetcher(fetcher, cache.NewMemoryCache(), cfg.Source.CacheTTL)
	}
	logger.Debug().
		Str("fetcher", fetcher.Name()).
		Dur("cache_ttl", cfg.Source.CacheTTL).
		Msg("Fetcher initialized")

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		RateLimiter: rateLimiter,
		HTTPClient:  httpClient,
		Fetcher:     fetcher,
		Prober:      staticFetcher,
		Destination: cfg.Database.Descriptor(),
		startTime:   time.Now(),
	}

	logger.Debug().Str("destination", app.Destination.String()).Msg("Application initialized successfully")
	return app, nil
}

// NewLogger builds the process logger: console output unless JSON is requested
func NewLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.JSONLog {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

func newHTTPClient(src config.SourceConfig) (*http.Client, error) {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}
	if src.Proxy != "" {
		proxyURL, err := url.Parse(src.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Timeout:   src.Timeout,
		Transport: transport,
	}, nil
}

// SetProgress registers a load progress callback for pipelines created afterwards
func (a *Application) SetProgress(fn pipeline.ProgressFunc) {
	a.progress = fn
}

// Pipeline builds the refresh pipeline from the configuration
func (a *Application) Pipeline() *pipeline.Pipeline {
	cfg := a.Config
	pcfg := pipeline.Config{
		SourceURL: cfg.Source.URL,
		Candidates: pipeline.TableSpec{
			Anchor:  cfg.Candidates.Anchor,
			Columns: extract.ColumnSpec(cfg.Candidates.Columns),
			Table:   cfg.Candidates.Table,
		},
		Parties: pipeline.TableSpec{
			Anchor:  cfg.Parties.Anchor,
			Columns: extract.ColumnSpec(cfg.Parties.Columns),
			Table:   cfg.Parties.Table,
		},
		BatchSize: cfg.Database.BatchSize,
	}

	var opts []pipeline.Option
	if a.progress != nil {
		opts = append(opts, pipeline.WithProgress(a.progress))
	}
	return pipeline.New(a.Fetcher, a.Destination, pcfg, opts...)
}

// Probe runs the availability check against the configured source
func (a *Application) Probe(ctx context.Context) error {
	return a.Prober.Probe(ctx, a.Config.Source.URL)
}

// Close releases idle HTTP connections. Browser sessions are closed per fetch.
func (a *Application) Close(ctx context.Context) error {
	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
