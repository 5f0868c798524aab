// Package pipeline runs Fetch → Extract → Build → Load for each table
// variant of the source page.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/law-makers/encuestas/internal/engine"
	"github.com/law-makers/encuestas/internal/extract"
	"github.com/law-makers/encuestas/internal/records"
	"github.com/law-makers/encuestas/internal/reqctx"
	"github.com/law-makers/encuestas/internal/store"
	"github.com/law-makers/encuestas/pkg/models"
)

// Variant names one of the two source tables
type Variant string

const (
	Candidates Variant = "candidates"
	Parties    Variant = "parties"
)

// Stage names used in RunError
const (
	StageFetch   = "fetch"
	StageExtract = "extract"
	StageBuild   = "build"
	StageConnect = "connect"
	StageLoad    = "load"
)

// TableSpec locates a variant on the page and names its destination
type TableSpec struct {
	Anchor  string
	Columns extract.ColumnSpec
	Table   string
}

// Config is the explicit configuration of a Pipeline
type Config struct {
	SourceURL  string
	Candidates TableSpec
	Parties    TableSpec
	BatchSize  int
}

// DefaultConfig reproduces the layout of the source page
func DefaultConfig(sourceURL string) Config {
	return Config{
		SourceURL:  sourceURL,
		Candidates: TableSpec{Anchor: "table_1", Columns: extract.CandidateColumns, Table: "candidatos"},
		Parties:    TableSpec{Anchor: "table_2", Columns: extract.PartyColumns, Table: "partidos"},
		BatchSize:  store.DefaultBatchSize,
	}
}

// Connector opens one destination connection per load. store.Descriptor implements it.
type Connector interface {
	Connect(ctx context.Context) (*sqlx.DB, error)
}

// ProgressFunc receives load progress of a variant after every batch
type ProgressFunc func(v Variant, written, total int)

// Pipeline wires a fetcher and a destination
type Pipeline struct {
	fetcher  engine.Fetcher
	dest     Connector
	cfg      Config
	now      func() time.Time
	progress ProgressFunc
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithClock overrides the source of ingestion timestamps
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithProgress registers a load progress callback
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// New creates a Pipeline
func New(fetcher engine.Fetcher, dest Connector, cfg Config, opts ...Option) *Pipeline {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = store.DefaultBatchSize
	}
	p := &Pipeline{
		fetcher: fetcher,
		dest:    dest,
		cfg:     cfg,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result summarizes a successful refresh
type Result struct {
	Variant    Variant
	RunID      string
	Table      string
	Rows       int
	IngestedAt time.Time
	Elapsed    time.Duration
}

// RefreshCandidates replaces the candidate table with the current page contents
func (p *Pipeline) RefreshCandidates(ctx context.Context) (*Result, error) {
	return refresh(ctx, p, Candidates, p.cfg.Candidates, models.CandidateColumns, records.BuildCandidates)
}

// RefreshParties replaces the party table with the current page contents
func (p *Pipeline) RefreshParties(ctx context.Context) (*Result, error) {
	return refresh(ctx, p, Parties, p.cfg.Parties, models.PartyColumns, records.BuildParties)
}

// Refresh runs the pipeline of one variant
func (p *Pipeline) Refresh(ctx context.Context, v Variant) (*Result, error) {
	switch v {
	case Candidates:
		return p.RefreshCandidates(ctx)
	case Parties:
		return p.RefreshParties(ctx)
	default:
		return nil, fmt.Errorf("unknown variant %q", v)
	}
}

// RefreshAll runs both variants concurrently. A failure in one does not
// cancel the other; results of the successful variants are returned along
// with the joined errors.
func (p *Pipeline) RefreshAll(ctx context.Context) ([]*Result, error) {
	variants := []Variant{Candidates, Parties}
	results := make([]*Result, len(variants))
	errs := make([]error, len(variants))

	var g errgroup.Group
	for i, v := range variants {
		i, v := i, v
		g.Go(func() error {
			results[i], errs[i] = p.Refresh(ctx, v)
			return nil
		})
	}
	_ = g.Wait()

	var done []*Result
	for _, r := range results {
		if r != nil {
			done = append(done, r)
		}
	}
	return done, errors.Join(errs...)
}

func refresh[T any](
	ctx context.Context,
	p *Pipeline,
	v Variant,
	spec TableSpec,
	columns []string,
	build func([]extract.FieldRow, time.Time) ([]T, error),
) (*Result, error) {
	ctx = reqctx.WithRun(ctx, string(v))
	logger := zerolog.Ctx(ctx)
	run := reqctx.GetRun(ctx)

	fail := func(stage string, err error) (*Result, error) {
		logger.Error().Err(err).Str("stage", stage).Dur("elapsed", run.Elapsed()).Msg("Refresh failed")
		return nil, reqctx.NewRunError(ctx, stage, err)
	}

	logger.Info().Str("url", p.cfg.SourceURL).Str("fetcher", p.fetcher.Name()).Msg("Refresh started")

	doc, err := p.fetcher.Fetch(ctx, p.cfg.SourceURL)
	if err != nil {
		return fail(StageFetch, err)
	}

	rows, err := extract.ExtractString(doc.Body, spec.Anchor, spec.Columns)
	if err != nil {
		return fail(StageExtract, err)
	}
	logger.Debug().Str("anchor", spec.Anchor).Int("rows", len(rows)).Msg("Table extracted")

	at := p.now()
	recs, err := build(rows, at)
	if err != nil {
		return fail(StageBuild, err)
	}

	db, err := p.dest.Connect(ctx)
	if err != nil {
		return fail(StageConnect, err)
	}
	defer db.Close()

	opts := []store.Option{store.WithBatchSize(p.cfg.BatchSize)}
	if p.progress != nil {
		opts = append(opts, store.WithProgress(func(written, total int) {
			p.progress(v, written, total)
		}))
	}

	n, err := store.Load(ctx, db, store.Table{Name: spec.Table, Columns: columns}, recs, opts...)
	if err != nil {
		return fail(StageLoad, err)
	}

	res := &Result{
		Variant:    v,
		RunID:      run.RunID,
		Table:      spec.Table,
		Rows:       n,
		IngestedAt: at,
		Elapsed:    run.Elapsed(),
	}
	logger.Info().
		Str("table", res.Table).
		Int("rows", res.Rows).
		Dur("elapsed", res.Elapsed).
		Msg("Refresh completed")
	return res, nil
}

// Snapshot is the built content of one variant without touching the destination
type Snapshot struct {
	Variant    Variant
	URL        string
	Headers    []string
	Records    []models.Record
	IngestedAt time.Time
}

// Preview fetches, extracts and builds one variant
func (p *Pipeline) Preview(ctx context.Context, v Variant) (*Snapshot, error) {
	spec, err := p.spec(v)
	if err != nil {
		return nil, err
	}

	doc, err := p.fetcher.Fetch(ctx, p.cfg.SourceURL)
	if err != nil {
		return nil, err
	}
	rows, err := extract.ExtractString(doc.Body, spec.Anchor, spec.Columns)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Variant: v, URL: doc.URL, IngestedAt: p.now()}
	switch v {
	case Candidates:
		recs, err := records.BuildCandidates(rows, snap.IngestedAt)
		if err != nil {
			return nil, err
		}
		snap.Headers = models.CandidateHeaders
		for _, r := range recs {
			snap.Records = append(snap.Records, r)
		}
	case Parties:
		recs, err := records.BuildParties(rows, snap.IngestedAt)
		if err != nil {
			return nil, err
		}
		snap.Headers = models.PartyHeaders
		for _, r := range recs {
			snap.Records = append(snap.Records, r)
		}
	}
	return snap, nil
}

// SourceTable returns the outer HTML of the anchored table of v, as served
func (p *Pipeline) SourceTable(ctx context.Context, v Variant) (string, error) {
	spec, err := p.spec(v)
	if err != nil {
		return "", err
	}

	doc, err := p.fetcher.Fetch(ctx, p.cfg.SourceURL)
	if err != nil {
		return "", err
	}
	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(doc.Body))
	if err != nil {
		return "", &extract.ExtractError{Code: extract.ErrCodeParse, Anchor: spec.Anchor, Underlying: err}
	}

	anchor := extract.FindAnchor(parsed, spec.Anchor)
	if anchor == nil {
		return "", &extract.ExtractError{Code: extract.ErrCodeAnchorNotFound, Anchor: spec.Anchor}
	}
	return goquery.OuterHtml(anchor)
}

func (p *Pipeline) spec(v Variant) (TableSpec, error) {
	switch v {
	case Candidates:
		return p.cfg.Candidates, nil
	case Parties:
		return p.cfg.Parties, nil
	default:
		return TableSpec{}, fmt.Errorf("unknown variant %q", v)
	}
}

// ParseVariant maps a command argument onto a Variant
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case Candidates, "candidatos":
		return Candidates, nil
	case Parties, "partidos":
		return Parties, nil
	default:
		return "", fmt.Errorf("unknown table %q, expected candidates or parties", s)
	}
}
