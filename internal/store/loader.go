package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// DefaultBatchSize bounds the rows sent per INSERT statement
const DefaultBatchSize = 1000

// Bind parameter limits of a single statement
const (
	maxParamsPostgres = 65535
	maxParamsSQLite   = 32766
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Table names a destination table and the columns written to it.
// Column names must match the db tags of the loaded record type.
type Table struct {
	Name    string
	Columns []string
}

// ValidateTableName accepts a plain or schema-qualified identifier
func ValidateTableName(name string) error {
	if !identifier.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

// Validate checks that the table and column names are plain identifiers
func (t Table) Validate() error {
	if err := ValidateTableName(t.Name); err != nil {
		return err
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %q has no columns", t.Name)
	}
	for _, c := range t.Columns {
		if !identifier.MatchString(c) || strings.Contains(c, ".") {
			return fmt.Errorf("invalid column name %q", c)
		}
	}
	return nil
}

// MaxBatchSize is the largest batch whose multi-row INSERT stays within the
// driver's bind parameter limit.
func (t Table) MaxBatchSize(driver string) int {
	limit := maxParamsPostgres
	if driver == DriverSQLite {
		limit = maxParamsSQLite
	}
	if len(t.Columns) == 0 {
		return limit
	}
	return limit / len(t.Columns)
}

func (t Table) insertQuery() string {
	named := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		named[i] = ":" + c
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.Name, strings.Join(t.Columns, ", "), strings.Join(named, ", "))
}

// Options tune a Load call
type Options struct {
	BatchSize int
	// OnBatch is called after each batch with the rows written so far
	OnBatch func(written, total int)
}

// Option configures Options
type Option func(*Options)

// WithBatchSize overrides DefaultBatchSize
func WithBatchSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.BatchSize = n
		}
	}
}

// WithProgress registers a per-batch callback
func WithProgress(fn func(written, total int)) Option {
	return func(o *Options) {
		o.OnBatch = fn
	}
}

// Load replaces the contents of table with records.
//
// The delete and every insert batch run in one transaction, so readers keep
// seeing the previous snapshot until commit and a failed load leaves it intact.
// An empty records slice empties the table.
func Load[T any](ctx context.Context, db *sqlx.DB, table Table, records []T, opts ...Option) (int, error) {
	o := Options{BatchSize: DefaultBatchSize}
	for _, opt := range opts {
		opt(&o)
	}

	if err := table.Validate(); err != nil {
		return 0, newLoadError(ErrCodeInvalidTable, table.Name, "invalid destination", err)
	}

	logger := zerolog.Ctx(ctx)
	start := time.Now()

	if limit := table.MaxBatchSize(db.DriverName()); o.BatchSize > limit {
		logger.Warn().
			Str("table", table.Name).
			Int("batch_size", o.BatchSize).
			Int("limit", limit).
			Msg("Batch size exceeds bind parameter limit, clamping")
		o.BatchSize = limit
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, newLoadError(ErrCodeBegin, table.Name, "failed to begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Warn().Err(rbErr).Str("table", table.Name).Msg("Rollback failed")
			}
		}
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table.Name); err != nil {
		return 0, newLoadError(ErrCodeDelete, table.Name, "failed to clear", err)
	}

	query := table.insertQuery()
	written := 0
	for lo := 0; lo < len(records); lo += o.BatchSize {
		hi := lo + o.BatchSize
		if hi > len(records) {
			hi = len(records)
		}

		if _, err := tx.NamedExecContext(ctx, query, records[lo:hi]); err != nil {
			return 0, newLoadError(ErrCodeInsert, table.Name, fmt.Sprintf("failed to insert rows %d-%d into", lo, hi-1), err)
		}
		written = hi

		logger.Debug().
			Str("table", table.Name).
			Int("written", written).
			Int("total", len(records)).
			Msg("Batch inserted")
		if o.OnBatch != nil {
			o.OnBatch(written, len(records))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, newLoadError(ErrCodeCommit, table.Name, "failed to commit", err)
	}
	committed = true

	logger.Info().
		Str("table", table.Name).
		Int("rows", written).
		Dur("elapsed", time.Since(start)).
		Time("completed_at", time.Now()).
		Msg("Data imported successfully")

	return written, nil
}
