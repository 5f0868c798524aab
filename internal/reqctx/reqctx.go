// Package reqctx scopes a pipeline run: id, start time, and a logger that
// carries both on every line.
package reqctx

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type key int

const runKey key = 0

// RunContext identifies one pipeline run
type RunContext struct {
	RunID     string
	Pipeline  string
	StartTime time.Time
}

// WithRun starts a run scope. The returned context carries the run and a
// child logger with run_id and pipeline fields.
func WithRun(ctx context.Context, pipeline string) context.Context {
	rc := &RunContext{
		RunID:     uuid.NewString(),
		Pipeline:  pipeline,
		StartTime: time.Now(),
	}
	ctx = context.WithValue(ctx, runKey, rc)

	logger := zerolog.Ctx(ctx).With().
		Str("run_id", rc.RunID).
		Str("pipeline", pipeline).
		Logger()
	return logger.WithContext(ctx)
}

// GetRun returns the run scope of ctx, or a placeholder outside of a run
func GetRun(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runKey).(*RunContext); ok {
		return rc
	}
	return &RunContext{
		RunID:     "unknown",
		StartTime: time.Now(),
	}
}

// Elapsed is the time since the run started
func (rc *RunContext) Elapsed() time.Duration {
	return time.Since(rc.StartTime)
}

// RunError wraps a stage error with the run that produced it
type RunError struct {
	RunID    string
	Pipeline string
	Stage    string
	Err      error
}

// Error implements the error interface
func (e *RunError) Error() string {
	return fmt.Sprintf("[%s %s] %s: %v", e.Pipeline, e.RunID, e.Stage, e.Err)
}

// Unwrap returns the underlying error
func (e *RunError) Unwrap() error {
	return e.Err
}

// NewRunError creates a RunError from the run scope of ctx
func NewRunError(ctx context.Context, stage string, err error) error {
	rc := GetRun(ctx)
	return &RunError{
		RunID:    rc.RunID,
		Pipeline: rc.Pipeline,
		Stage:    stage,
		Err:      err,
	}
}
