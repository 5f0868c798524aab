package reqctx

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestWithRun(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf).WithContext(context.Background())

	ctx := WithRun(base, "candidates")
	rc := GetRun(ctx)

	if _, err := uuid.Parse(rc.RunID); err != nil {
		t.Errorf("run id %q is not a uuid: %v", rc.RunID, err)
	}
	if rc.Pipeline != "candidates" {
		t.Errorf("expected pipeline candidates, got %q", rc.Pipeline)
	}

	zerolog.Ctx(ctx).Info().Msg("hello")
	line := buf.String()
	if !strings.Contains(line, `"run_id":"`+rc.RunID+`"`) || !strings.Contains(line, `"pipeline":"candidates"`) {
		t.Errorf("log line missing run fields: %s", line)
	}
}

func TestWithRun_DistinctIDs(t *testing.T) {
	a := GetRun(WithRun(context.Background(), "x")).RunID
	b := GetRun(WithRun(context.Background(), "x")).RunID
	if a == b {
		t.Error("expected a fresh id per run")
	}
}

func TestGetRun_Unknown(t *testing.T) {
	if got := GetRun(context.Background()).RunID; got != "unknown" {
		t.Errorf("expected unknown, got %q", got)
	}
}

func TestNewRunError(t *testing.T) {
	ctx := WithRun(context.Background(), "parties")
	cause := errors.New("boom")

	err := NewRunError(ctx, "load", cause)
	if !errors.Is(err, cause) {
		t.Error("RunError should unwrap to its cause")
	}

	var re *RunError
	if !errors.As(err, &re) {
		t.Fatal("expected *RunError")
	}
	if re.Stage != "load" || re.Pipeline != "parties" || re.RunID != GetRun(ctx).RunID {
		t.Errorf("unexpected run error fields: %+v", re)
	}
	if !strings.Contains(err.Error(), "load: boom") {
		t.Errorf("unexpected message %q", err.Error())
	}
}
