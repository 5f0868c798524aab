package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type flaky struct{ retry bool }

func (f flaky) Error() string   { return fmt.Sprintf("flaky(%v)", f.retry) }
func (f flaky) Retryable() bool { return f.retry }

func fastConfig(attempts int) Config {
	return Config{MaxAttempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond, Multiplier: 2}
}

func TestWithRetry_SucceedsAfterTransientFailure(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastConfig(3), func(attempt int) error {
		calls++
		if attempt < 2 {
			return flaky{retry: true}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestWithRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastConfig(3), func(int) error {
		calls++
		return flaky{retry: false}
	})
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	var f flaky
	if !errors.As(err, &f) {
		t.Errorf("expected the permanent error back, got %v", err)
	}
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastConfig(2), func(int) error {
		calls++
		return flaky{retry: true}
	})
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
	if err == nil {
		t.Fatal("expected error")
	}
	var f flaky
	if !errors.As(err, &f) {
		t.Errorf("expected wrapped last error, got %v", err)
	}
}

func TestWithRetry_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxAttempts: 3, InitialBackoff: time.Hour, MaxBackoff: time.Hour, Multiplier: 1}

	err := WithRetry(ctx, cfg, func(int) error {
		cancel()
		return flaky{retry: true}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCalculateBackoff(t *testing.T) {
	cfg := Config{InitialBackoff: time.Second, MaxBackoff: 5 * time.Second, Multiplier: 2}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 5 * time.Second},
	}
	for _, tt := range tests {
		if got := calculateBackoff(tt.attempt, cfg); got != tt.want {
			t.Errorf("attempt %d: got %v, want %v", tt.attempt, got, tt.want)
		}
	}

	fixed := DefaultConfig()
	if calculateBackoff(0, fixed) != 5*time.Minute || calculateBackoff(1, fixed) != 5*time.Minute {
		t.Error("default config should use a fixed five minute delay")
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"retryable", flaky{retry: true}, true},
		{"wrapped retryable", fmt.Errorf("stage: %w", flaky{retry: true}), true},
		{"permanent", flaky{retry: false}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"joined mixed", errors.Join(flaky{retry: false}, flaky{retry: true}), true},
		{"joined permanent", errors.Join(flaky{retry: false}, errors.New("x")), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldRetry(tt.err); got != tt.want {
				t.Errorf("ShouldRetry(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
