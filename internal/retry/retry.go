// internal/retry/retry.go
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
)

// Config defines retry behavior. A Multiplier of 1 gives a fixed delay.
type Config struct {
	MaxAttempts    int           // Total attempts, including the first
	InitialBackoff time.Duration // Delay before the second attempt
	MaxBackoff     time.Duration // Upper bound on any delay
	Multiplier     float64       // Backoff multiplier
}

// DefaultConfig mirrors the host deployment: one retry after five minutes
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    2,
		InitialBackoff: 5 * time.Minute,
		MaxBackoff:     5 * time.Minute,
		Multiplier:     1.0,
	}
}

// Retryable is implemented by the stage errors to mark transient failures
type Retryable interface {
	Retryable() bool
}

// WithRetry executes fn until it succeeds, returns a permanent error,
// or runs out of attempts.
func WithRetry(ctx context.Context, cfg Config, fn func(attempt int) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	logger := zerolog.Ctx(ctx)

	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		err := fn(attempt + 1)
		if err == nil {
			if attempt > 0 {
				logger.Debug().
					Int("attempts", attempt+1).
					Msg("Retry succeeded")
			}
			return nil
		}

		lastErr = err

		if !ShouldRetry(err) {
			logger.Debug().
				Err(err).
				Msg("Error is not retryable")
			return err
		}

		// Don't sleep after the last attempt
		if attempt < cfg.MaxAttempts-1 {
			backoff := calculateBackoff(attempt, cfg)

			logger.Warn().
				Int("attempt", attempt+1).
				Int("max_attempts", cfg.MaxAttempts).
				Dur("backoff", backoff).
				Err(err).
				Msg("Retrying after backoff")

			timer := time.NewTimer(backoff)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}

	logger.Warn().
		Int("attempts", cfg.MaxAttempts).
		Err(lastErr).
		Msg("Max retry attempts exceeded")

	return fmt.Errorf("operation failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

// calculateBackoff calculates the backoff duration for the given attempt
func calculateBackoff(attempt int, cfg Config) time.Duration {
	multiplier := cfg.Multiplier
	if multiplier <= 0 {
		multiplier = 1
	}
	backoff := float64(cfg.InitialBackoff) * math.Pow(multiplier, float64(attempt))

	if cfg.MaxBackoff > 0 && backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}

	return time.Duration(backoff)
}

// ShouldRetry reports whether err is transient. Joined errors are retryable
// when any member is; unknown errors are not.
func ShouldRetry(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	switch e := err.(type) {
	case Retryable:
		return e.Retryable()
	case interface{ Unwrap() []error }:
		for _, member := range e.Unwrap() {
			if ShouldRetry(member) {
				return true
			}
		}
		return false
	case interface{ Timeout() bool }:
		if e.Timeout() {
			return true
		}
	}

	if err == context.DeadlineExceeded {
		return true
	}
	if inner := errors.Unwrap(err); inner != nil {
		return ShouldRetry(inner)
	}
	return false
}
