package cli

import (
	"fmt"
	"time"

	"github.com/law-makers/encuestas/internal/retry"
)

// retryConfig turns the configured attempts and delay, optionally overridden
// by flags, into a fixed-delay retry policy.
func retryConfig(attempts int, delay time.Duration, flagAttempts int, flagDelay string) (retry.Config, error) {
	if flagAttempts != 0 {
		attempts = flagAttempts
	}
	if flagDelay != "" {
		d, err := time.ParseDuration(flagDelay)
		if err != nil {
			return retry.Config{}, fmt.Errorf("--retry-delay: %w", err)
		}
		delay = d
	}
	if attempts < 1 {
		return retry.Config{}, fmt.Errorf("attempts must be >= 1, got %d", attempts)
	}
	if delay < 0 {
		return retry.Config{}, fmt.Errorf("retry delay must not be negative")
	}

	return retry.Config{
		MaxAttempts:    attempts,
		InitialBackoff: delay,
		MaxBackoff:     delay,
		Multiplier:     1,
	}, nil
}
