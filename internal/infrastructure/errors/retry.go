package errors

import (
	"context"
	"math/rand"
	"slices"
	"time"

	"github.com/rs/zerolog"
)

// RetryConfig holds configuration for retry logic.
type RetryConfig struct {
	MaxAttempts    int           // Maximum number of attempts
	InitialDelay   time.Duration // Delay before the second attempt
	MaxDelay       time.Duration // Cap on the delay between attempts
	BackoffFactor  float64       // Exponential backoff factor
	Jitter         bool          // Randomize delays to avoid thundering herds
	RetryableCodes []ErrorCode   // Codes worth retrying
}

// DefaultRetryConfig returns the configuration used by the updater's
// network calls.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:    3,
		InitialDelay:   100 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         true,
		RetryableCodes: []ErrorCode{CodeNetwork},
	}
}

// Operation is a unit of work that can be retried.
type Operation func() error

// WithRetry runs operation until it succeeds, returns a non-retryable
// error, exhausts the configured attempts, or the context is cancelled.
// Only errors whose code appears in RetryableCodes are retried.
func WithRetry(ctx context.Context, config *RetryConfig, log zerolog.Logger, name string, operation Operation) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		err := operation()
		if err == nil {
			if attempt > 1 {
				log.Debug().Str("operation", name).Int("attempts", attempt).Msg("succeeded after retry")
			}
			return nil
		}
		lastErr = err

		if !slices.Contains(config.RetryableCodes, CodeOf(err)) {
			return err
		}
		if attempt == config.MaxAttempts {
			break
		}

		wait := delay
		if config.Jitter {
			wait += time.Duration(rand.Int63n(int64(delay)/2 + 1))
		}
		log.Debug().
			Str("operation", name).
			Int("attempt", attempt).
			Dur("delay", wait).
			Err(err).
			Msg("retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * config.BackoffFactor)
		if delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}
	return lastErr
}
