package errors

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func fastConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:    3,
		InitialDelay:   time.Millisecond,
		MaxDelay:       5 * time.Millisecond,
		BackoffFactor:  2.0,
		RetryableCodes: []ErrorCode{CodeNetwork},
	}
}

func TestWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), fastConfig(), zerolog.Nop(), "fetch", func() error {
		attempts++
		if attempts < 3 {
			return Wrap("fetch", CodeNetwork, stderrors.New("connection reset"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithRetry() = %v, want nil", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWithRetry_NonRetryableStopsImmediately(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), fastConfig(), zerolog.Nop(), "fetch", func() error {
		attempts++
		return Wrap("fetch", CodeSignature, stderrors.New("bad signature"))
	})
	if !IsCode(err, CodeSignature) {
		t.Fatalf("WithRetry() = %v, want signature error", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := WithRetry(context.Background(), fastConfig(), zerolog.Nop(), "fetch", func() error {
		attempts++
		return Wrap("fetch", CodeNetwork, stderrors.New("unreachable"))
	})
	if !IsCode(err, CodeNetwork) {
		t.Fatalf("WithRetry() = %v, want network error", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWithRetry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WithRetry(ctx, fastConfig(), zerolog.Nop(), "fetch", func() error {
		return Wrap("fetch", CodeNetwork, stderrors.New("unreachable"))
	})
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("WithRetry() = %v, want context.Canceled", err)
	}
}
