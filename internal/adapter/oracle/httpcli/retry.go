// Package httpcli implements a single generic HTTP-backed model oracle,
// consolidating the teacher's five hand-rolled vendor clients
// (anthropic/openai/gemini/ollama + the shared http package) into one
// configurable adapter: the spec needs one structured-output oracle
// port, not a vendor SDK per provider.
package httpcli

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// RetryConfig mirrors the teacher's http.RetryConfig: capped exponential
// backoff with jitter.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// DefaultRetryConfig matches the teacher's defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     5,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     32 * time.Second,
		Multiplier:     2.0,
	}
}

func exponentialBackoff(attempt int, cfg RetryConfig) time.Duration {
	backoff := float64(cfg.InitialBackoff) * math.Pow(cfg.Multiplier, float64(attempt))
	if backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}
	jitterRange := 0.25 * backoff
	jitter := (rand.Float64() * 2 * jitterRange) - jitterRange
	result := backoff + jitter
	if result > float64(cfg.MaxBackoff) {
		result = float64(cfg.MaxBackoff)
	}
	if result < 0 {
		result = 0
	}
	return time.Duration(result)
}

// RetryableError carries whether an operation should be retried.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

func shouldRetry(err error) bool {
	var re *RetryableError
	if errors.As(err, &re) {
		return re.Retryable
	}
	return false
}

// retryWithBackoff runs operation, retrying on RetryableError{Retryable: true}.
func retryWithBackoff(ctx context.Context, cfg RetryConfig, operation func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := operation(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if !shouldRetry(err) || attempt >= cfg.MaxRetries {
			return err
		}
		select {
		case <-time.After(exponentialBackoff(attempt, cfg)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
