package retry

import (
	"context"
	"math/rand"
	"strings"
	"time"
)

// Config defines retry behavior with exponential backoff
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	JitterFactor float64 // 0.0-1.0
}

// DefaultConfig returns defaults for opening engine connections:
// 3 retries with 200ms initial delay, capped at 5s, doubling each time, with 10% jitter
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:   3,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// WithMaxRetries returns DefaultConfig with MaxRetries replaced.
// Zero means a single attempt.
func WithMaxRetries(n int) *Config {
	cfg := DefaultConfig()
	if n < 0 {
		n = 0
	}
	cfg.MaxRetries = n
	return cfg
}

// applyJitter spreads the delay by +/- delay*jitterFactor.
func applyJitter(delay time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return delay
	}
	jitter := float64(delay) * jitterFactor * (rand.Float64()*2 - 1)
	return time.Duration(float64(delay) + jitter)
}

// DoWithResult executes fn, retrying only errors IsRetryable accepts.
// A permanent error is returned unchanged on the attempt it occurs.
// Respects context cancellation during wait periods.
func DoWithResult[T any](ctx context.Context, cfg *Config, fn func() (T, error)) (T, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var zero T
	delay := cfg.InitialDelay

	for attempt := 0; ; attempt++ {
		r, err := fn()
		if err == nil {
			return r, nil
		}
		if attempt >= cfg.MaxRetries || !IsRetryable(err) {
			return zero, err
		}

		select {
		case <-time.After(applyJitter(delay, cfg.JitterFactor)):
			delay = time.Duration(float64(delay) * cfg.Multiplier)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// IsRetryable reports whether an open failure looks transient.
// Authentication failures and bad descriptors are permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	type retryable interface {
		IsRetryable() bool
	}
	if r, ok := err.(retryable); ok {
		return r.IsRetryable()
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"timeout",
		"timed out",
		"temporary failure",
		"too many connections",
		"i/o timeout",
		"network is unreachable",
		// DB2 communication errors
		"sql30081n",
		"sql1224n",
		"sqlstate=08001",
		"sqlstate 08001",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}
