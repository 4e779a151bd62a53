// Package retry provides an explicit retry policy for outbound provider calls.
package retry

import (
	"context"
	"time"
)

// Policy describes how an outbound call is retried. The zero value retries
// nothing; use Default for the standard embedding-provider policy.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BaseDelay is the delay before the second attempt; it doubles per attempt.
	BaseDelay time.Duration
	// MaxDelay caps the backoff delay. Zero means no cap.
	MaxDelay time.Duration
	// Retryable decides whether an error is worth retrying. Nil retries all errors.
	Retryable func(error) bool
}

// Default is the standard policy for transient provider errors: three attempts
// with exponential backoff from 2s, capped at 30s.
func Default() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// Do runs op under the policy. It returns nil on the first success, the last
// error once attempts are exhausted, or the context error if the context is
// cancelled between attempts.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		delay := p.delay(attempt)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}

// delay computes the backoff before attempt n+1: BaseDelay * 2^(n-1), capped.
func (p Policy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}
