package providers

import (
	"context"
	"time"
)

// RetryPolicy bounds the retry loop around one adapter. Backoff grows with
// the attempt number (BackoffBase × attempt) up to BackoffCap. Only
// retryable failures are retried; terminal ones surface immediately.
type RetryPolicy struct {
	MaxRetries     int
	BackoffBase    time.Duration
	BackoffCap     time.Duration
	AttemptTimeout time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     2,
		BackoffBase:    350 * time.Millisecond,
		BackoffCap:     1500 * time.Millisecond,
		AttemptTimeout: 30 * time.Second,
	}
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := p.BackoffBase * time.Duration(attempt)
	if d > p.BackoffCap {
		d = p.BackoffCap
	}
	return d
}

// Execute runs one adapter call under the retry policy and measures its
// latency. The backoff sleep honors context cancellation so one slow
// backend cannot stall the caller past its deadline.
func Execute(ctx context.Context, a Adapter, inv *Invocation, policy RetryPolicy) (*Completion, int64, error) {
	start := time.Now()
	attempts := 0

	var lastErr *DispatchError
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, policy.backoff(attempt)); err != nil {
				lastErr.Attempts = attempts
				return nil, time.Since(start).Milliseconds(), lastErr
			}
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if policy.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, policy.AttemptTimeout)
		}
		completion, err := a.Complete(attemptCtx, inv)
		if cancel != nil {
			cancel()
		}
		attempts++

		if err == nil {
			return completion, time.Since(start).Milliseconds(), nil
		}

		lastErr = classify(err, a.Name())
		if !lastErr.Retryable() {
			break
		}
	}

	lastErr.Attempts = attempts
	return nil, time.Since(start).Milliseconds(), lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
