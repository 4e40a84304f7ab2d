// Package retry runs provider calls with deterministic exponential backoff.
package retry

import (
	"context"
	"log/slog"
	"time"
)

// Policy bounds the number of attempts and spaces them base*2^i apart,
// where i is the zero-based index of the attempt that just failed.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Second}
}

// Delay returns the wait after the failed attempt with the given index.
func (p Policy) Delay(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(1<<attempt)
}

// Do calls fn until it succeeds, returns an error retryable rejects, or
// MaxAttempts is reached. It returns the number of attempts made and the last error.
func Do(
	ctx context.Context,
	p Policy,
	logger *slog.Logger,
	retryable func(error) bool,
	fn func(ctx context.Context) error,
) (int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return attempt, lastErr
			}
			return attempt, err
		}

		err := fn(ctx)
		if err == nil {
			return attempt + 1, nil
		}
		lastErr = err

		if !retryable(err) || attempt == maxAttempts-1 {
			return attempt + 1, lastErr
		}

		delay := p.Delay(attempt)
		logger.WarnContext(ctx, "retrying after transient failure",
			"attempt", attempt+1,
			"max_attempts", maxAttempts,
			"delay", delay,
			"error", err,
		)

		if err := p.sleep(ctx, delay); err != nil {
			return attempt + 1, lastErr
		}
	}

	return maxAttempts, lastErr
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
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
