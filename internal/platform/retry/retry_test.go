package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient")

func isTransient(err error) bool { return errors.Is(err, errTransient) }

func recordingPolicy(max int, slept *[]time.Duration) Policy {
	return Policy{
		MaxAttempts: max,
		BaseDelay:   time.Second,
		Sleep: func(ctx context.Context, d time.Duration) error {
			*slept = append(*slept, d)
			return nil
		},
	}
}

func TestDoRetriesTransientWithBackoff(t *testing.T) {
	var slept []time.Duration
	calls := 0

	attempts, err := Do(context.Background(), recordingPolicy(3, &slept), nil, isTransient, func(ctx context.Context) error {
		calls++
		return errTransient
	})

	if !errors.Is(err, errTransient) {
		t.Fatalf("err = %v, want transient", err)
	}
	if attempts != 3 || calls != 3 {
		t.Fatalf("attempts = %d, calls = %d, want 3", attempts, calls)
	}
	if len(slept) != 2 || slept[0] != time.Second || slept[1] != 2*time.Second {
		t.Fatalf("slept = %v, want [1s 2s]", slept)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	var slept []time.Duration
	calls := 0
	permanent := errors.New("not found")

	attempts, err := Do(context.Background(), recordingPolicy(3, &slept), nil, isTransient, func(ctx context.Context) error {
		calls++
		return permanent
	})

	if !errors.Is(err, permanent) {
		t.Fatalf("err = %v, want %v", err, permanent)
	}
	if attempts != 1 || calls != 1 || len(slept) != 0 {
		t.Fatalf("attempts = %d, calls = %d, slept = %v", attempts, calls, slept)
	}
}

func TestDoSucceedsAfterRetry(t *testing.T) {
	var slept []time.Duration
	calls := 0

	attempts, err := Do(context.Background(), recordingPolicy(3, &slept), nil, isTransient, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errTransient
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
}

func TestDoHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{
		MaxAttempts: 5,
		BaseDelay:   time.Hour,
		Sleep: func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}

	calls := 0
	attempts, err := Do(ctx, p, nil, isTransient, func(ctx context.Context) error {
		calls++
		return errTransient
	})

	if !errors.Is(err, errTransient) {
		t.Fatalf("err = %v, want last provider error", err)
	}
	if attempts != 1 || calls != 1 {
		t.Fatalf("attempts = %d, calls = %d, want 1", attempts, calls)
	}
}

func TestDelay(t *testing.T) {
	p := DefaultPolicy()
	for i, want := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second} {
		if got := p.Delay(i); got != want {
			t.Errorf("Delay(%d) = %v, want %v", i, got, want)
		}
	}
}
