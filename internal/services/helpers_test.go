package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"route-weather-service/internal/adapters/cache"
	"route-weather-service/internal/domain"
	"route-weather-service/internal/platform/retry"
	"route-weather-service/internal/ports"
)

// sleepRecorder stands in for the backoff timer so tests never wait.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func (s *sleepRecorder) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

func testPolicy(t *testing.T) (retry.Policy, *sleepRecorder) {
	t.Helper()
	rec := &sleepRecorder{}
	return retry.Policy{MaxAttempts: 3, BaseDelay: time.Second, Sleep: rec.sleep}, rec
}

func placeMemo() *cache.Memo[string] {
	return cache.NewMemo[string]("places", cache.MemoOptions{Size: 128, TTL: time.Hour})
}

func weatherMemo() *cache.Memo[domain.Forecast] {
	return cache.NewMemo[domain.Forecast]("weather", cache.MemoOptions{Size: 128, TTL: time.Hour})
}

func providerErr(kind ports.ErrorKind, msg string) error {
	return &ports.ProviderError{Provider: "test", Op: "test", Kind: kind, Err: errors.New(msg)}
}

// equatorPoint returns the point km kilometres east of (0, 0) along the equator.
func equatorPoint(km float64) domain.Coordinate {
	return domain.Coordinate{Lat: 0, Lon: km / (6371.0 * math.Pi / 180)}
}
