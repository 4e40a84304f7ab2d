package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"route-weather-service/internal/adapters/mock"
	"route-weather-service/internal/domain"
	"route-weather-service/internal/ports"
)

func TestDescribeRain(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{100, "Heavy Rain (100%)"},
		{71, "Heavy Rain (71%)"},
		{70, "Moderate Rain (70%)"},
		{41, "Moderate Rain (41%)"},
		{40, "Light Rain (40%)"},
		{11, "Light Rain (11%)"},
		{10, "Clear (10%)"},
		{0, "Clear (0%)"},
	}
	for _, tt := range tests {
		if got := DescribeRain(tt.p); got != tt.want {
			t.Errorf("DescribeRain(%v) = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestResolveWeatherUsesFirstStep(t *testing.T) {
	c := domain.Coordinate{Lat: 39.74, Lon: -104.99}
	provider := &mock.ForecastProvider{Steps: map[domain.Coordinate][]ports.ForecastStep{
		c: {mock.Step(0.55, 12.34), mock.Step(0.95, 3)},
	}}
	policy, _ := testPolicy(t)
	r := NewWeatherResolver(provider, policy, weatherMemo(), nil)

	want := domain.Forecast{Description: "Moderate Rain (55%)", Temperature: domain.TemperatureOf(12.3)}
	for range 2 {
		if diff := cmp.Diff(want, r.ResolveWeather(context.Background(), c)); diff != "" {
			t.Fatalf("forecast mismatch (-want +got):\n%s", diff)
		}
	}
	if n := provider.Calls(c); n != 1 {
		t.Fatalf("provider calls = %d, want 1", n)
	}
}

func TestResolveWeatherMissingTemperature(t *testing.T) {
	c := domain.Coordinate{Lat: 1, Lon: 2}
	provider := &mock.ForecastProvider{Steps: map[domain.Coordinate][]ports.ForecastStep{c: {{Pop: 0.8}}}}
	policy, sleeps := testPolicy(t)

	got := NewWeatherResolver(provider, policy, weatherMemo(), nil).ResolveWeather(context.Background(), c)
	want := domain.Forecast{Description: DescForecastError}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("forecast mismatch (-want +got):\n%s", diff)
	}
	if got.Temperature.String() != domain.TemperatureUnavailable {
		t.Fatalf("temperature = %v, want sentinel", got.Temperature)
	}
	if d := sleeps.recorded(); len(d) != 0 {
		t.Fatalf("sleeps = %v, want none", d)
	}
}

func TestResolveWeatherDegrades(t *testing.T) {
	c := domain.Coordinate{Lat: 39.74, Lon: -104.99}

	tests := []struct {
		name      string
		errs      []error
		steps     []ports.ForecastStep
		want      string
		wantCalls int
	}{
		{"no forecast list", []error{providerErr(ports.KindNoData, "no list")}, nil, DescNoForecast, 1},
		{"empty forecast list", nil, []ports.ForecastStep{}, DescNoForecast, 1},
		{"transient exhausted", []error{
			providerErr(ports.KindTransient, "timeout"),
			providerErr(ports.KindTransient, "timeout"),
			providerErr(ports.KindTransient, "timeout"),
		}, nil, DescForecastUnavailable, 3},
		{"rejected", []error{providerErr(ports.KindRejected, "401")}, nil, DescForecastError, 1},
		{"malformed", []error{providerErr(ports.KindMalformed, "bad json")}, nil, DescForecastError, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mock.ForecastProvider{
				Errs:  map[domain.Coordinate][]error{c: tt.errs},
				Steps: map[domain.Coordinate][]ports.ForecastStep{c: tt.steps},
			}
			policy, _ := testPolicy(t)
			r := NewWeatherResolver(provider, policy, weatherMemo(), nil)

			got := r.ResolveWeather(context.Background(), c)
			if got.Description != tt.want || got.Temperature.Valid {
				t.Fatalf("forecast = %+v, want %q without temperature", got, tt.want)
			}
			if n := provider.Calls(c); n != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", n, tt.wantCalls)
			}

			r.ResolveWeather(context.Background(), c)
			if n := provider.Calls(c); n != tt.wantCalls {
				t.Fatalf("degraded result was not cached: calls = %d", n)
			}
		})
	}
}

// blockingForecasts holds its first call until the caller's context ends,
// then answers every later call.
type blockingForecasts struct {
	started chan struct{}
	calls   atomic.Int32
}

func (b *blockingForecasts) Forecast(ctx context.Context, c domain.Coordinate) ([]ports.ForecastStep, error) {
	if b.calls.Add(1) == 1 {
		close(b.started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return []ports.ForecastStep{mock.Step(0.2, 15)}, nil
}

func TestResolveWeatherIgnoresOtherCallersCancellation(t *testing.T) {
	c := domain.Coordinate{Lat: 39.74, Lon: -104.99}
	provider := &blockingForecasts{started: make(chan struct{})}
	policy, _ := testPolicy(t)
	r := NewWeatherResolver(provider, policy, weatherMemo(), nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	doneA := make(chan domain.Forecast)
	go func() { doneA <- r.ResolveWeather(ctxA, c) }()
	<-provider.started

	doneB := make(chan domain.Forecast)
	go func() { doneB <- r.ResolveWeather(context.Background(), c) }()

	time.Sleep(20 * time.Millisecond)
	cancelA()
	<-doneA

	want := domain.Forecast{Description: "Light Rain (20%)", Temperature: domain.TemperatureOf(15)}
	if diff := cmp.Diff(want, <-doneB); diff != "" {
		t.Fatalf("caller with a live context got a degraded forecast (-want +got):\n%s", diff)
	}
}
