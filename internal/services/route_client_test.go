package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"route-weather-service/internal/adapters/mock"
	"route-weather-service/internal/domain"
	"route-weather-service/internal/ports"
)

func TestRouteClientSuccess(t *testing.T) {
	want := domain.RouteResult{TotalDistanceKm: 12.5, TotalDurationMin: 20, Path: []domain.Coordinate{{Lat: 1, Lon: 2}}}
	provider := &mock.DirectionsProvider{Responses: []mock.RouteResponse{{Route: want}}}
	policy, rec := testPolicy(t)

	got, err := NewRouteClient(provider, policy, "", nil).GetRoute(context.Background(), "A", "B")
	if err != nil {
		t.Fatalf("GetRoute: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("route mismatch (-want +got):\n%s", diff)
	}
	if provider.Calls() != 1 || len(rec.recorded()) != 0 {
		t.Fatalf("calls = %d, sleeps = %v", provider.Calls(), rec.recorded())
	}
}

func TestRouteClientRejectedIsNotRetried(t *testing.T) {
	provider := &mock.DirectionsProvider{Responses: []mock.RouteResponse{
		{Err: providerErr(ports.KindRejected, "NOT_FOUND")},
	}}
	policy, rec := testPolicy(t)

	_, err := NewRouteClient(provider, policy, "", nil).GetRoute(context.Background(), "A", "B")
	if !errors.Is(err, domain.ErrRouteNotFound) {
		t.Fatalf("err = %v, want ErrRouteNotFound", err)
	}
	if !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Fatalf("error should carry the provider message: %v", err)
	}
	if provider.Calls() != 1 || len(rec.recorded()) != 0 {
		t.Fatalf("calls = %d, sleeps = %v; want 1 call and no sleeps", provider.Calls(), rec.recorded())
	}
}

func TestRouteClientTransientExhausted(t *testing.T) {
	cause := providerErr(ports.KindTransient, "connection refused")
	provider := &mock.DirectionsProvider{Responses: []mock.RouteResponse{{Err: cause}}}
	policy, rec := testPolicy(t)

	_, err := NewRouteClient(provider, policy, "", nil).GetRoute(context.Background(), "A", "B")
	if !errors.Is(err, domain.ErrRouteUnavailable) {
		t.Fatalf("err = %v, want ErrRouteUnavailable", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v should wrap the last transport error", err)
	}
	if provider.Calls() != 3 {
		t.Fatalf("calls = %d, want 3", provider.Calls())
	}
	if diff := cmp.Diff([]time.Duration{time.Second, 2 * time.Second}, rec.recorded()); diff != "" {
		t.Fatalf("backoff mismatch (-want +got):\n%s", diff)
	}
}

func TestRouteClientRecoversAfterTransient(t *testing.T) {
	want := domain.RouteResult{TotalDistanceKm: 1}
	provider := &mock.DirectionsProvider{Responses: []mock.RouteResponse{
		{Err: providerErr(ports.KindTransient, "timeout")},
		{Route: want},
	}}
	policy, _ := testPolicy(t)

	got, err := NewRouteClient(provider, policy, "", nil).GetRoute(context.Background(), "A", "B")
	if err != nil {
		t.Fatalf("GetRoute: %v", err)
	}
	if got.TotalDistanceKm != 1 || provider.Calls() != 2 {
		t.Fatalf("got %+v after %d calls", got, provider.Calls())
	}
}

func TestRouteClientCancelled(t *testing.T) {
	provider := &mock.DirectionsProvider{Responses: []mock.RouteResponse{{}}}
	policy, _ := testPolicy(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRouteClient(provider, policy, "", nil).GetRoute(ctx, "A", "B")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if provider.Calls() != 0 {
		t.Fatalf("calls = %d, want 0", provider.Calls())
	}
}
