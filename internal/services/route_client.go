package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"route-weather-service/internal/domain"
	"route-weather-service/internal/platform/obs"
	"route-weather-service/internal/platform/retry"
	"route-weather-service/internal/ports"
)

// RouteClient fetches a route, retrying only network-level failures.
//
// Failures surface as one of two sentinels:
//   - domain.ErrRouteNotFound when the provider answered without a usable route
//   - domain.ErrRouteUnavailable when every attempt failed in transit
type RouteClient struct {
	provider ports.DirectionsProvider
	policy   retry.Policy
	mode     string
	logger   *slog.Logger
}

func NewRouteClient(provider ports.DirectionsProvider, policy retry.Policy, mode string, logger *slog.Logger) *RouteClient {
	if logger == nil {
		logger = slog.Default()
	}
	if mode == "" {
		mode = "driving"
	}
	return &RouteClient{provider: provider, policy: policy, mode: mode, logger: logger}
}

func (c *RouteClient) GetRoute(ctx context.Context, origin, destination string) (_ domain.RouteResult, err error) {
	defer obs.Time(ctx, "routeClient.GetRoute")(&err)

	var route domain.RouteResult
	attempts, err := retry.Do(ctx, c.policy, c.logger, ports.IsTransient, func(ctx context.Context) error {
		r, err := c.provider.Route(ctx, origin, destination, c.mode)
		if err != nil {
			return err
		}
		route = r
		return nil
	})

	switch {
	case err == nil:
		return route, nil
	case errors.Is(err, context.Canceled):
		return domain.RouteResult{}, err
	case ports.IsTransient(err):
		return domain.RouteResult{}, fmt.Errorf("%w after %d attempts: %w", domain.ErrRouteUnavailable, attempts, err)
	default:
		return domain.RouteResult{}, fmt.Errorf("%w: %w", domain.ErrRouteNotFound, err)
	}
}
