package google

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"

	"route-weather-service/internal/domain"
	"route-weather-service/internal/geo"
	"route-weather-service/internal/platform/obs"
	"route-weather-service/internal/ports"
)

// Route requests driving directions and decodes the overview polyline.
// Non-OK statuses come back from the SDK as plain errors and are reported as KindRejected.
func (c *Client) Route(ctx context.Context, origin, destination, mode string) (_ domain.RouteResult, err error) {
	defer obs.Time(ctx, "google.Route")(&err)

	const op = "directions"
	defer func() { record(op, err) }()
	if err := c.ready(op); err != nil {
		return domain.RouteResult{}, err
	}

	if mode == "" {
		mode = string(maps.TravelModeDriving)
	}

	routes, _, err := c.maps.Directions(ctx, &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.Mode(mode),
		Language:    c.language,
	})
	if err != nil {
		return domain.RouteResult{}, ports.NewProviderError(providerName, op, ports.KindRejected, err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return domain.RouteResult{}, &ports.ProviderError{
			Provider: providerName, Op: op, Kind: ports.KindNoData,
			Err: fmt.Errorf("no route from %q to %q", origin, destination),
		}
	}

	route := routes[0]
	leg := route.Legs[0]

	path, err := geo.DecodePolyline(route.OverviewPolyline.Points)
	if err != nil {
		return domain.RouteResult{}, &ports.ProviderError{Provider: providerName, Op: op, Kind: ports.KindMalformed, Err: err}
	}
	if len(path) == 0 {
		return domain.RouteResult{}, &ports.ProviderError{
			Provider: providerName, Op: op, Kind: ports.KindMalformed,
			Err: errors.New("route has an empty overview polyline"),
		}
	}

	return domain.RouteResult{
		TotalDistanceKm:  float64(leg.Distance.Meters) / 1000,
		TotalDurationMin: leg.Duration.Minutes(),
		Path:             path,
	}, nil
}
