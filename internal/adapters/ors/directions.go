package ors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"route-weather-service/internal/domain"
	"route-weather-service/internal/geo"
	"route-weather-service/internal/platform/obs"
	"route-weather-service/internal/ports"
)

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
		Geometry string `json:"geometry"`
	} `json:"routes"`
}

// Route geocodes origin and destination, then requests a single route
// between them from /v2/directions/{profile}/json.
func (o *Client) Route(ctx context.Context, origin, destination, mode string) (_ domain.RouteResult, err error) {
	defer obs.Time(ctx, "ors.Route")(&err)

	const op = "directions"
	if err := o.ready(op); err != nil {
		record(op, err)
		return domain.RouteResult{}, err
	}

	if normalize(origin) == "" || normalize(destination) == "" {
		err := &ports.ProviderError{Provider: providerName, Op: op, Kind: ports.KindRejected, Err: errors.New("origin and destination must be non-empty")}
		record(op, err)
		return domain.RouteResult{}, err
	}

	from, err := o.geocode(ctx, origin)
	if err != nil {
		return domain.RouteResult{}, fmt.Errorf("geocode origin: %w", err)
	}
	to, err := o.geocode(ctx, destination)
	if err != nil {
		return domain.RouteResult{}, fmt.Errorf("geocode destination: %w", err)
	}

	defer func() { record(op, err) }()

	payload, err := json.Marshal(directionsRequest{Coordinates: [][]float64{from.LonLat(), to.LonLat()}})
	if err != nil {
		return domain.RouteResult{}, fmt.Errorf("marshal directions request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s/json", o.baseURL, profileFor(mode))
	req, err := o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.RouteResult{}, err
	}

	var dr directionsResponse
	if err := o.doJSON(req, op, &dr); err != nil {
		return domain.RouteResult{}, err
	}

	if len(dr.Routes) == 0 {
		return domain.RouteResult{}, &ports.ProviderError{
			Provider: providerName, Op: op, Kind: ports.KindNoData,
			Err: fmt.Errorf("no route from %q to %q", origin, destination),
		}
	}

	route := dr.Routes[0]
	path, err := geo.DecodePolyline(route.Geometry)
	if err != nil || len(path) == 0 {
		if err == nil {
			err = errors.New("route has an empty geometry")
		}
		return domain.RouteResult{}, &ports.ProviderError{Provider: providerName, Op: op, Kind: ports.KindMalformed, Err: err}
	}

	return domain.RouteResult{
		TotalDistanceKm:  route.Summary.Distance / 1000,
		TotalDurationMin: route.Summary.Duration / 60,
		Path:             path,
	}, nil
}
