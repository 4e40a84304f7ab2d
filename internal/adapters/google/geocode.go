package google

import (
	"context"
	"strings"

	"googlemaps.github.io/maps"

	"route-weather-service/internal/domain"
	"route-weather-service/internal/platform/obs"
	"route-weather-service/internal/ports"
)

// ReverseGeocode returns the addresses Google knows at c, best match first.
func (c *Client) ReverseGeocode(ctx context.Context, coord domain.Coordinate) (_ []ports.GeocodeResult, err error) {
	defer obs.Time(ctx, "google.ReverseGeocode")(&err)

	const op = "reverse_geocode"
	defer func() { record(op, err) }()
	if err := c.ready(op); err != nil {
		return nil, err
	}

	results, err := c.maps.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: coord.Lat, Lng: coord.Lon},
		Language: c.language,
	})
	if err != nil {
		// The SDK reports an empty answer as a status error.
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			return []ports.GeocodeResult{}, nil
		}
		return nil, ports.NewProviderError(providerName, op, ports.KindRejected, err)
	}

	out := make([]ports.GeocodeResult, 0, len(results))
	for _, r := range results {
		comps := make([]ports.AddressComponent, 0, len(r.AddressComponents))
		for _, ac := range r.AddressComponents {
			comps = append(comps, ports.AddressComponent{LongName: ac.LongName, Types: ac.Types})
		}
		out = append(out, ports.GeocodeResult{FormattedAddress: r.FormattedAddress, Components: comps})
	}

	return out, nil
}
