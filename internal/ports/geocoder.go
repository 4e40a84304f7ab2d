package ports

import (
	"context"

	"route-weather-service/internal/domain"
)

// One typed part of a geocoded address, e.g. {"Boulder", ["locality", "political"]}.
type AddressComponent struct {
	LongName string
	Types    []string
}

type GeocodeResult struct {
	FormattedAddress string
	Components       []AddressComponent
}

// Contract for mapping a coordinate to addresses, best match first.
// An empty slice with a nil error means the provider knows nothing there.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, c domain.Coordinate) ([]GeocodeResult, error)
}
