package ports

import (
	"context"

	"route-weather-service/internal/domain"
)

// Contract for retrieving a road route between two free-text locations.
// Implementations make exactly one provider request per call.
type DirectionsProvider interface {
	Route(ctx context.Context, origin, destination, mode string) (domain.RouteResult, error)
}
