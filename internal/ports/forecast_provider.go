package ports

import (
	"context"

	"route-weather-service/internal/domain"
)

// One time step of a multi-step forecast.
// Pop is the probability of precipitation in [0, 1]; Temp is nil when the provider omitted it.
type ForecastStep struct {
	Pop  float64
	Temp *float64
}

// Contract for retrieving a time-ordered forecast at a coordinate.
// A response without any forecast list is reported as a KindNoData ProviderError.
type ForecastProvider interface {
	Forecast(ctx context.Context, c domain.Coordinate) ([]ForecastStep, error)
}
