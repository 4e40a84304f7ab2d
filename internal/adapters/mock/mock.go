// Package mock provides scripted, call-counting providers for tests and offline runs.
package mock

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"route-weather-service/internal/domain"
	"route-weather-service/internal/ports"
)

// DirectionsProvider replays Responses in order; the last one repeats.
type DirectionsProvider struct {
	Responses []RouteResponse
	calls     atomic.Int32
}

type RouteResponse struct {
	Route domain.RouteResult
	Err   error
}

func (p *DirectionsProvider) Route(ctx context.Context, origin, destination, mode string) (domain.RouteResult, error) {
	n := int(p.calls.Add(1)) - 1
	if len(p.Responses) == 0 {
		return domain.RouteResult{}, fmt.Errorf("no scripted route for %q -> %q", origin, destination)
	}
	r := p.Responses[min(n, len(p.Responses)-1)]
	return r.Route, r.Err
}

func (p *DirectionsProvider) Calls() int { return int(p.calls.Load()) }

// Geocoder answers from a per-coordinate table. Errs, when set for a
// coordinate, is consumed one entry per call before falling back to Results.
type Geocoder struct {
	mu      sync.Mutex
	Results map[domain.Coordinate][]ports.GeocodeResult
	Errs    map[domain.Coordinate][]error
	calls   map[domain.Coordinate]int
}

func (g *Geocoder) ReverseGeocode(ctx context.Context, c domain.Coordinate) ([]ports.GeocodeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.calls == nil {
		g.calls = make(map[domain.Coordinate]int)
	}
	n := g.calls[c]
	g.calls[c]++

	if errs := g.Errs[c]; n < len(errs) {
		return nil, errs[n]
	}
	return g.Results[c], nil
}

// Calls returns how many lookups were made for c.
func (g *Geocoder) Calls(c domain.Coordinate) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[c]
}

// TotalCalls returns how many lookups were made across all coordinates.
func (g *Geocoder) TotalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := 0
	for _, n := range g.calls {
		total += n
	}
	return total
}

// ForecastProvider mirrors Geocoder for forecasts. Coordinates missing from
// Steps get Default.
type ForecastProvider struct {
	mu      sync.Mutex
	Steps   map[domain.Coordinate][]ports.ForecastStep
	Default []ports.ForecastStep
	Errs    map[domain.Coordinate][]error
	calls   map[domain.Coordinate]int
}

func (f *ForecastProvider) Forecast(ctx context.Context, c domain.Coordinate) ([]ports.ForecastStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.calls == nil {
		f.calls = make(map[domain.Coordinate]int)
	}
	n := f.calls[c]
	f.calls[c]++

	if errs := f.Errs[c]; n < len(errs) {
		return nil, errs[n]
	}
	if steps, ok := f.Steps[c]; ok {
		return steps, nil
	}
	return f.Default, nil
}

func (f *ForecastProvider) Calls(c domain.Coordinate) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[c]
}

func (f *ForecastProvider) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// Step builds a forecast step with a temperature.
func Step(pop, temp float64) ports.ForecastStep {
	return ports.ForecastStep{Pop: pop, Temp: &temp}
}
