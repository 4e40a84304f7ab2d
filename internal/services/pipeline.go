package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"route-weather-service/internal/domain"
	"route-weather-service/internal/geo"
	"route-weather-service/internal/platform/metrics"
	"route-weather-service/internal/platform/obs"
)

const (
	DefaultStepKm          = 10.0
	DefaultAverageSpeedKmh = 40.0

	startTimeLayout = "15:04"
	etaLayout       = "03:04 PM"
)

type ForecastRequest struct {
	Origin      string
	Destination string
	// StepKm is the sampling interval; zero or negative means DefaultStepKm.
	StepKm float64
	// StartTime is the local departure time as "HH:MM".
	StartTime string
}

type PipelineOptions struct {
	AverageSpeedKmh float64
	// Workers bounds concurrent waypoint lookups; 1 resolves strictly in order.
	Workers int
}

// Pipeline turns an origin/destination pair into a weather-annotated itinerary.
// A single Pipeline is meant to be shared so its caches outlive one request.
type Pipeline struct {
	routes  *RouteClient
	places  *PlaceResolver
	weather *WeatherResolver
	speed   float64
	workers int
	logger  *slog.Logger
}

func NewPipeline(routes *RouteClient, places *PlaceResolver, weather *WeatherResolver, opts PipelineOptions, logger *slog.Logger) *Pipeline {
	speed := opts.AverageSpeedKmh
	if speed <= 0 {
		speed = DefaultAverageSpeedKmh
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		routes:  routes,
		places:  places,
		weather: weather,
		speed:   speed,
		workers: workers,
		logger:  logger,
	}
}

// ForecastRoute fetches the route, samples it every StepKm and resolves
// place and weather for each sampled waypoint. Route errors are returned
// unchanged; enrichment failures only show up as degraded entries.
func (p *Pipeline) ForecastRoute(ctx context.Context, req ForecastRequest) (_ domain.Itinerary, err error) {
	defer obs.Time(ctx, "pipeline.ForecastRoute")(&err)

	start := time.Now()
	defer func() { metrics.ForecastDuration.Observe(time.Since(start).Seconds()) }()

	origin := strings.TrimSpace(req.Origin)
	destination := strings.TrimSpace(req.Destination)
	if origin == "" || destination == "" {
		return domain.Itinerary{}, fmt.Errorf("%w: origin and destination are required", domain.ErrInvalidRequest)
	}

	departAt, err := time.Parse(startTimeLayout, strings.TrimSpace(req.StartTime))
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("%w: %q", domain.ErrInvalidStartTime, req.StartTime)
	}

	stepKm := req.StepKm
	if stepKm <= 0 {
		stepKm = DefaultStepKm
	}

	route, err := p.routes.GetRoute(ctx, origin, destination)
	if err != nil {
		return domain.Itinerary{}, err
	}

	waypoints := geo.Sample(route.Path, stepKm)
	cumulative := geo.CumulativeKm(waypoints)

	entries := make([]domain.ForecastEntry, len(waypoints))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, wp := range waypoints {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i] = domain.ForecastEntry{
				Coordinate: wp,
				DistanceKm: round1(cumulative[i]),
				Place:      p.places.ResolvePlace(gctx, wp),
				ETA:        p.eta(departAt, cumulative[i]),
				Forecast:   p.weather.ResolveWeather(gctx, wp),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Itinerary{}, err
	}

	// Waypoints already in flight when ctx was cancelled hold degraded values.
	if err := ctx.Err(); err != nil {
		return domain.Itinerary{}, err
	}

	p.logger.InfoContext(ctx, "route forecast ready",
		"req_id", obs.RequestID(ctx),
		"origin", origin,
		"destination", destination,
		"distance_km", round1(route.TotalDistanceKm),
		"path_km", round1(geo.PathLengthKm(route.Path)),
		"waypoints", len(entries),
	)

	return domain.Itinerary{
		Origin:           origin,
		Destination:      destination,
		TotalDistanceKm:  round1(route.TotalDistanceKm),
		TotalDurationMin: round1(route.TotalDurationMin),
		Entries:          entries,
	}, nil
}

// eta is the departure time plus the time to cover km at the average speed,
// on a 12-hour clock.
func (p *Pipeline) eta(departAt time.Time, km float64) string {
	travel := time.Duration(km / p.speed * float64(time.Hour))
	return departAt.Add(travel).Format(etaLayout)
}
