// Package app assembles the forecast pipeline from configuration.
// It is shared by the HTTP server and the CLI.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"route-weather-service/internal/adapters/cache"
	"route-weather-service/internal/adapters/google"
	"route-weather-service/internal/adapters/openweather"
	"route-weather-service/internal/adapters/ors"
	"route-weather-service/internal/config"
	"route-weather-service/internal/domain"
	"route-weather-service/internal/platform/db"
	"route-weather-service/internal/platform/retry"
	"route-weather-service/internal/ports"
	"route-weather-service/internal/services"
)

const sharedKeyPrefix = "route-weather:"

// Build wires concrete adapters behind ports and returns the pipeline.
// The returned cleanup closes shared cache connections and is never nil.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*services.Pipeline, func(), error) {
	cleanup := func() {}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, cleanup, err
	}
	cleanup = closeStore

	directions, err := directionsProvider(cfg)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	geocoder, err := reverseGeocoder(cfg)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	forecasts := openweather.NewClient(openweather.Config{
		APIKey:  cfg.OpenWeather.APIKey,
		BaseURL: cfg.OpenWeather.BaseURL,
		Timeout: cfg.HTTP.Timeout,
		Units:   cfg.Forecast.Units,
	})

	policy := retry.Policy{MaxAttempts: cfg.Retry.MaxAttempts, BaseDelay: cfg.Retry.BaseDelay}

	places := cache.NewMemo[string]("places", cache.MemoOptions{
		Size: cfg.Cache.Size, TTL: cfg.Cache.PlaceTTL,
		Store: store, SharedTTL: cfg.Cache.SharedTTL, Logger: logger,
	})
	weather := cache.NewMemo[domain.Forecast]("weather", cache.MemoOptions{
		Size: cfg.Cache.Size, TTL: cfg.Cache.WeatherTTL,
		Store: store, SharedTTL: min(cfg.Cache.SharedTTL, cfg.Cache.WeatherTTL), Logger: logger,
	})

	pipeline := services.NewPipeline(
		services.NewRouteClient(directions, policy, cfg.Forecast.Mode, logger),
		services.NewPlaceResolver(geocoder, policy, places, logger),
		services.NewWeatherResolver(forecasts, policy, weather, logger),
		services.PipelineOptions{
			AverageSpeedKmh: cfg.Forecast.AverageSpeedKmh,
			Workers:         cfg.Forecast.Workers,
		},
		logger,
	)

	logger.Info("pipeline ready",
		"directions", cfg.Directions.Provider,
		"geocoding", cfg.Geocoding.Provider,
		"cache_backend", cfg.Cache.Backend,
		"workers", cfg.Forecast.Workers,
	)

	return pipeline, cleanup, nil
}

func directionsProvider(cfg *config.Config) (ports.DirectionsProvider, error) {
	switch cfg.Directions.Provider {
	case "google":
		return googleClient(cfg), nil
	case "ors":
		return orsClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown directions provider %q", cfg.Directions.Provider)
	}
}

func reverseGeocoder(cfg *config.Config) (ports.ReverseGeocoder, error) {
	switch cfg.Geocoding.Provider {
	case "google":
		return googleClient(cfg), nil
	case "ors":
		return orsClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown geocoding provider %q", cfg.Geocoding.Provider)
	}
}

func googleClient(cfg *config.Config) *google.Client {
	return google.NewClient(google.Config{
		APIKey:   cfg.Google.APIKey,
		BaseURL:  cfg.Google.BaseURL,
		Timeout:  cfg.HTTP.Timeout,
		Language: cfg.Forecast.Language,
	})
}

func orsClient(cfg *config.Config) *ors.Client {
	return ors.NewClient(ors.Config{
		APIKey:  cfg.ORS.APIKey,
		BaseURL: cfg.ORS.BaseURL,
		Timeout: cfg.HTTP.Timeout,
	})
}

// openStore returns the optional shared cache tier; nil means in-process only.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.Store, func(), error) {
	switch cfg.Cache.Backend {
	case "redis":
		rs := cache.NewRedisStore(cfg.Cache.RedisAddr, sharedKeyPrefix)
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, func() {}, err
		}
		logger.Info("shared cache connected", "backend", "redis", "addr", cfg.Cache.RedisAddr)
		return rs, func() { _ = rs.Close() }, nil

	case "postgres":
		conn, err := db.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, func() {}, err
		}
		if err := cache.InitSchema(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, func() {}, err
		}
		logger.Info("shared cache connected", "backend", "postgres")
		return cache.NewSQLStore(conn), closeDB(conn), nil

	default:
		return nil, func() {}, nil
	}
}

func closeDB(conn *sql.DB) func() {
	return func() { _ = conn.Close() }
}
