package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"route-weather-service/internal/adapters/cache"
	"route-weather-service/internal/domain"
	"route-weather-service/internal/platform/retry"
	"route-weather-service/internal/ports"
)

const (
	DescNoForecast          = "No Forecast"
	DescForecastUnavailable = "Forecast Unavailable"
	DescForecastError       = "Forecast Error"
)

// WeatherResolver summarizes the nearest forecast step at a coordinate.
// Like PlaceResolver it degrades instead of failing.
type WeatherResolver struct {
	provider ports.ForecastProvider
	policy   retry.Policy
	memo     *cache.Memo[domain.Forecast]
	logger   *slog.Logger
}

func NewWeatherResolver(provider ports.ForecastProvider, policy retry.Policy, memo *cache.Memo[domain.Forecast], logger *slog.Logger) *WeatherResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &WeatherResolver{provider: provider, policy: policy, memo: memo, logger: logger}
}

func (r *WeatherResolver) ResolveWeather(ctx context.Context, c domain.Coordinate) domain.Forecast {
	return r.memo.Get(ctx, c, func(ctx context.Context) (domain.Forecast, bool) {
		var steps []ports.ForecastStep
		_, err := retry.Do(ctx, r.policy, r.logger, ports.IsTransient, func(ctx context.Context) error {
			s, err := r.provider.Forecast(ctx, c)
			if err != nil {
				return err
			}
			steps = s
			return nil
		})
		if err != nil {
			r.logger.WarnContext(ctx, "forecast lookup failed",
				"coordinate", c.String(),
				"kind", ports.KindOf(err).String(),
				"error", err,
			)
			return degradedForecast(err), ctx.Err() == nil
		}

		if len(steps) == 0 {
			return domain.Forecast{Description: DescNoForecast}, true
		}

		return summarize(steps[0]), true
	})
}

func degradedForecast(err error) domain.Forecast {
	switch ports.KindOf(err) {
	case ports.KindNoData:
		return domain.Forecast{Description: DescNoForecast}
	case ports.KindTransient:
		return domain.Forecast{Description: DescForecastUnavailable}
	default:
		return domain.Forecast{Description: DescForecastError}
	}
}

// summarize reports a step without a temperature as an error rather than
// pairing its rain label with the sentinel.
func summarize(step ports.ForecastStep) domain.Forecast {
	if step.Temp == nil {
		return domain.Forecast{Description: DescForecastError}
	}
	return domain.Forecast{
		Description: DescribeRain(step.Pop * 100),
		Temperature: domain.TemperatureOf(round1(*step.Temp)),
	}
}

// DescribeRain labels a rain probability given in percent.
func DescribeRain(p float64) string {
	switch {
	case p > 70:
		return fmt.Sprintf("Heavy Rain (%.0f%%)", p)
	case p > 40:
		return fmt.Sprintf("Moderate Rain (%.0f%%)", p)
	case p > 10:
		return fmt.Sprintf("Light Rain (%.0f%%)", p)
	default:
		return fmt.Sprintf("Clear (%.0f%%)", p)
	}
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
