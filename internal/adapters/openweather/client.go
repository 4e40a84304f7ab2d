// Package openweather fetches 5-day / 3-hour forecasts from the OpenWeather API.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"route-weather-service/internal/domain"
	"route-weather-service/internal/platform/metrics"
	"route-weather-service/internal/platform/obs"
	"route-weather-service/internal/ports"
)

const (
	providerName     = "openweather"
	defaultBaseURL   = "https://api.openweathermap.org/data/2.5"
	forecastEndpoint = "/forecast"
	defaultTimeout   = 10 * time.Second
	userAgent        = "route-weather-service/1.0"
)

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// Units is passed through as the "units" query parameter (metric by default).
	Units string
}

// Client implements ports.ForecastProvider. Retries are left to the caller.
type Client struct {
	http   *resty.Client
	apiKey string
	units  string
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	units := cfg.Units
	if units == "" {
		units = "metric"
	}

	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("User-Agent", userAgent).
			SetTimeout(timeout),
		apiKey: cfg.APIKey,
		units:  units,
	}
}

type forecastResponse struct {
	// Pointer so an absent list is distinguishable from an empty one.
	List *[]struct {
		Pop  float64 `json:"pop"`
		Main struct {
			Temp *float64 `json:"temp"`
		} `json:"main"`
	} `json:"list"`
}

type apiError struct {
	// OpenWeather sends cod as a string on some endpoints and a number on others.
	Cod     json.RawMessage `json:"cod"`
	Message string          `json:"message"`
}

// Forecast returns the forecast steps for c in chronological order.
func (c *Client) Forecast(ctx context.Context, coord domain.Coordinate) (_ []ports.ForecastStep, err error) {
	defer obs.Time(ctx, "openweather.Forecast")(&err)

	const op = "forecast"
	defer func() {
		metrics.ProviderCalls.WithLabelValues(providerName, op, ports.Outcome(err)).Inc()
	}()

	// Without a key OpenWeather answers 401 with a JSON body lacking "list".
	if c.apiKey == "" {
		return nil, &ports.ProviderError{Provider: providerName, Op: op, Kind: ports.KindNoData, Err: errors.New("openweather api key is empty")}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":   strconv.FormatFloat(coord.Lat, 'f', -1, 64),
			"lon":   strconv.FormatFloat(coord.Lon, 'f', -1, 64),
			"appid": c.apiKey,
			"units": c.units,
		}).
		Get(forecastEndpoint)
	if err != nil {
		return nil, ports.NewProviderError(providerName, op, ports.KindUnknown, err)
	}

	if !resp.IsSuccess() {
		var ae apiError
		msg := resp.Status()
		decoded := json.Unmarshal(resp.Body(), &ae) == nil
		if decoded && ae.Message != "" {
			msg = ae.Message
		}

		// A JSON error body carries no forecast list, which reads as no data.
		kind := ports.KindRejected
		if decoded {
			kind = ports.KindNoData
		}
		return nil, &ports.ProviderError{
			Provider: providerName, Op: op, Kind: kind,
			Err: fmt.Errorf("status %d: %s", resp.StatusCode(), msg),
		}
	}

	var body forecastResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &ports.ProviderError{Provider: providerName, Op: op, Kind: ports.KindMalformed, Err: fmt.Errorf("decode forecast: %w", err)}
	}
	if body.List == nil {
		return nil, &ports.ProviderError{Provider: providerName, Op: op, Kind: ports.KindNoData, Err: errors.New("response has no forecast list")}
	}

	steps := make([]ports.ForecastStep, 0, len(*body.List))
	for _, s := range *body.List {
		steps = append(steps, ports.ForecastStep{Pop: s.Pop, Temp: s.Main.Temp})
	}

	return steps, nil
}
