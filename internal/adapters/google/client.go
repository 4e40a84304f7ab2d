// Package google adapts the Google Maps Platform SDK to the directions and
// reverse-geocoding ports.
package google

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"googlemaps.github.io/maps"

	"route-weather-service/internal/platform/metrics"
	"route-weather-service/internal/ports"
)

const providerName = "google"

type Config struct {
	APIKey string
	// BaseURL overrides the Maps API host; empty uses the SDK default.
	BaseURL  string
	Timeout  time.Duration
	Language string
}

// Client implements ports.DirectionsProvider and ports.ReverseGeocoder.
// A missing API key is reported on every call rather than at construction.
//
// The client is safe for concurrent use.
type Client struct {
	maps     *maps.Client
	initErr  error
	language string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	language := cfg.Language
	if language == "" {
		language = "en"
	}

	c := &Client{language: language}
	if cfg.APIKey == "" {
		c.initErr = errors.New("google api key is empty")
		return c
	}

	opts := []maps.ClientOption{
		maps.WithAPIKey(cfg.APIKey),
		maps.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, maps.WithBaseURL(cfg.BaseURL))
	}

	mc, err := maps.NewClient(opts...)
	if err != nil {
		c.initErr = fmt.Errorf("create maps client: %w", err)
		return c
	}
	c.maps = mc

	return c
}

func (c *Client) ready(op string) error {
	if c.initErr != nil {
		return &ports.ProviderError{Provider: providerName, Op: op, Kind: ports.KindRejected, Err: c.initErr}
	}
	return nil
}

func record(op string, err error) {
	metrics.ProviderCalls.WithLabelValues(providerName, op, ports.Outcome(err)).Inc()
}
