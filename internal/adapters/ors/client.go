// Package ors is an OpenRouteService implementation of the directions and
// reverse-geocoding ports.
package ors

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"route-weather-service/internal/domain"
	"route-weather-service/internal/platform/metrics"
	"route-weather-service/internal/ports"
)

const (
	providerName   = "ors"
	defaultBaseURL = "https://api.openrouteservice.org"
)

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// Country restricts forward geocoding (boundary.country); empty searches worldwide.
	Country string
}

// Client implements ports.DirectionsProvider and ports.ReverseGeocoder using OpenRouteService.
//
// It coordinates:
//   - Address normalization
//   - Forward geocoding of free-text origin and destination
//   - Directions and reverse geocoding calls
//
// Retries are left to the caller. The client is safe for concurrent use.
type Client struct {
	session *http.Client
	apiKey  string
	baseURL string
	country string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		session: &http.Client{Timeout: timeout},
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		country: cfg.Country,
	}
}

func (o *Client) ready(op string) error {
	if o.apiKey == "" {
		return &ports.ProviderError{Provider: providerName, Op: op, Kind: ports.KindRejected, Err: errors.New("ORS api key is empty")}
	}
	return nil
}

// normalize collapses whitespace so equal addresses geocode identically.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// profileFor maps a travel mode onto an ORS routing profile.
func profileFor(mode string) string {
	switch mode {
	case "", "driving":
		return "driving-car"
	case "walking":
		return "foot-walking"
	case "bicycling":
		return "cycling-regular"
	default:
		return mode
	}
}

// parseLatLon accepts "lat,lon" so callers can skip forward geocoding.
func parseLatLon(s string) (domain.Coordinate, bool) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return domain.Coordinate{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || lat < -90 || lat > 90 {
		return domain.Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil || lon < -180 || lon > 180 {
		return domain.Coordinate{}, false
	}
	return domain.Coordinate{Lat: lat, Lon: lon}, true
}

func record(op string, err error) {
	metrics.ProviderCalls.WithLabelValues(providerName, op, ports.Outcome(err)).Inc()
}
