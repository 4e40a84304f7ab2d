package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the service and the CLI.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Directions  ProviderSelection `mapstructure:"directions"`
	Geocoding   ProviderSelection `mapstructure:"geocoding"`
	Google      APIConfig         `mapstructure:"google"`
	ORS         APIConfig         `mapstructure:"ors"`
	OpenWeather APIConfig         `mapstructure:"openweather"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Retry       RetryConfig       `mapstructure:"retry"`
	Forecast    ForecastConfig    `mapstructure:"forecast"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Database    DatabaseConfig    `mapstructure:"database"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
}

type ProviderSelection struct {
	Provider string `mapstructure:"provider"` // google, ors
}

// APIConfig is a remote provider credential plus an optional endpoint override.
// An empty APIKey is allowed; calls to that provider then fail at request time.
type APIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"` // per attempt
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
}

type ForecastConfig struct {
	StepKm          float64 `mapstructure:"step_km"`
	AverageSpeedKmh float64 `mapstructure:"average_speed_kmh"`
	Workers         int     `mapstructure:"workers"`
	Mode            string  `mapstructure:"mode"`
	Units           string  `mapstructure:"units"`
	Language        string  `mapstructure:"language"`
}

type CacheConfig struct {
	Size       int           `mapstructure:"size"`
	PlaceTTL   time.Duration `mapstructure:"place_ttl"`
	WeatherTTL time.Duration `mapstructure:"weather_ttl"`
	Backend    string        `mapstructure:"backend"` // none, redis, postgres
	RedisAddr  string        `mapstructure:"redis_addr"`
	SharedTTL  time.Duration `mapstructure:"shared_ttl"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// Load reads .env, an optional config.yaml and the environment.
// Environment variables use the ROUTE_WEATHER_ prefix (ROUTE_WEATHER_FORECAST_STEP_KM -> forecast.step_km);
// provider credentials keep their conventional names.
func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith is Load on a caller-supplied viper instance, e.g. one with bound CLI flags.
func LoadWith(v *viper.Viper) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	SetDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("ROUTE_WEATHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"google.api_key":      "GOOGLE_API_KEY",
		"ors.api_key":         "ORS_API_KEY",
		"openweather.api_key": "OWM_API_KEY",
		"database.url":        "DATABASE_URL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("directions.provider", "google")
	v.SetDefault("geocoding.provider", "google")
	v.SetDefault("google.base_url", "")
	v.SetDefault("ors.base_url", "https://api.openrouteservice.org")
	v.SetDefault("openweather.base_url", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("http.timeout", 10*time.Second)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.base_delay", time.Second)
	v.SetDefault("forecast.step_km", 10.0)
	v.SetDefault("forecast.average_speed_kmh", 40.0)
	v.SetDefault("forecast.workers", 4)
	v.SetDefault("forecast.mode", "driving")
	v.SetDefault("forecast.units", "metric")
	v.SetDefault("forecast.language", "en")
	v.SetDefault("cache.size", 4096)
	v.SetDefault("cache.place_ttl", 24*time.Hour)
	v.SetDefault("cache.weather_ttl", 30*time.Minute)
	v.SetDefault("cache.backend", "none")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.shared_ttl", 6*time.Hour)
}

// Validate checks that configuration values are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if !oneOf(c.Directions.Provider, "google", "ors") {
		errs = append(errs, fmt.Sprintf("directions.provider must be google or ors, got %q", c.Directions.Provider))
	}
	if !oneOf(c.Geocoding.Provider, "google", "ors") {
		errs = append(errs, fmt.Sprintf("geocoding.provider must be google or ors, got %q", c.Geocoding.Provider))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, "http.timeout must be positive")
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Sprintf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts))
	}
	if c.Retry.BaseDelay < 0 {
		errs = append(errs, "retry.base_delay must not be negative")
	}
	if c.Forecast.StepKm <= 0 {
		errs = append(errs, "forecast.step_km must be positive")
	}
	if c.Forecast.AverageSpeedKmh <= 0 {
		errs = append(errs, "forecast.average_speed_kmh must be positive")
	}
	if c.Forecast.Workers < 1 {
		errs = append(errs, fmt.Sprintf("forecast.workers must be at least 1, got %d", c.Forecast.Workers))
	}
	if c.Cache.Size < 1 {
		errs = append(errs, fmt.Sprintf("cache.size must be at least 1, got %d", c.Cache.Size))
	}
	switch c.Cache.Backend {
	case "none":
	case "redis":
		if c.Cache.RedisAddr == "" {
			errs = append(errs, "cache.redis_addr is required for the redis backend")
		}
	case "postgres":
		if c.Database.URL == "" {
			errs = append(errs, "DATABASE_URL is required for the postgres backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("cache.backend must be none, redis or postgres, got %q", c.Cache.Backend))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ServerAddr returns the listen address in the form ":port".
func (c *Config) ServerAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func oneOf(s string, options ...string) bool {
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}
