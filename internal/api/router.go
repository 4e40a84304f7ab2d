package api

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"route-weather-service/internal/api/handlers"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(pipeline handlers.Forecaster, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	forecastHandler := &handlers.ForecastHandler{Pipeline: pipeline, Logger: logger}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/forecasts", forecastHandler.Forecast)
	mux.Handle("/metrics", promhttp.Handler())

	return requestIDMiddleware(loggingMiddleware(logger, metricsMiddleware(mux)))
}
