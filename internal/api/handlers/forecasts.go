package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"route-weather-service/internal/api/dto"
	"route-weather-service/internal/domain"
	"route-weather-service/internal/platform/obs"
	"route-weather-service/internal/services"
)

const (
	maxLocationLen = 200
	maxStepKm      = 1000
	maxBodyBytes   = 1 << 16
)

// Forecaster is the slice of services.Pipeline the handler depends on.
type Forecaster interface {
	ForecastRoute(ctx context.Context, req services.ForecastRequest) (domain.Itinerary, error)
}

type ForecastHandler struct {
	Pipeline Forecaster
	Logger   *slog.Logger
}

// Forecast validates the request, runs the pipeline and maps route
// failures onto HTTP statuses.
func (h *ForecastHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.ForecastRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if msg := validate(req); msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	svcReq := services.ForecastRequest{
		Origin:      strings.TrimSpace(req.Origin),
		Destination: strings.TrimSpace(req.Destination),
		StartTime:   strings.TrimSpace(req.DepartureTime),
	}
	if req.StepKm != nil {
		svcReq.StepKm = *req.StepKm
	}

	it, err := h.Pipeline.ForecastRoute(r.Context(), svcReq)
	if err != nil {
		status, msg := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger().ErrorContext(r.Context(), "route forecast failed", "req_id", obs.RequestID(r.Context()), "error", err)
		}
		writeError(w, r, status, msg)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewForecastResponse(it))
}

func validate(req dto.ForecastRequest) string {
	fields := []struct{ name, value string }{
		{"origin", req.Origin},
		{"destination", req.Destination},
	}
	for _, f := range fields {
		v := strings.TrimSpace(f.value)
		if v == "" {
			return f.name + " is required"
		}
		if utf8.RuneCountInString(v) > maxLocationLen {
			return fmt.Sprintf("%s must be at most %d characters", f.name, maxLocationLen)
		}
	}

	if strings.TrimSpace(req.DepartureTime) == "" {
		return "departure_time is required"
	}

	if req.StepKm != nil && (*req.StepKm <= 0 || *req.StepKm > maxStepKm) {
		return fmt.Sprintf("step_km must be greater than 0 and at most %d", maxStepKm)
	}

	return ""
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidStartTime), errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrRouteNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrRouteUnavailable):
		return http.StatusServiceUnavailable, "route provider unavailable, try again later"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (h *ForecastHandler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}
