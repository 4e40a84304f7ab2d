package dto

import (
	"route-weather-service/internal/domain"
	"route-weather-service/internal/geo"
)

type ForecastRequest struct {
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	DepartureTime string   `json:"departure_time"`
	StepKm        *float64 `json:"step_km"`
}

type ForecastEntryResponse struct {
	Lat        float64         `json:"lat"`
	Lon        float64         `json:"lon"`
	DistanceKm float64         `json:"distance_km"`
	Place      string          `json:"place"`
	ETA        string          `json:"eta"`
	Forecast   domain.Forecast `json:"forecast"`
}

type ForecastResponse struct {
	Origin           string                  `json:"origin"`
	Destination      string                  `json:"destination"`
	TotalDistanceKm  float64                 `json:"total_distance_km"`
	TotalDurationMin float64                 `json:"total_duration_min"`
	// Polyline encodes the sampled waypoints in Google's polyline format.
	Polyline         string                  `json:"polyline"`
	Entries          []ForecastEntryResponse `json:"entries"`
}

// NewForecastResponse flattens an itinerary for the wire.
func NewForecastResponse(it domain.Itinerary) ForecastResponse {
	res := ForecastResponse{
		Origin:           it.Origin,
		Destination:      it.Destination,
		TotalDistanceKm:  it.TotalDistanceKm,
		TotalDurationMin: it.TotalDurationMin,
		Entries:          make([]ForecastEntryResponse, 0, len(it.Entries)),
	}
	path := make([]domain.Coordinate, 0, len(it.Entries))
	for _, e := range it.Entries {
		path = append(path, e.Coordinate)
		res.Entries = append(res.Entries, ForecastEntryResponse{
			Lat:        e.Coordinate.Lat,
			Lon:        e.Coordinate.Lon,
			DistanceKm: e.DistanceKm,
			Place:      e.Place,
			ETA:        e.ETA,
			Forecast:   e.Forecast,
		})
	}
	res.Polyline = geo.EncodePolyline(path)
	return res
}
