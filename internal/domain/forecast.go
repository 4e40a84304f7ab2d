package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Placeholder rendered for a temperature the provider could not supply.
const TemperatureUnavailable = "N/A"

// Temperature in the configured unit system, or unavailable.
type Temperature struct {
	Value float64
	Valid bool
}

func TemperatureOf(v float64) Temperature { return Temperature{Value: v, Valid: true} }

func (t Temperature) String() string {
	if !t.Valid {
		return TemperatureUnavailable
	}
	return strconv.FormatFloat(t.Value, 'f', 1, 64)
}

// Valid temperatures encode as JSON numbers, unavailable ones as "N/A".
func (t Temperature) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return json.Marshal(TemperatureUnavailable)
	}
	return json.Marshal(t.Value)
}

func (t *Temperature) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if (len(b) > 0 && b[0] == '"') || bytes.Equal(b, []byte("null")) {
		*t = Temperature{}
		return nil
	}

	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("decode temperature: %w", err)
	}
	*t = TemperatureOf(v)
	return nil
}

// Near-term weather summary for one waypoint.
type Forecast struct {
	Description string      `json:"description"`
	Temperature Temperature `json:"temperature"`
}

// One row of an itinerary.
type ForecastEntry struct {
	Coordinate Coordinate `json:"coordinate"`
	DistanceKm float64    `json:"distance_km"`
	Place      string     `json:"place"`
	ETA        string     `json:"eta"`
	Forecast   Forecast   `json:"forecast"`
}

// Weather-annotated itinerary, one entry per sampled waypoint in travel order.
type Itinerary struct {
	Origin           string
	Destination      string
	TotalDistanceKm  float64
	TotalDurationMin float64
	Entries          []ForecastEntry
}
