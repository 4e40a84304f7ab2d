package geo

import (
	"fmt"

	"github.com/twpayne/go-polyline"

	"route-weather-service/internal/domain"
)

// DecodePolyline reverses the 5-decimal signed-delta polyline encoding
// used by Google and OpenRouteService into [lat, lon] coordinates.
func DecodePolyline(encoded string) ([]domain.Coordinate, error) {
	if encoded == "" {
		return nil, nil
	}

	coords, rest, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("decode polyline: %d trailing bytes", len(rest))
	}

	out := make([]domain.Coordinate, 0, len(coords))
	for _, c := range coords {
		out = append(out, domain.Coordinate{Lat: c[0], Lon: c[1]})
	}

	return out, nil
}

// EncodePolyline is the inverse of DecodePolyline.
func EncodePolyline(path []domain.Coordinate) string {
	coords := make([][]float64, 0, len(path))
	for _, c := range path {
		coords = append(coords, []float64{c.Lat, c.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}
