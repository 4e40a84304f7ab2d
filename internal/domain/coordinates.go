package domain

import (
	"fmt"
	"strconv"
)

// Immutable geographic coordinate in signed decimal degrees.
// Comparable with ==, so it can key maps directly.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Return coordinates as [lon, lat] for GeoJSON-style APIs.
func (c Coordinate) LonLat() []float64 { return []float64{c.Lon, c.Lat} }

// Short human form used when no place name is known, e.g. "37.77,-122.42".
func (c Coordinate) String() string {
	return fmt.Sprintf("%.2f,%.2f", c.Lat, c.Lon)
}

// Key renders the exact float values, so two coordinates share a key only if they are equal.
func (c Coordinate) Key() string {
	return strconv.FormatFloat(c.Lat, 'g', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'g', -1, 64)
}
