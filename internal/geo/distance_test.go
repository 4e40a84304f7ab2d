package geo

import (
	"math"
	"testing"

	"route-weather-service/internal/domain"
)

func TestDistanceKm(t *testing.T) {
	got := DistanceKm(domain.Coordinate{Lat: 0, Lon: 0}, domain.Coordinate{Lat: 0, Lon: 1})
	if math.Abs(got-111.19) > 0.5 {
		t.Fatalf("DistanceKm((0,0),(0,1)) = %.3f, want ~111.19", got)
	}
}

func TestDistanceKmSymmetricAndZero(t *testing.T) {
	points := []domain.Coordinate{
		{Lat: 37.7749, Lon: -122.4194},
		{Lat: 34.0522, Lon: -118.2437},
		{Lat: -33.8688, Lon: 151.2093},
		{Lat: 51.5074, Lon: -0.1278},
		{Lat: 89.9, Lon: 179.9},
		{Lat: 0, Lon: -180},
	}

	for _, a := range points {
		if d := DistanceKm(a, a); d != 0 {
			t.Errorf("DistanceKm(%v, %v) = %v, want 0", a, a, d)
		}
		for _, b := range points {
			ab, ba := DistanceKm(a, b), DistanceKm(b, a)
			if math.Abs(ab-ba) > 1e-9 {
				t.Errorf("DistanceKm not symmetric for %v, %v: %v != %v", a, b, ab, ba)
			}
		}
	}
}

func TestPathLengthKm(t *testing.T) {
	path := []domain.Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 0, Lon: 2}}
	want := 2 * DistanceKm(path[0], path[1])
	if got := PathLengthKm(path); math.Abs(got-want) > 1e-9 {
		t.Errorf("PathLengthKm = %v, want %v", got, want)
	}
	if got := PathLengthKm(path[:1]); got != 0 {
		t.Errorf("PathLengthKm(single point) = %v, want 0", got)
	}
}
