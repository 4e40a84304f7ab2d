package geo

import "route-weather-service/internal/domain"

// Sample reduces a dense path to waypoints spaced at least stepKm apart.
//
// The first point is always kept. Distance accumulates from the last accepted
// waypoint and a point is accepted once the accumulator reaches stepKm. The last
// point of the path is appended unless it was already accepted, so the final
// gap may be shorter than stepKm. The result is a subsequence of path.
func Sample(path []domain.Coordinate, stepKm float64) []domain.Coordinate {
	if len(path) == 0 {
		return nil
	}

	sampled := []domain.Coordinate{path[0]}
	last := path[0]
	acc := 0.0

	for _, pt := range path[1:] {
		acc += DistanceKm(last, pt)
		if acc >= stepKm {
			sampled = append(sampled, pt)
			acc = 0
			last = pt
		}
	}

	if end := path[len(path)-1]; sampled[len(sampled)-1] != end {
		sampled = append(sampled, end)
	}

	return sampled
}

// CumulativeKm returns the running distance along points, starting at 0.
func CumulativeKm(points []domain.Coordinate) []float64 {
	if len(points) == 0 {
		return nil
	}

	out := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		out[i] = out[i-1] + DistanceKm(points[i-1], points[i])
	}
	return out
}
