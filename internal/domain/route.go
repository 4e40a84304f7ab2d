package domain

// Route geometry and totals as returned by a directions provider.
// Path is the dense polyline in travel order.
// It is immutable data and contains no side effects.
type RouteResult struct {
	TotalDistanceKm  float64
	TotalDurationMin float64
	Path             []Coordinate
}
