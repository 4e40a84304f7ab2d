package domain

import "errors"

var (
	// The directions provider answered but could not produce a route.
	ErrRouteNotFound = errors.New("route not found")
	// The directions provider could not be reached after all retries.
	ErrRouteUnavailable = errors.New("route unavailable")

	ErrInvalidRequest   = errors.New("invalid forecast request")
	ErrInvalidStartTime = errors.New("invalid start time, want HH:MM")
)
