package services

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"route-weather-service/internal/adapters/cache"
	"route-weather-service/internal/domain"
	"route-weather-service/internal/platform/retry"
	"route-weather-service/internal/ports"
)

// PlaceResolver turns coordinates into short place names. It never fails:
// anything short of a usable answer yields the coordinate string.
type PlaceResolver struct {
	geocoder ports.ReverseGeocoder
	policy   retry.Policy
	memo     *cache.Memo[string]
	logger   *slog.Logger
}

func NewPlaceResolver(geocoder ports.ReverseGeocoder, policy retry.Policy, memo *cache.Memo[string], logger *slog.Logger) *PlaceResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaceResolver{geocoder: geocoder, policy: policy, memo: memo, logger: logger}
}

func (r *PlaceResolver) ResolvePlace(ctx context.Context, c domain.Coordinate) string {
	return r.memo.Get(ctx, c, func(ctx context.Context) (string, bool) {
		var results []ports.GeocodeResult
		_, err := retry.Do(ctx, r.policy, r.logger, ports.IsTransient, func(ctx context.Context) error {
			res, err := r.geocoder.ReverseGeocode(ctx, c)
			if err != nil {
				return err
			}
			results = res
			return nil
		})
		if err != nil {
			r.logger.WarnContext(ctx, "reverse geocoding failed, using coordinates",
				"coordinate", c.String(),
				"kind", ports.KindOf(err).String(),
				"error", err,
			)
			return c.String(), ctx.Err() == nil
		}

		return placeName(results, c), true
	})
}

// placeName prefers a locality (or level-1 sublocality) of the best result,
// then the first segment of its formatted address, then the coordinates.
func placeName(results []ports.GeocodeResult, c domain.Coordinate) string {
	if len(results) == 0 {
		return c.String()
	}

	top := results[0]
	for _, comp := range top.Components {
		if slices.Contains(comp.Types, "locality") || slices.Contains(comp.Types, "sublocality_level_1") {
			return comp.LongName
		}
	}

	if first, _, _ := strings.Cut(top.FormattedAddress, ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}

	return c.String()
}
