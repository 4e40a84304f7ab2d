package ors

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"route-weather-service/internal/domain"
	"route-weather-service/internal/platform/obs"
	"route-weather-service/internal/ports"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Label         string `json:"label"`
			Name          string `json:"name"`
			Locality      string `json:"locality"`
			Neighbourhood string `json:"neighbourhood"`
			Borough       string `json:"borough"`
		} `json:"properties"`
	} `json:"features"`
}

// geocode resolves a free-text address to its best match using /geocode/search.
// "lat,lon" input is returned as is.
func (o *Client) geocode(ctx context.Context, address string) (_ domain.Coordinate, err error) {
	defer obs.Time(ctx, "ors.geocode")(&err)

	const op = "geocode"
	defer func() { record(op, err) }()

	norm := normalize(address)
	if c, ok := parseLatLon(norm); ok {
		return c, nil
	}

	req, err := o.newRequest(ctx, http.MethodGet, o.baseURL+"/geocode/search", nil)
	if err != nil {
		return domain.Coordinate{}, err
	}
	q := req.URL.Query()
	q.Set("text", norm)
	q.Set("size", "1")
	if o.country != "" {
		q.Set("boundary.country", o.country)
	}
	req.URL.RawQuery = q.Encode()

	var decoded geocodeResponse
	if err := o.doJSON(req, op, &decoded); err != nil {
		return domain.Coordinate{}, err
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinate{}, &ports.ProviderError{
			Provider: providerName, Op: op, Kind: ports.KindNoData,
			Err: fmt.Errorf("no geocode results for %q", norm),
		}
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinate{}, &ports.ProviderError{
			Provider: providerName, Op: op, Kind: ports.KindMalformed,
			Err: fmt.Errorf("invalid coordinate format for %q", norm),
		}
	}

	return domain.Coordinate{Lon: coords[0], Lat: coords[1]}, nil
}

// ReverseGeocode implements ports.ReverseGeocoder via /geocode/reverse.
// Pelias properties are mapped onto Google-style typed components so the
// place selection rule applies unchanged.
func (o *Client) ReverseGeocode(ctx context.Context, c domain.Coordinate) (_ []ports.GeocodeResult, err error) {
	defer obs.Time(ctx, "ors.ReverseGeocode")(&err)

	const op = "reverse_geocode"
	defer func() { record(op, err) }()

	if err := o.ready(op); err != nil {
		return nil, err
	}

	req, err := o.newRequest(ctx, http.MethodGet, o.baseURL+"/geocode/reverse", nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("point.lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	q.Set("point.lon", strconv.FormatFloat(c.Lon, 'f', -1, 64))
	q.Set("size", "1")
	req.URL.RawQuery = q.Encode()

	var decoded geocodeResponse
	if err := o.doJSON(req, op, &decoded); err != nil {
		return nil, err
	}

	out := make([]ports.GeocodeResult, 0, len(decoded.Features))
	for _, f := range decoded.Features {
		p := f.Properties
		var comps []ports.AddressComponent
		if p.Locality != "" {
			comps = append(comps, ports.AddressComponent{LongName: p.Locality, Types: []string{"locality", "political"}})
		}
		if p.Neighbourhood != "" {
			comps = append(comps, ports.AddressComponent{LongName: p.Neighbourhood, Types: []string{"sublocality_level_1", "sublocality"}})
		} else if p.Borough != "" {
			comps = append(comps, ports.AddressComponent{LongName: p.Borough, Types: []string{"sublocality_level_1", "sublocality"}})
		}

		label := p.Label
		if label == "" {
			label = p.Name
		}
		out = append(out, ports.GeocodeResult{FormattedAddress: label, Components: comps})
	}

	return out, nil
}
