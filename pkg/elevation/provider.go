package elevation

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by providers that cannot serve elevations.
var ErrUnavailable = errors.New("elevation data unavailable")

// Location is a WGS84 coordinate to look up.
type Location struct {
	Lat float64
	Lng float64
}

// Provider looks up terrain elevations in metres. The result has one value
// per requested location, in request order.
type Provider interface {
	Elevations(ctx context.Context, locations []Location) ([]float64, error)
}

// NopProvider is used when no elevation source is configured.
type NopProvider struct{}

// Elevations always reports ErrUnavailable.
func (NopProvider) Elevations(context.Context, []Location) ([]float64, error) {
	return nil, ErrUnavailable
}
