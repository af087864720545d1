package elevation

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

// MaxLocationsPerRequest bounds a single Elevation API request.
const MaxLocationsPerRequest = 256

// GoogleProvider uses the Google Maps Elevation API.
type GoogleProvider struct {
	client *maps.Client // Maps API client for making elevation requests
}

// NewGoogleProvider creates a GoogleProvider. Extra client options (for
// example maps.WithBaseURL) are appended after the API key.
func NewGoogleProvider(apiKey string, opts ...maps.ClientOption) (*GoogleProvider, error) {
	c, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, err
	}

	return &GoogleProvider{
		client: c,
	}, nil
}

// Elevations queries the API in batches of MaxLocationsPerRequest.
func (g *GoogleProvider) Elevations(ctx context.Context, locations []Location) ([]float64, error) {
	out := make([]float64, 0, len(locations))

	for start := 0; start < len(locations); start += MaxLocationsPerRequest {
		end := min(start+MaxLocationsPerRequest, len(locations))

		req := &maps.ElevationRequest{
			Locations: make([]maps.LatLng, 0, end-start),
		}
		for _, loc := range locations[start:end] {
			req.Locations = append(req.Locations, maps.LatLng{Lat: loc.Lat, Lng: loc.Lng})
		}

		results, err := g.client.Elevation(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("elevation request failed: %w", err)
		}
		if len(results) != end-start {
			return nil, fmt.Errorf("elevation request returned %d results for %d locations", len(results), end-start)
		}

		for _, r := range results {
			out = append(out, r.Elevation)
		}
	}

	return out, nil
}
