package elevation

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sync"

	"github.com/tkrajina/go-elevations/geoelevations"
)

// SRTMSource answers single-point elevation queries from SRTM tiles.
// *geoelevations.Srtm satisfies it.
type SRTMSource interface {
	GetElevation(client *http.Client, latitude, longitude float64) (float64, error)
}

// SRTMProvider reads elevations from NASA SRTM tiles, downloading and caching
// them on first use. Locations with no tile coverage come back as NaN.
type SRTMProvider struct {
	client   *http.Client
	cacheDir string

	mu     sync.Mutex
	source SRTMSource
}

// NewSRTMProvider creates an SRTMProvider. An empty cacheDir uses the
// library's default cache directory. Nothing is downloaded until the first
// Elevations call.
func NewSRTMProvider(client *http.Client, cacheDir string) *SRTMProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &SRTMProvider{
		client:   client,
		cacheDir: cacheDir,
	}
}

// NewSRTMProviderWithSource creates an SRTMProvider backed by source.
func NewSRTMProviderWithSource(client *http.Client, source SRTMSource) *SRTMProvider {
	p := NewSRTMProvider(client, "")
	p.source = source
	return p
}

func (s *SRTMProvider) init() (SRTMSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source != nil {
		return s.source, nil
	}

	var (
		srtm *geoelevations.Srtm
		err  error
	)
	if s.cacheDir != "" {
		srtm, err = geoelevations.NewSrtmWithCustomCacheDir(s.client, s.cacheDir)
	} else {
		srtm, err = geoelevations.NewSrtm(s.client)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SRTM: %w", err)
	}
	s.source = srtm
	return s.source, nil
}

// Elevations looks up each location in turn.
func (s *SRTMProvider) Elevations(ctx context.Context, locations []Location) ([]float64, error) {
	source, err := s.init()
	if err != nil {
		return nil, err
	}

	out := make([]float64, 0, len(locations))
	for _, loc := range locations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := source.GetElevation(s.client, loc.Lat, loc.Lng)
		if err != nil {
			return nil, fmt.Errorf("SRTM lookup at %f,%f failed: %w", loc.Lat, loc.Lng, err)
		}
		if math.IsInf(v, 0) {
			v = math.NaN()
		}
		out = append(out, v)
	}
	return out, nil
}
