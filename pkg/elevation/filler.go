package elevation

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/tkrajina/gpxgo/gpx"
)

// DefaultSmoothWindow is the moving-average width used when none is set.
const DefaultSmoothWindow = 3

// Filler writes provider elevations onto track points.
type Filler struct {
	provider    Provider
	onlyMissing bool
	smooth      bool
	window      int
	logger      zerolog.Logger
}

// NewFiller creates a Filler. When onlyMissing is set, points that already
// carry an elevation are not looked up. When smooth is set, looked-up values
// are averaged over window neighbouring points within each segment.
func NewFiller(provider Provider, onlyMissing, smooth bool, window int, logger zerolog.Logger) *Filler {
	if window <= 0 {
		window = DefaultSmoothWindow
	}
	return &Filler{
		provider:    provider,
		onlyMissing: onlyMissing,
		smooth:      smooth,
		window:      window,
		logger:      logger,
	}
}

type pointRef struct {
	track, segment, point int
}

// AddElevations looks up elevations for the points of g in one provider call.
// It returns the number of points updated. A provider reporting
// ErrUnavailable leaves g untouched and is not an error.
func (f *Filler) AddElevations(ctx context.Context, g *gpx.GPX) (int, error) {
	var (
		refs      []pointRef
		locations []Location
	)
	for ti := range g.Tracks {
		for si := range g.Tracks[ti].Segments {
			for pi, p := range g.Tracks[ti].Segments[si].Points {
				if f.onlyMissing && p.Elevation.NotNull() {
					continue
				}
				refs = append(refs, pointRef{ti, si, pi})
				locations = append(locations, Location{Lat: p.Latitude, Lng: p.Longitude})
			}
		}
	}
	if len(locations) == 0 {
		return 0, nil
	}

	values, err := f.provider.Elevations(ctx, locations)
	if errors.Is(err, ErrUnavailable) {
		f.logger.Warn().Int("points", len(locations)).Msg("No elevation source configured, keeping recorded elevations")
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(values) != len(locations) {
		return 0, fmt.Errorf("elevation provider returned %d values for %d points", len(values), len(locations))
	}

	if f.smooth {
		values = f.smoothBySegment(refs, values)
	}

	updated := 0
	for i, ref := range refs {
		// NaN means the source has no data for this location.
		if math.IsNaN(values[i]) {
			continue
		}
		g.Tracks[ref.track].Segments[ref.segment].Points[ref.point].Elevation.SetValue(values[i])
		updated++
	}
	if updated < len(refs) {
		f.logger.Warn().Int("points", len(refs)-updated).Msg("No elevation data for some points")
	}

	f.logger.Debug().Int("points", updated).Bool("smoothed", f.smooth).Msg("Elevations added")
	return updated, nil
}

// smoothBySegment applies a centred moving average to each run of values
// belonging to the same segment.
func (f *Filler) smoothBySegment(refs []pointRef, values []float64) []float64 {
	out := make([]float64, len(values))
	start := 0
	for i := 1; i <= len(refs); i++ {
		if i == len(refs) || refs[i].track != refs[start].track || refs[i].segment != refs[start].segment {
			copy(out[start:i], MovingAverage(values[start:i], f.window))
			start = i
		}
	}
	return out
}

// MovingAverage returns the centred moving average of values. The window is
// truncated at both ends, so the output has the same length as the input.
// NaN values are left out of the average and stay NaN in the output.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	half := window / 2
	for i := range values {
		if math.IsNaN(values[i]) {
			out[i] = values[i]
			continue
		}
		lo := max(0, i-half)
		hi := min(len(values), i+half+1)
		sum, n := 0.0, 0
		for _, v := range values[lo:hi] {
			if math.IsNaN(v) {
				continue
			}
			sum += v
			n++
		}
		out[i] = sum / float64(n)
	}
	return out
}
