package track

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/tkrajina/gpxgo/gpx"
)

// TimeError identifies a point whose timestamp repeats the one right before it.
type TimeError struct {
	Track   int
	Segment int
	Index   int
	Time    time.Time
}

// FindTimeErrors walks every segment of g and reports each point whose
// timestamp is identical to the preceding point's. Only adjacent points are
// compared, so in a run of equal timestamps every point after the first is
// reported. When remove is true the reported points are deleted from their
// segments.
func FindTimeErrors(g *gpx.GPX, remove bool, logger zerolog.Logger) []TimeError {
	var found []TimeError

	for ti := range g.Tracks {
		for si := range g.Tracks[ti].Segments {
			seg := &g.Tracks[ti].Segments[si]
			errs := scanSegment(seg.Points)

			for _, i := range errs {
				ts := seg.Points[i].Timestamp
				logger.Warn().
					Time("time", ts).
					Int("track", ti).
					Int("segment", si).
					Int("point", i).
					Msg("Time error")
				found = append(found, TimeError{Track: ti, Segment: si, Index: i, Time: ts})
			}

			if len(errs) > 0 && remove {
				logger.Info().
					Ints("points", errs).
					Int("track", ti).
					Int("segment", si).
					Msg("Removing time errors")
				seg.Points = removeIndices(seg.Points, errs)
			}
		}
	}

	return found
}

// scanSegment returns the ascending indices of points sharing their
// predecessor's timestamp.
func scanSegment(points []gpx.GPXPoint) []int {
	var (
		errs    []int
		last    time.Time
		hasLast bool
	)
	for i := range points {
		ts := points[i].Timestamp
		if hasLast && ts.Equal(last) {
			errs = append(errs, i)
		}
		last = ts
		hasLast = true
	}
	return errs
}

// removeIndices deletes the points at the given ascending indices. Deletion
// runs from the highest index down so pending indices keep their positions.
func removeIndices(points []gpx.GPXPoint, indices []int) []gpx.GPXPoint {
	for k := len(indices) - 1; k >= 0; k-- {
		i := indices[k]
		points = append(points[:i], points[i+1:]...)
	}
	return points
}
