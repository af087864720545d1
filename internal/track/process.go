package track

import (
	"time"

	"github.com/tkrajina/gpxgo/gpx"
)

// SmoothHorizontal averages latitude and longitude with neighbouring points.
// Elevations are left untouched.
func SmoothHorizontal(g *gpx.GPX) {
	g.SmoothHorizontal()
}

// SmoothVertical averages elevations with neighbouring points. Latitude and
// longitude are left untouched.
func SmoothVertical(g *gpx.GPX) {
	g.SmoothVertical()
}

// Summary holds the statistics reported for a processed track.
type Summary struct {
	Points          int
	Uphill          float64 // metres
	Downhill        float64 // metres
	MovingTime      time.Duration
	StoppedTime     time.Duration
	MovingDistance  float64 // metres
	StoppedDistance float64 // metres
	MaxSpeed        float64 // m/s
}

// Summarize computes cumulative ascent/descent and moving data for g.
func Summarize(g *gpx.GPX) Summary {
	ud := g.UphillDownhill()
	md := g.MovingData()

	return Summary{
		Points:          CountPoints(g),
		Uphill:          ud.Uphill,
		Downhill:        ud.Downhill,
		MovingTime:      seconds(md.MovingTime),
		StoppedTime:     seconds(md.StoppedTime),
		MovingDistance:  md.MovingDistance,
		StoppedDistance: md.StoppedDistance,
		MaxSpeed:        md.MaxSpeed,
	}
}

// CountPoints returns the number of points across all tracks and segments.
func CountPoints(g *gpx.GPX) int {
	n := 0
	for _, trk := range g.Tracks {
		for _, seg := range trk.Segments {
			n += len(seg.Points)
		}
	}
	return n
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
