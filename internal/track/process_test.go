package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmoothHorizontal_KeepsElevation(t *testing.T) {
	g := trackOf(segmentOf(at(0), at(1), at(2), at(3), at(4)))
	for i := range g.Tracks[0].Segments[0].Points {
		g.Tracks[0].Segments[0].Points[i].Elevation.SetValue(float64(100 + i*10))
	}

	SmoothHorizontal(g)

	for i, p := range g.Tracks[0].Segments[0].Points {
		assert.InDelta(t, float64(100+i*10), p.Elevation.Value(), 1e-9)
	}
}

func TestSmoothVertical_KeepsPosition(t *testing.T) {
	g := trackOf(segmentOf(at(0), at(1), at(2), at(3), at(4)))
	pts := g.Tracks[0].Segments[0].Points
	for i := range pts {
		pts[i].Elevation.SetValue(float64(100 + (i%2)*50))
	}
	before := make([][2]float64, len(pts))
	for i, p := range pts {
		before[i] = [2]float64{p.Latitude, p.Longitude}
	}

	SmoothVertical(g)

	for i, p := range g.Tracks[0].Segments[0].Points {
		assert.Equal(t, before[i], [2]float64{p.Latitude, p.Longitude})
	}
}

func TestSummarize(t *testing.T) {
	g := trackOf(segmentOf(at(0), at(10), at(20)))
	pts := g.Tracks[0].Segments[0].Points
	pts[0].Elevation.SetValue(100)
	pts[1].Elevation.SetValue(150)
	pts[2].Elevation.SetValue(120)

	s := Summarize(g)

	assert.Equal(t, 3, s.Points)
	assert.Greater(t, s.Uphill, 0.0)
	assert.Greater(t, s.Downhill, 0.0)
	assert.GreaterOrEqual(t, s.MovingDistance+s.StoppedDistance, 0.0)
}

func TestCountPoints(t *testing.T) {
	g := trackOf(segmentOf(at(0), at(1)), segmentOf(at(2)))
	assert.Equal(t, 3, CountPoints(g))
}
