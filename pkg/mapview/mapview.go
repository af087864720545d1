package mapview

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io"

	"github.com/tkrajina/gpxgo/gpx"
)

// ErrEmptyTrack is returned when a track has no points to center a map on.
var ErrEmptyTrack = errors.New("track has no points")

//go:embed templates/map.html
var content embed.FS

var mapTemplate = template.Must(template.New("map.html").ParseFS(content, "templates/map.html"))

// LatLng is a [latitude, longitude] pair as Leaflet expects it.
type LatLng [2]float64

// Map is a Leaflet map showing one track as a polyline.
type Map struct {
	Title   string
	Center  LatLng
	Zoom    int
	Path    []LatLng
	Color   string
	Weight  float64
	Opacity float64
}

// NewMap centers a map on the mean latitude and longitude of every point in g
// and draws the points in track, segment, point order.
func NewMap(g *gpx.GPX, zoom int) (*Map, error) {
	var (
		path   []LatLng
		sumLat float64
		sumLng float64
	)
	for _, trk := range g.Tracks {
		for _, seg := range trk.Segments {
			for _, p := range seg.Points {
				path = append(path, LatLng{p.Latitude, p.Longitude})
				sumLat += p.Latitude
				sumLng += p.Longitude
			}
		}
	}
	if len(path) == 0 {
		return nil, ErrEmptyTrack
	}

	n := float64(len(path))
	return &Map{
		Center:  LatLng{sumLat / n, sumLng / n},
		Zoom:    zoom,
		Path:    path,
		Color:   "red",
		Weight:  2.5,
		Opacity: 1,
	}, nil
}

// Render writes the map as a standalone HTML document.
func (m *Map) Render(w io.Writer) error {
	return mapTemplate.Execute(w, m)
}

// HTML renders the map into a byte slice.
func (m *Map) HTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
