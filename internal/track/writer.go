package track

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/tkrajina/gpxgo/gpx"
)

const gpxNamespace = "http://www.topografix.com/GPX/1/1"

type xmlPoint struct {
	Lat       float64  `xml:"lat,attr"`
	Lon       float64  `xml:"lon,attr"`
	Elevation *float64 `xml:"ele,omitempty"`
	Time      string   `xml:"time,omitempty"`
}

type xmlSegment struct {
	Points []xmlPoint `xml:"trkpt"`
}

type xmlTrack struct {
	Name     string       `xml:"name,omitempty"`
	Segments []xmlSegment `xml:"trkseg"`
}

type xmlGPX struct {
	XMLName xml.Name   `xml:"gpx"`
	Xmlns   string     `xml:"xmlns,attr"`
	Version string     `xml:"version,attr"`
	Creator string     `xml:"creator,attr"`
	Tracks  []xmlTrack `xml:"trk"`
}

// Writer serializes tracks as GPX 1.1 using a caller-supplied time format.
type Writer struct {
	formatTime TimeFormatter
}

// NewWriter returns a Writer using formatter for <time> elements.
// A nil formatter falls back to FormatTime.
func NewWriter(formatter TimeFormatter) *Writer {
	if formatter == nil {
		formatter = FormatTime
	}
	return &Writer{formatTime: formatter}
}

// Write encodes g to w as indented GPX XML.
func (wr *Writer) Write(w io.Writer, g *gpx.GPX) error {
	doc := xmlGPX{
		Xmlns:   gpxNamespace,
		Version: "1.1",
		Creator: "goprotrack",
	}

	for _, trk := range g.Tracks {
		xt := xmlTrack{Name: trk.Name}
		for _, seg := range trk.Segments {
			xs := xmlSegment{Points: make([]xmlPoint, 0, len(seg.Points))}
			for _, p := range seg.Points {
				xp := xmlPoint{Lat: p.Latitude, Lon: p.Longitude}
				if p.Elevation.NotNull() {
					ele := p.Elevation.Value()
					xp.Elevation = &ele
				}
				if !p.Timestamp.IsZero() {
					xp.Time = wr.formatTime(p.Timestamp)
				}
				xs.Points = append(xs.Points, xp)
			}
			xt.Segments = append(xt.Segments, xs)
		}
		doc.Tracks = append(doc.Tracks, xt)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode GPX: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	return nil
}
