package track

import (
	"bytes"
	"encoding/xml"
	"strings"
	"time"

	"github.com/tkrajina/gpxgo/gpx"
	"golang.org/x/net/html/charset"
)

// gpxgo truncates <time> values to whole seconds, which would make distinct
// sub-second fixes look like duplicates. The raw strings are decoded again
// here and put back at full precision.

type rawPoint struct {
	Time string `xml:"time"`
}

type rawSegment struct {
	Points []rawPoint `xml:"trkpt"`
}

type rawTrack struct {
	Segments []rawSegment `xml:"trkseg"`
}

type rawGPX struct {
	Tracks []rawTrack `xml:"trk"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999", // no zone, read as UTC
}

// restoreTimestamps overwrites each point's timestamp with the precisely
// parsed <time> text. Points whose text does not parse keep gpxgo's value.
// Structures that do not line up with g are left untouched.
func restoreTimestamps(g *gpx.GPX, text []byte) error {
	var raw rawGPX
	decoder := xml.NewDecoder(bytes.NewReader(text))
	decoder.CharsetReader = charset.NewReaderLabel
	if err := decoder.Decode(&raw); err != nil {
		return err
	}
	if len(raw.Tracks) != len(g.Tracks) {
		return nil
	}

	for ti := range g.Tracks {
		if len(raw.Tracks[ti].Segments) != len(g.Tracks[ti].Segments) {
			continue
		}
		for si := range g.Tracks[ti].Segments {
			points := g.Tracks[ti].Segments[si].Points
			rawPoints := raw.Tracks[ti].Segments[si].Points
			if len(rawPoints) != len(points) {
				continue
			}
			for pi := range points {
				if ts, ok := parseTime(rawPoints[pi].Time); ok {
					points[pi].Timestamp = ts
				}
			}
		}
	}
	return nil
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
