package track

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adrianmo/go-nmea"
	"github.com/tkrajina/gpxgo/gpx"
)

var (
	// ErrEmptyInput is returned when the extractor produced no text at all.
	ErrEmptyInput = errors.New("empty telemetry input")
	// ErrNoFix is returned when NMEA input contains no valid RMC fix.
	ErrNoFix = errors.New("no valid GPS fix found")
)

// Parse turns extracted telemetry text into a track. GPX is the normal
// format; text whose first non-blank character is '$' is read as NMEA 0183.
func Parse(text []byte) (*gpx.GPX, error) {
	trimmed := bytes.TrimSpace(text)
	if len(trimmed) == 0 {
		return nil, ErrEmptyInput
	}

	if trimmed[0] == '$' {
		return ParseNMEA(trimmed)
	}

	g, err := gpx.ParseBytes(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPX: %w", err)
	}
	if err := restoreTimestamps(g, trimmed); err != nil {
		return nil, fmt.Errorf("failed to parse GPX: %w", err)
	}
	return g, nil
}

// ParseNMEA builds a single-segment track from RMC sentences with an active
// fix. GGA sentences sharing an RMC's time of day supply its altitude.
// Sentences that cannot be parsed are skipped.
func ParseNMEA(text []byte) (*gpx.GPX, error) {
	var (
		fixes     []nmea.RMC
		altitudes = make(map[nmea.Time]float64)
		firstErr  error
	)

	scanner := bufio.NewScanner(bytes.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		switch s := sentence.(type) {
		case nmea.RMC:
			if s.Validity == nmea.ValidRMC && s.Time.Valid && s.Date.Valid {
				fixes = append(fixes, s)
			}
		case nmea.GGA:
			if s.Time.Valid {
				altitudes[s.Time] = s.Altitude
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan NMEA input: %w", err)
	}

	if len(fixes) == 0 {
		if firstErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoFix, firstErr)
		}
		return nil, ErrNoFix
	}

	seg := gpx.GPXTrackSegment{Points: make([]gpx.GPXPoint, 0, len(fixes))}
	for _, fix := range fixes {
		p := gpx.GPXPoint{
			Point: gpx.Point{
				Latitude:  fix.Latitude,
				Longitude: fix.Longitude,
			},
			Timestamp: fixTime(fix.Date, fix.Time),
		}
		if alt, ok := altitudes[fix.Time]; ok {
			p.Elevation.SetValue(alt)
		}
		seg.Points = append(seg.Points, p)
	}

	return &gpx.GPX{
		Version: "1.1",
		Creator: "goprotrack",
		Tracks:  []gpx.GPXTrack{{Segments: []gpx.GPXTrackSegment{seg}}},
	}, nil
}

// fixTime combines an NMEA date (two-digit year) and time of day into UTC.
func fixTime(d nmea.Date, t nmea.Time) time.Time {
	year := 1900 + d.YY
	if d.YY < 80 {
		year = 2000 + d.YY
	}
	return time.Date(year, time.Month(d.MM), d.DD,
		t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond), time.UTC)
}
