package track

import (
	"fmt"
	"time"
)

// TimeFormatter renders a point timestamp for GPX output.
type TimeFormatter func(t time.Time) string

// FormatTime renders t as 2006-01-02T15:04:05[.000](Z|-0700).
// Milliseconds are written only when the timestamp carries a sub-second part,
// and they are truncated rather than rounded.
func FormatTime(t time.Time) string {
	tz := "Z"
	if _, offset := t.Zone(); offset != 0 {
		tz = t.Format("-0700")
	}

	ms := ""
	if micros := t.Nanosecond() / int(time.Microsecond); micros != 0 {
		ms = fmt.Sprintf(".%03d", micros/1000)
	}

	return t.Format("2006-01-02T15:04:05") + ms + tz
}
