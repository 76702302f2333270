// Package events fetches day listings from the upstream GraphQL API and
// decodes them into typed records.
package events

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Record is one listed event. Optional upstream fields are nil when absent.
type Record struct {
	Title      string
	Date       civil.Date
	StartTime  *civil.Time
	EndTime    *civil.Time
	Venue      *string
	DetailPath string
}

// HasTimes reports whether both start and end are known.
func (r Record) HasTimes() bool {
	return r.StartTime != nil && r.EndTime != nil
}

// VenueName returns the venue or "" when unknown.
func (r Record) VenueName() string {
	if r.Venue == nil {
		return ""
	}
	return strings.TrimSpace(*r.Venue)
}

// Window returns the UTC day bounds used to query listings for day, with
// millisecond precision.
func Window(day civil.Date) (start, end string) {
	d := day.String()
	return d + "T00:00:00.000Z", d + "T23:59:59.999Z"
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"15:04:05",
	"15:04",
}

func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseClock(raw *string) *civil.Time {
	if raw == nil {
		return nil
	}
	t, ok := parseTimestamp(*raw)
	if !ok {
		return nil
	}
	ct := civil.TimeOf(t)
	ct.Nanosecond = 0
	return &ct
}

func parseDay(raw *string) civil.Date {
	if raw == nil {
		return civil.Date{}
	}
	if len(*raw) >= 10 {
		if d, err := civil.ParseDate((*raw)[:10]); err == nil {
			return d
		}
	}
	return civil.Date{}
}
