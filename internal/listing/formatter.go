// Package listing renders event records as Telegram Markdown text.
package listing

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/m3rciful/eventbot/core/telegram/format"
	"github.com/m3rciful/eventbot/internal/events"
)

// DefaultLimit bounds how many blocks one reply carries.
const DefaultLimit = 10

const (
	timeFallback  = "Time N/A"
	venueFallback = "Venue N/A"
)

// Formatter renders records. The zero value links to no base URL.
type Formatter struct {
	BaseURL string
}

// New returns a Formatter linking details under baseURL.
func New(baseURL string) Formatter {
	return Formatter{BaseURL: strings.TrimRight(baseURL, "/")}
}

// FormatOne renders one record as a four line Markdown block.
func (f Formatter) FormatOne(r events.Record) string {
	var b strings.Builder
	b.WriteString(format.BoldV1(r.Title))
	b.WriteByte('\n')
	fmt.Fprintf(&b, "🕒 %s\n", timeRange(r))
	fmt.Fprintf(&b, "📍 %s\n", venue(r))
	fmt.Fprintf(&b, "🔗 [View Event](%s%s)", f.BaseURL, r.DetailPath)
	return b.String()
}

// FormatMany renders at most limit records in source order. A limit of
// zero or less renders all of them.
func (f Formatter) FormatMany(rs []events.Record, limit int) []string {
	n := len(rs)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]string, 0, n)
	for _, r := range rs[:n] {
		out = append(out, f.FormatOne(r))
	}
	return out
}

func timeRange(r events.Record) string {
	if !r.HasTimes() {
		return timeFallback
	}
	return clock(*r.StartTime) + "–" + clock(*r.EndTime)
}

func clock(t civil.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func venue(r events.Record) string {
	if name := r.VenueName(); name != "" {
		return format.EscapeV1(name)
	}
	return venueFallback
}
