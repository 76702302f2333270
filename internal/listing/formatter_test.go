package listing

import (
	"fmt"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/eventbot/internal/events"
)

func strptr(s string) *string { return &s }

func TestFormatOneFullRecord(t *testing.T) {
	f := New("https://ra.co/")
	got := f.FormatOne(events.Record{
		Title:      "Klubnacht",
		StartTime:  &civil.Time{Hour: 23, Minute: 59},
		EndTime:    &civil.Time{Hour: 9},
		Venue:      strptr("Berghain"),
		DetailPath: "/events/2100001",
	})
	assert.Equal(t, "*Klubnacht*\n🕒 23:59–09:00\n📍 Berghain\n🔗 [View Event](https://ra.co/events/2100001)", got)
}

func TestFormatOneFallbacks(t *testing.T) {
	f := New("https://ra.co")

	got := f.FormatOne(events.Record{Title: "Open Air", DetailPath: "/events/1"})
	assert.Contains(t, got, "🕒 Time N/A\n")
	assert.Contains(t, got, "📍 Venue N/A\n")

	onlyStart := f.FormatOne(events.Record{Title: "x", StartTime: &civil.Time{Hour: 22}, Venue: strptr("  ")})
	assert.Contains(t, onlyStart, "Time N/A")
	assert.Contains(t, onlyStart, "Venue N/A")
}

func TestFormatOneEscapesMarkdown(t *testing.T) {
	got := New("https://ra.co").FormatOne(events.Record{Title: "dark_room *live*", Venue: strptr("[://about blank]")})
	assert.True(t, strings.HasPrefix(got, `*dark*\_*room *\**live*\*`+"\n"))
	assert.Contains(t, got, `📍 \[://about blank]`)
}

func TestFormatOneTitleNeverEscapesInsideBold(t *testing.T) {
	got := New("https://ra.co").FormatOne(events.Record{Title: "Open_Air 2*2", DetailPath: "/events/7"})
	title, _, _ := strings.Cut(got, "\n")
	assert.Equal(t, `*Open*\_*Air 2*\**2*`, title)
}

func TestFormatManyBoundsAndOrder(t *testing.T) {
	f := New("https://ra.co")
	for _, n := range []int{0, 1, 9, 10, 11, 20} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			recs := make([]events.Record, n)
			for i := range recs {
				recs[i] = events.Record{Title: fmt.Sprintf("event-%02d", i)}
			}
			blocks := f.FormatMany(recs, DefaultLimit)
			require.Len(t, blocks, min(n, DefaultLimit))
			for i, b := range blocks {
				assert.True(t, strings.HasPrefix(b, fmt.Sprintf("*event-%02d*", i)))
			}
		})
	}
}

func TestFormatManyWithoutLimit(t *testing.T) {
	recs := make([]events.Record, 15)
	assert.Len(t, New("").FormatMany(recs, 0), 15)
	assert.NotNil(t, New("").FormatMany(nil, 10))
}
