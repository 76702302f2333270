package dialog

import (
	"context"
	"log/slog"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/m3rciful/eventbot/core/logger"
	"github.com/m3rciful/eventbot/core/telegram/keyboard"
	"github.com/m3rciful/eventbot/internal/events"
	"github.com/m3rciful/eventbot/internal/listing"
)

// Source yields the listings of one local day. Implementations fail soft and
// return an empty slice when the listings cannot be obtained.
type Source interface {
	EventsForDate(ctx context.Context, day civil.Date) []events.Record
}

// Step moves day by offset days.
func Step(day civil.Date, offset int) civil.Date {
	return day.AddDays(offset)
}

// Page is one rendered day view.
type Page struct {
	Date     civil.Date
	Header   string
	Blocks   []string
	Empty    bool
	Controls keyboard.Rows
}

// Text renders the page as a single Markdown message.
func (p Page) Text() string {
	if p.Empty {
		return p.Header + "\n\n" + TextNoEvents
	}
	return p.Header + "\n\n" + strings.Join(p.Blocks, "\n\n")
}

// Navigator renders day views with paging controls.
type Navigator struct {
	source    Source
	formatter listing.Formatter
	limit     int
	area      string
	today     func() civil.Date
}

// NewNavigator builds a Navigator. today is evaluated when controls are
// rendered so the Today button always points at the current date.
func NewNavigator(source Source, formatter listing.Formatter, limit int, area string, today func() civil.Date) *Navigator {
	return &Navigator{source: source, formatter: formatter, limit: limit, area: area, today: today}
}

// View fetches and renders day.
func (n *Navigator) View(ctx context.Context, day civil.Date) Page {
	recs := n.source.EventsForDate(ctx, day)
	blocks := n.formatter.FormatMany(recs, n.limit)
	logger.LogEvent(ctx, logger.Dialog, slog.LevelDebug, "dialog.view",
		slog.String("date", day.String()),
		slog.Int("events", len(recs)),
		slog.Int("shown", len(blocks)),
	)
	return Page{
		Date:     day,
		Header:   headerText(day.String(), n.area),
		Blocks:   blocks,
		Empty:    len(blocks) == 0,
		Controls: n.Controls(day),
	}
}

// Controls returns the paging keyboard for day.
func (n *Navigator) Controls(day civil.Date) keyboard.Rows {
	return keyboard.Rows{
		{
			{Text: btnPrev, Unique: CallbackPage, Data: PagePayload(day, -1)},
			{Text: btnToday, Unique: CallbackPage, Data: PagePayload(n.today(), 0)},
			{Text: btnNext, Unique: CallbackPage, Data: PagePayload(day, 1)},
		},
		{
			{Text: btnSearch, Unique: CallbackSearch, Data: day.String()},
		},
	}
}
