package dialog

import (
	"context"
	"log/slog"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/m3rciful/eventbot/core/logger"
	"github.com/m3rciful/eventbot/core/metrics"
	"github.com/m3rciful/eventbot/core/telegram/format"
	"github.com/m3rciful/eventbot/core/telegram/keyboard"
	"github.com/m3rciful/eventbot/core/telegram/state"
	"github.com/m3rciful/eventbot/internal/events"
	"github.com/m3rciful/eventbot/internal/listing"
)

// StateAwaitingSearch marks a user whose next text message is a search term.
// The session payload holds the day being searched.
const StateAwaitingSearch state.State = "awaiting_search"

// Results is a rendered search outcome.
type Results struct {
	Query  string
	Date   civil.Date
	Blocks []string
}

// Empty reports whether nothing matched.
func (r Results) Empty() bool { return len(r.Blocks) == 0 }

// Text renders the results as a single Markdown message.
func (r Results) Text() string {
	if r.Empty() {
		return TextNoMatches
	}
	header := resultsHeader(format.EscapeV1(r.Query), r.Date.String())
	return header + "\n\n" + strings.Join(r.Blocks, "\n\n")
}

// Searcher runs the two-step search dialog. Callers hold the user's store
// lock around Begin, Pending, Cancel and Consume.
type Searcher struct {
	store     state.Store
	source    Source
	formatter listing.Formatter
	limit     int
}

// NewSearcher builds a Searcher over store and source.
func NewSearcher(store state.Store, source Source, formatter listing.Formatter, limit int) *Searcher {
	return &Searcher{store: store, source: source, formatter: formatter, limit: limit}
}

// Begin puts the user into search mode anchored to day and returns the prompt.
func (s *Searcher) Begin(ctx context.Context, userID int64, day civil.Date) Reply {
	s.store.Set(userID, state.Session{State: StateAwaitingSearch, Payload: day.String()})
	s.track()
	logger.LogEvent(ctx, logger.Dialog, slog.LevelInfo, "dialog.search.begin",
		slog.String("date", day.String()),
	)
	return Reply{
		Text: TextSearchPrompt,
		Keyboard: keyboard.Rows{
			{{Text: btnCancel, Unique: CallbackCancel}},
		},
	}
}

// Pending returns the anchor day when the user is awaiting a search term.
func (s *Searcher) Pending(userID int64) (civil.Date, bool) {
	sess := s.store.Get(userID)
	if sess.State != StateAwaitingSearch {
		return civil.Date{}, false
	}
	day, err := civil.ParseDate(sess.Payload)
	if err != nil {
		return civil.Date{}, true
	}
	return day, true
}

// Cancel leaves search mode and reports whether it was active.
func (s *Searcher) Cancel(ctx context.Context, userID int64) bool {
	if _, ok := s.Pending(userID); !ok {
		return false
	}
	s.store.Clear(userID)
	s.track()
	logger.LogEvent(ctx, logger.Dialog, slog.LevelInfo, "dialog.search.cancel")
	return true
}

// Consume leaves search mode before fetching, so a failed fetch never
// leaves the user stuck, then filters day's listings by query.
func (s *Searcher) Consume(ctx context.Context, userID int64, query string, day civil.Date) Results {
	s.store.Clear(userID)
	s.track()

	res := Results{Query: query, Date: day}
	recs := s.source.EventsForDate(ctx, day)
	matched := Match(recs, query)
	res.Blocks = s.formatter.FormatMany(matched, s.limit)

	outcome := "ok"
	if res.Empty() {
		outcome = "empty"
	}
	logger.LogEvent(ctx, logger.Dialog, slog.LevelInfo, "dialog.search",
		slog.String("outcome", outcome),
		slog.String("date", day.String()),
		slog.String("query", logger.SanitizeLimit(query, 64)),
		slog.Int("events", len(recs)),
		slog.Int("matched", len(matched)),
	)
	return res
}

func (s *Searcher) track() {
	metrics.PendingSearches.Set(float64(s.store.Len()))
}

// Match keeps records whose title or venue contains query, ignoring case.
// Order is preserved.
func Match(recs []events.Record, query string) []events.Record {
	needle := strings.ToLower(query)
	var out []events.Record
	for _, r := range recs {
		if strings.Contains(strings.ToLower(r.Title), needle) ||
			strings.Contains(strings.ToLower(r.VenueName()), needle) {
			out = append(out, r)
		}
	}
	return out
}
