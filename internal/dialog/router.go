// Package dialog holds the conversation logic: date parsing, day navigation,
// the two-step search and the router that ties them to user actions. It
// knows nothing about Telegram beyond keyboard layouts.
package dialog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/m3rciful/eventbot/core/logger"
	"github.com/m3rciful/eventbot/core/telegram/keyboard"
	"github.com/m3rciful/eventbot/core/telegram/state"
	"github.com/m3rciful/eventbot/internal/listing"
)

// Reply is one outbound message.
type Reply struct {
	Text     string
	Markdown bool
	Keyboard keyboard.Rows
	// Edit replaces the message that carried the pressed button when there
	// is one.
	Edit bool
}

// Responder delivers replies to the user an action came from, in order.
type Responder interface {
	Reply(ctx context.Context, r Reply) error
}

// Options configure a Router.
type Options struct {
	Store     state.Store
	Source    Source
	Formatter listing.Formatter
	Limit     int
	AreaName  string
	Location  *time.Location
	Now       func() time.Time
}

// Router applies actions to a user's conversation state and emits replies.
type Router struct {
	store    state.Store
	area     string
	limit    int
	today    func() civil.Date
	source   Source
	format   listing.Formatter
	navigate *Navigator
	search   *Searcher
}

// NewRouter builds a Router. A nil Store gets an in-memory one.
func NewRouter(opts Options) *Router {
	if opts.Store == nil {
		opts.Store = state.NewMemoryStore()
	}
	if opts.Limit <= 0 {
		opts.Limit = listing.DefaultLimit
	}
	if opts.AreaName == "" {
		opts.AreaName = "Berlin"
	}
	today := TodayIn(opts.Location, opts.Now)
	return &Router{
		store:    opts.Store,
		area:     opts.AreaName,
		limit:    opts.Limit,
		today:    today,
		source:   opts.Source,
		format:   opts.Formatter,
		navigate: NewNavigator(opts.Source, opts.Formatter, opts.Limit, opts.AreaName, today),
		search:   NewSearcher(opts.Store, opts.Source, opts.Formatter, opts.Limit),
	}
}

// InProgress reports whether the user is in the middle of a dialog, so that
// their next text message belongs to it.
func (r *Router) InProgress(userID int64) bool {
	_, ok := r.search.Pending(userID)
	return ok
}

// Today returns the current local date.
func (r *Router) Today() civil.Date {
	return r.today()
}

// Handle applies a to the user's state and sends the resulting replies.
// Actions of one user are serialised; the first delivery error stops the
// remaining output.
func (r *Router) Handle(ctx context.Context, a Action, out Responder) error {
	unlock := r.store.Lock(a.UserID)
	defer unlock()

	if a.Typed != "" && a.Kind != KindText {
		if _, ok := r.search.Pending(a.UserID); ok {
			a = Action{Kind: KindText, UserID: a.UserID, Text: a.Typed}
		}
	}

	switch a.Kind {
	case KindStart, KindHelp:
		return out.Reply(ctx, Reply{Text: welcomeText(r.area)})
	case KindEvents:
		return r.events(ctx, a, out)
	case KindBrowse:
		day, err := ParseDate(a.Text, r.today())
		if err != nil {
			return r.usage(ctx, err, out)
		}
		return r.view(ctx, day, false, out)
	case KindPage:
		return r.view(ctx, Step(a.Date, a.Offset), true, out)
	case KindSearch:
		day := a.Date
		if day.IsZero() {
			day = r.today()
		}
		return out.Reply(ctx, r.search.Begin(ctx, a.UserID, day))
	case KindCancel:
		if !r.search.Cancel(ctx, a.UserID) {
			return nil
		}
		return out.Reply(ctx, Reply{Text: TextSearchCancel})
	case KindText:
		return r.text(ctx, a, out)
	default:
		logger.LogEvent(ctx, logger.Dialog, slog.LevelDebug, "dialog.ignored",
			slog.String("outcome", "ignored"),
			slog.String("action", a.Kind.String()),
		)
		return nil
	}
}

func (r *Router) events(ctx context.Context, a Action, out Responder) error {
	day, err := ParseDate(a.Text, r.today())
	if err != nil {
		return r.usage(ctx, err, out)
	}
	if err := out.Reply(ctx, Reply{Text: ackText(day.String(), r.area), Markdown: true}); err != nil {
		return err
	}
	blocks := r.format.FormatMany(r.source.EventsForDate(ctx, day), r.limit)
	if len(blocks) == 0 {
		return out.Reply(ctx, Reply{Text: TextNoEvents})
	}
	for _, b := range blocks {
		if err := out.Reply(ctx, Reply{Text: b, Markdown: true}); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) text(ctx context.Context, a Action, out Responder) error {
	if day, ok := r.search.Pending(a.UserID); ok {
		if day.IsZero() {
			day = r.today()
		}
		res := r.search.Consume(ctx, a.UserID, a.Text, day)
		reply := Reply{Text: res.Text(), Markdown: !res.Empty()}
		reply.Keyboard = keyboard.Rows{
			{{Text: btnBack, Unique: CallbackPage, Data: PagePayload(day, 0)}},
		}
		return out.Reply(ctx, reply)
	}

	if strings.TrimSpace(a.Text) == "" {
		return nil
	}
	day, err := ParseDate(a.Text, r.today())
	if err != nil {
		logger.LogEvent(ctx, logger.Dialog, slog.LevelDebug, "dialog.text",
			slog.String("outcome", "ignored"),
		)
		return nil
	}
	return r.view(ctx, day, false, out)
}

func (r *Router) view(ctx context.Context, day civil.Date, edit bool, out Responder) error {
	page := r.navigate.View(ctx, day)
	return out.Reply(ctx, Reply{
		Text:     page.Text(),
		Markdown: true,
		Keyboard: page.Controls,
		Edit:     edit,
	})
}

func (r *Router) usage(ctx context.Context, err error, out Responder) error {
	var perr *ParseError
	if errors.As(err, &perr) {
		logger.LogEvent(ctx, logger.Dialog, slog.LevelDebug, "dialog.parse_date",
			slog.String("outcome", "fail"),
			slog.String("payload", logger.SanitizeLimit(perr.Input, 32)),
		)
	}
	return out.Reply(ctx, Reply{Text: TextUsage})
}
