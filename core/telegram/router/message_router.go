package router

import (
	"strings"
	"time"

	tg "github.com/m3rciful/eventbot/core/telegram"
	"github.com/m3rciful/eventbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// FSM reports whether a user is in the middle of a multi-step dialog.
type FSM interface {
	InProgress(userID int64) bool
}

// TextRoutes builds the handler for plain text. Users inside a dialog step
// always reach the text fallback; otherwise the first word is tried as a
// command (with or without slash) before falling back.
//
// The dialog check runs before the handler takes the user's lock, so a
// message racing a button press can still resolve as a command. Command
// handlers must re-check the dialog state under their lock.
func TextRoutes(fsm FSM, reg *tg.Registry) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := strings.TrimSpace(c.Text())

		inDialog := fsm != nil && c.Sender() != nil && fsm.InProgress(c.Sender().ID)
		if !inDialog && reg != nil {
			word, rest, _ := strings.Cut(text, " ")
			if key, cmd, ok := reg.LookupCommand(word); ok && cmd.Handler != nil {
				c.Message().Payload = strings.TrimSpace(rest)
				return handleWithSummary(c, "command."+normalizeHandlerName(key), start, func() error {
					return cmd.Handler(c)
				})
			}
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				name := "text"
				if inDialog {
					name = "fsm"
				}
				return handleWithSummary(c, name, start, func() error {
					return fb(c)
				})
			}
		}

		logHandlerSummary(c, "unknown_text", start, "ignored", nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.LoggerMiddleware(middleware.RecoverMiddleware(handler)),
		},
	}
}
