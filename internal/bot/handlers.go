package bot

import (
	"strings"

	"github.com/m3rciful/eventbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/eventbot/core/telegram/helpers"
	"github.com/m3rciful/eventbot/internal/dialog"

	tele "gopkg.in/telebot.v4"
)

func (a *App) onCommand(kind dialog.Kind) tele.HandlerFunc {
	return func(c tele.Context) error {
		return a.dispatch(c, commandAction(c, kind))
	}
}

func (a *App) onCallback(c tele.Context) error {
	return a.dispatch(c, callbackAction(c))
}

func (a *App) onText(c tele.Context) error {
	return a.dispatch(c, dialog.Action{
		Kind:   dialog.KindText,
		UserID: tghelpers.UserID(c),
		Text:   c.Text(),
	})
}

func (a *App) dispatch(c tele.Context, act dialog.Action) error {
	if act.UserID == 0 {
		return nil
	}
	return a.router.Handle(tghelpers.BuildContext(c), act, newResponder(c))
}

// commandAction reads the command argument, which telebot leaves in the
// message payload. Commands typed without a slash keep the whole message so
// the dialog can still treat it as a search query.
func commandAction(c tele.Context, kind dialog.Kind) dialog.Action {
	act := dialog.Action{Kind: kind, UserID: tghelpers.UserID(c)}
	if msg := c.Message(); msg != nil {
		act.Text = strings.TrimSpace(msg.Payload)
		if msg.Text != "" && !strings.HasPrefix(msg.Text, "/") {
			act.Typed = msg.Text
		}
	}
	return act
}

func callbackAction(c tele.Context) dialog.Action {
	key, payload := callbacks.ParseCallbackData(c.Callback())
	return dialog.DecodeCallback(tghelpers.UserID(c), key, payload)
}
