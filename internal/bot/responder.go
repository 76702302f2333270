package bot

import (
	"context"

	tghelpers "github.com/m3rciful/eventbot/core/telegram/helpers"
	"github.com/m3rciful/eventbot/core/telegram/keyboard"
	"github.com/m3rciful/eventbot/internal/dialog"

	tele "gopkg.in/telebot.v4"
)

// responder sends dialog replies into the chat of one update.
type responder struct {
	c tele.Context
}

func newResponder(c tele.Context) *responder {
	return &responder{c: c}
}

func (r *responder) Reply(_ context.Context, rep dialog.Reply) error {
	markup := keyboard.InlineButtonsRows(rep.Keyboard...)
	switch {
	case rep.Edit:
		return tghelpers.EditOrSendMD(r.c, rep.Text, markup)
	case rep.Markdown:
		return tghelpers.SendMD(r.c, rep.Text, markup)
	case markup != nil:
		return tghelpers.SendText(r.c, rep.Text, &tele.SendOptions{ReplyMarkup: markup})
	default:
		return tghelpers.SendText(r.c, rep.Text)
	}
}
