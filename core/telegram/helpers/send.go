package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/eventbot/core/logger"
	"github.com/m3rciful/eventbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the sender used by helper functions. Nil sends inline.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

// deliver runs the call on the chat's sender shard and waits for it, so
// consecutive sends from one handler keep their order and the caller sees
// the final error after retries.
func deliver(c tele.Context, action string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	err := disp.Do(ctx, ChatID(c), action, run)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", action),
			slog.String("err", err.Error()),
		)
		return run()
	}
	return err
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	return deliver(c, "send.text", func() error {
		if sendOpts != nil {
			return c.Send(text, sendOpts)
		}
		return c.Send(text)
	})
}

// SendMD sends a message with Markdown parse mode and optional reply markup.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return SendText(c, text, mdOptions(markup))
}

// EditOrSendMD edits the message that carried the pressed button, or sends
// a new message when there is nothing to edit or the edit fails.
func EditOrSendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := mdOptions(markup)
	return deliver(c, "edit.text", func() error {
		if c.Callback() == nil || c.Callback().Message == nil {
			return c.Send(text, opts)
		}
		err := c.Edit(text, opts)
		if err == nil || errors.Is(err, tele.ErrSameMessageContent) {
			return nil
		}
		logger.Debug(BuildContext(c), "tg.sender", "edit.fallback",
			slog.String("err", err.Error()),
		)
		return c.Send(text, opts)
	})
}

// Respond answers a callback query so the client stops its spinner. The
// answer is queued on the chat's shard ahead of any reply the handler sends
// next and is not waited for.
func Respond(c tele.Context, text ...string) {
	if c.Callback() == nil {
		return
	}
	resp := &tele.CallbackResponse{}
	if len(text) > 0 {
		resp.Text = text[0]
	}
	ctx := BuildContext(c)
	run := func() error { return c.Respond(resp) }

	disp := currentDispatcher()
	if disp != nil {
		err := disp.Enqueue(ctx, ChatID(c), "callback.respond", run)
		if err == nil {
			return
		}
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", "callback.respond"),
			slog.String("err", err.Error()),
		)
	}
	if err := run(); err != nil {
		logger.Debug(ctx, "tg", "callback.respond_failed",
			slog.String("err", err.Error()),
		)
	}
}

func mdOptions(markup []*tele.ReplyMarkup) *tele.SendOptions {
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	return &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: rm}
}
