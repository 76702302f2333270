package telegram

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/eventbot/core/config"

	tele "gopkg.in/telebot.v4"
)

const defaultLongPollTimeout = 10

// WebhookOptions declares webhook listener settings.
type WebhookOptions struct {
	Listen string
	Port   int
	URL    string
}

// PollerOptions configures BuildPoller.
type PollerOptions struct {
	RunMode                string
	LongPollTimeoutSeconds int
	Webhook                WebhookOptions
	// Filter drops updates before they reach any handler when it returns false.
	Filter func(*tele.Update) bool
}

// BuildPoller returns a Telebot poller based on provided options.
func BuildPoller(opts PollerOptions) tele.Poller {
	var poller tele.Poller
	if strings.EqualFold(strings.TrimSpace(opts.RunMode), coreconfig.RunModeWebhook) {
		poller = &tele.Webhook{
			Listen:   fmt.Sprintf("%s:%d", opts.Webhook.Listen, opts.Webhook.Port),
			Endpoint: &tele.WebhookEndpoint{PublicURL: opts.Webhook.URL},
		}
	} else {
		timeoutSec := opts.LongPollTimeoutSeconds
		if timeoutSec <= 0 {
			timeoutSec = defaultLongPollTimeout
		}
		poller = &tele.LongPoller{Timeout: time.Duration(timeoutSec) * time.Second}
	}
	if opts.Filter != nil {
		return tele.NewMiddlewarePoller(poller, opts.Filter)
	}
	return poller
}

// PrivateOnly accepts updates from private chats and callbacks. Group
// traffic is dropped because conversation state is keyed by user alone.
func PrivateOnly(u *tele.Update) bool {
	switch {
	case u.Callback != nil:
		return true
	case u.Message != nil:
		return u.Message.Chat != nil && u.Message.Chat.Type == tele.ChatPrivate
	}
	return false
}
