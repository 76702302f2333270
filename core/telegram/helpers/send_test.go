package helpers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/eventbot/core/telegram/sender"
)

type fakeContext struct {
	tele.Context

	update  tele.Update
	mu      sync.Mutex
	store   map[string]interface{}
	answers []string
}

func newCallbackContext(chatID int64) *fakeContext {
	chat := &tele.Chat{ID: chatID}
	return &fakeContext{
		update: tele.Update{ID: 7, Callback: &tele.Callback{
			Sender:  &tele.User{ID: chatID},
			Message: &tele.Message{Chat: chat},
		}},
		store: make(map[string]interface{}),
	}
}

func (f *fakeContext) Update() tele.Update      { return f.update }
func (f *fakeContext) Callback() *tele.Callback { return f.update.Callback }
func (f *fakeContext) Sender() *tele.User       { return f.update.Callback.Sender }
func (f *fakeContext) Chat() *tele.Chat         { return f.update.Callback.Message.Chat }

func (f *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	text := ""
	if len(resp) > 0 && resp[0] != nil {
		text = resp[0].Text
	}
	f.answers = append(f.answers, text)
	return nil
}

func (f *fakeContext) Get(key string) interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store[key]
}

func (f *fakeContext) Set(key string, v interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store[key] = v
}

func (f *fakeContext) answered() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.answers...)
}

func TestRespondQueuesAheadOfReply(t *testing.T) {
	d := sender.NewDispatcher(sender.Options{Shards: 1, QueueSize: 4, RetryBackoff: time.Millisecond})
	SetDispatcher(d)
	t.Cleanup(func() {
		SetDispatcher(nil)
		d.Close()
	})

	c := newCallbackContext(42)
	Respond(c, "Slow down")

	// The reply runs on the same shard, so the answer is already delivered.
	var seen []string
	err := d.Do(context.Background(), 42, "send.text", func() error {
		seen = c.answered()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Slow down"}, seen)
}

func TestRespondFallsBackInlineWhenClosed(t *testing.T) {
	d := sender.NewDispatcher(sender.Options{})
	d.Close()
	SetDispatcher(d)
	t.Cleanup(func() { SetDispatcher(nil) })

	c := newCallbackContext(5)
	Respond(c)
	assert.Equal(t, []string{""}, c.answered())
}

func TestRespondIgnoresMessages(t *testing.T) {
	c := newCallbackContext(5)
	c.update.Callback = nil
	Respond(c, "x")
	assert.Empty(t, c.answered())
}
