package middleware

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/eventbot/core/telegram/helpers"
)

// fakeContext implements the parts of tele.Context the middleware touches.
type fakeContext struct {
	tele.Context

	update tele.Update
	mu     sync.Mutex
	store  map[string]interface{}
	sent   []interface{}
}

func newFakeContext(update tele.Update) *fakeContext {
	return &fakeContext{update: update, store: make(map[string]interface{})}
}

func (f *fakeContext) Update() tele.Update { return f.update }

func (f *fakeContext) Sender() *tele.User {
	switch {
	case f.update.Callback != nil:
		return f.update.Callback.Sender
	case f.update.Message != nil:
		return f.update.Message.Sender
	}
	return nil
}

func (f *fakeContext) Chat() *tele.Chat {
	if f.update.Message != nil {
		return f.update.Message.Chat
	}
	return nil
}

func (f *fakeContext) Text() string {
	if f.update.Message != nil {
		return f.update.Message.Text
	}
	return ""
}

func (f *fakeContext) Callback() *tele.Callback { return f.update.Callback }

func (f *fakeContext) Get(key string) interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store[key]
}

func (f *fakeContext) Set(key string, val interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store[key] = val
}

func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	f.sent = append(f.sent, what)
	return nil
}

func message(updateID int, userID int64, text string) tele.Update {
	return tele.Update{
		ID: updateID,
		Message: &tele.Message{
			Text:   text,
			Sender: &tele.User{ID: userID},
			Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		},
	}
}

func TestRateLimitDropsBurstFromSameUser(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Second,
		Now:       func() time.Time { return now },
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	require.NoError(t, h(newFakeContext(message(1, 7, "a"))))
	require.NoError(t, h(newFakeContext(message(2, 7, "b"))))
	require.NoError(t, h(newFakeContext(message(3, 8, "c"))))
	now = now.Add(2 * time.Second)
	require.NoError(t, h(newFakeContext(message(4, 7, "d"))))

	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, limited)
}

func TestRateLimitHonoursExclusions(t *testing.T) {
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Hour,
		Exclude:  map[string]struct{}{"callback": {}},
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	cb := tele.Update{ID: 1, Callback: &tele.Callback{Sender: &tele.User{ID: 7}, Data: "\fpage|2025-06-01|1"}}
	for i := 0; i < 3; i++ {
		require.NoError(t, h(newFakeContext(cb)))
	}
	assert.Equal(t, 3, calls)
}

func TestRecoverMiddlewareTurnsPanicIntoError(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	err := h(newFakeContext(message(1, 7, "x")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestLoggerMiddlewareStoresContext(t *testing.T) {
	c := newFakeContext(message(42, 7, "hello"))
	var seen bool
	h := LoggerMiddleware(func(c tele.Context) error {
		_, seen = tghelpers.ContextFrom(c)
		return nil
	})
	require.NoError(t, h(c))
	assert.True(t, seen)
	assert.Equal(t, "42:7:7", c.Get("rid"))
}

func TestMessageMetricsCountsSends(t *testing.T) {
	c := newFakeContext(message(1, 7, "x"))
	markup := &tele.ReplyMarkup{}
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		if err := c.Send("one"); err != nil {
			return err
		}
		return c.Send("two", &tele.SendOptions{ReplyMarkup: markup})
	})
	require.NoError(t, h(c))

	msgs, kb := GetCounters(c)
	assert.Equal(t, 2, msgs)
	assert.True(t, kb)
	assert.Len(t, c.sent, 2)
}

func TestUpdateKind(t *testing.T) {
	assert.Equal(t, "message", UpdateKind(newFakeContext(message(1, 1, "x"))))
	assert.Equal(t, "callback", UpdateKind(newFakeContext(tele.Update{Callback: &tele.Callback{}})))
	assert.Equal(t, "other", UpdateKind(newFakeContext(tele.Update{})))
}
