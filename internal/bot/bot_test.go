package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/eventbot/internal/config"
	"github.com/m3rciful/eventbot/internal/dialog"
	"github.com/m3rciful/eventbot/internal/events"
)

type fakeContext struct {
	tele.Context

	update    tele.Update
	mu        sync.Mutex
	store     map[string]interface{}
	sent      []string
	sendOpts  []*tele.SendOptions
	edited    []string
	responded int
}

func newFakeContext(update tele.Update) *fakeContext {
	return &fakeContext{update: update, store: make(map[string]interface{})}
}

func (f *fakeContext) Update() tele.Update { return f.update }

func (f *fakeContext) Message() *tele.Message {
	if f.update.Callback != nil {
		return f.update.Callback.Message
	}
	return f.update.Message
}

func (f *fakeContext) Sender() *tele.User {
	if f.update.Callback != nil {
		return f.update.Callback.Sender
	}
	if f.update.Message != nil {
		return f.update.Message.Sender
	}
	return nil
}

func (f *fakeContext) Chat() *tele.Chat {
	if m := f.Message(); m != nil {
		return m.Chat
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

func (f *fakeContext) Send(what interface{}, opts ...interface{}) error {
	f.sent = append(f.sent, what.(string))
	f.sendOpts = append(f.sendOpts, firstSendOptions(opts))
	return nil
}

func (f *fakeContext) Edit(what interface{}, _ ...interface{}) error {
	f.edited = append(f.edited, what.(string))
	return nil
}

func (f *fakeContext) Respond(_ ...*tele.CallbackResponse) error {
	f.responded++
	return nil
}

func firstSendOptions(opts []interface{}) *tele.SendOptions {
	for _, o := range opts {
		if so, ok := o.(*tele.SendOptions); ok {
			return so
		}
	}
	return nil
}

func textUpdate(userID int64, text, payload string) tele.Update {
	return tele.Update{
		ID: 1,
		Message: &tele.Message{
			Text:    text,
			Payload: payload,
			Sender:  &tele.User{ID: userID},
			Chat:    &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		},
	}
}

func callbackUpdate(userID int64, data string) tele.Update {
	return tele.Update{
		ID: 2,
		Callback: &tele.Callback{
			Data:   data,
			Sender: &tele.User{ID: userID},
			Message: &tele.Message{
				ID:   99,
				Chat: &tele.Chat{ID: userID, Type: tele.ChatPrivate},
			},
		},
	}
}

type stubSource map[civil.Date][]events.Record

func (s stubSource) EventsForDate(_ context.Context, day civil.Date) []events.Record {
	return s[day]
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Upstream.BaseURL = "https://ra.co"
	cfg.Dialog.Timezone = "Europe/Berlin"
	cfg.Dialog.AreaName = "Berlin"
	cfg.Dialog.Limit = 10
	return cfg
}

func TestCommandActionReadsPayload(t *testing.T) {
	c := newFakeContext(textUpdate(7, "/events 2025-06-01", "2025-06-01"))
	act := commandAction(c, dialog.KindEvents)
	assert.Equal(t, dialog.Action{Kind: dialog.KindEvents, UserID: 7, Text: "2025-06-01"}, act)
}

func TestCommandActionKeepsBareWordText(t *testing.T) {
	c := newFakeContext(textUpdate(7, "events tomorrow", "tomorrow"))
	act := commandAction(c, dialog.KindEvents)
	assert.Equal(t, "tomorrow", act.Text)
	assert.Equal(t, "events tomorrow", act.Typed)
}

func TestCallbackActionDecodesRawData(t *testing.T) {
	c := newFakeContext(callbackUpdate(7, "\fpage|2025-06-01|-1"))
	act := callbackAction(c)
	assert.Equal(t, dialog.KindPage, act.Kind)
	assert.Equal(t, civil.Date{Year: 2025, Month: time.June, Day: 1}, act.Date)
	assert.Equal(t, -1, act.Offset)

	c = newFakeContext(callbackUpdate(7, "\fprev|2025-06-01"))
	assert.Equal(t, dialog.KindUnknown, callbackAction(c).Kind)
}

func TestResponderModes(t *testing.T) {
	c := newFakeContext(callbackUpdate(7, "\fpage|2025-06-01|1"))
	r := newResponder(c)
	ctx := context.Background()

	require.NoError(t, r.Reply(ctx, dialog.Reply{Text: "*md*", Markdown: true}))
	require.Len(t, c.sendOpts, 1)
	assert.Equal(t, tele.ModeMarkdown, c.sendOpts[0].ParseMode)

	require.NoError(t, r.Reply(ctx, dialog.Reply{Text: "plain"}))
	assert.Nil(t, c.sendOpts[1])

	require.NoError(t, r.Reply(ctx, dialog.Reply{Text: "page", Markdown: true, Edit: true}))
	assert.Equal(t, []string{"page"}, c.edited)
	assert.Equal(t, []string{"*md*", "plain"}, c.sent)
}

func TestEditFallsBackToSendWithoutCallback(t *testing.T) {
	c := newFakeContext(textUpdate(7, "x", ""))
	require.NoError(t, newResponder(c).Reply(context.Background(), dialog.Reply{Text: "page", Markdown: true, Edit: true}))
	assert.Empty(t, c.edited)
	assert.Equal(t, []string{"page"}, c.sent)
}

func TestAppRegistersCommandsAndCallbacks(t *testing.T) {
	app := newApp(testConfig(), stubSource{})
	reg := app.Registry()

	for _, name := range []string{"start", "/help", "events", "/browse", "search", "cancel"} {
		_, _, ok := reg.LookupCommand(name)
		assert.True(t, ok, name)
	}
	assert.ElementsMatch(t, []string{dialog.CallbackPage, dialog.CallbackSearch, dialog.CallbackCancel}, reg.ListCallbacks())
	assert.NotNil(t, reg.TextFallback())
}

func TestAppSearchFlow(t *testing.T) {
	cfg := testConfig()
	loc := cfg.Dialog.Location()
	today := civil.DateOf(time.Now().In(loc))
	venue := "Berghain"
	app := newApp(cfg, stubSource{today: {
		{Title: "Klubnacht", Venue: &venue, DetailPath: "/events/1"},
		{Title: "Other", DetailPath: "/events/2"},
	}})
	reg := app.Registry()

	cb, ok := reg.GetCallback(dialog.CallbackSearch)
	require.True(t, ok)
	press := newFakeContext(callbackUpdate(7, "\fsearch|"+today.String()))
	require.NoError(t, cb(press))
	assert.Equal(t, []string{dialog.TextSearchPrompt}, press.sent)
	assert.True(t, app.router.InProgress(7))

	msg := newFakeContext(textUpdate(7, "berghain", ""))
	require.NoError(t, reg.TextFallback()(msg))
	require.Len(t, msg.sent, 1)
	assert.True(t, strings.HasPrefix(msg.sent[0], "🔎 Results for 'berghain'"))
	assert.Equal(t, 1, strings.Count(msg.sent[0], "🔗"))
	assert.False(t, app.router.InProgress(7))
}

func TestTelegramRunOptions(t *testing.T) {
	app := newApp(testConfig(), stubSource{})
	opts, err := app.TelegramRunOptions()
	require.NoError(t, err)
	assert.Same(t, app.cfg.CoreConfig(), opts.Config)
	assert.NotNil(t, opts.UpdateFilter)
	assert.NotEmpty(t, opts.Middlewares)
	// 5 commands, 1 alias, the callback route and the text route.
	assert.Len(t, opts.Routes, 8)
}
