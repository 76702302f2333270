package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/eventbot/core/telegram/commands"
)

func noop(tele.Context) error { return nil }

func TestRegistryLookupCommand(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Welcome", Aliases: []string{"help"}})
	reg.RegisterCommand("/events", commands.Command{Handler: noop, Description: "Events for a date"})
	reg.RegisterCommand("nodash", commands.Command{Handler: noop, Description: "skipped"})

	for _, in := range []string{"/events", "events", "EVENTS", "/events@berlin_bot"} {
		key, _, ok := reg.LookupCommand(in)
		require.True(t, ok, in)
		assert.Equal(t, "/events", key)
	}

	key, _, ok := reg.LookupCommand("/help")
	require.True(t, ok)
	assert.Equal(t, "/start", key)

	_, _, ok = reg.LookupCommand("berghain")
	assert.False(t, ok)
	_, _, ok = reg.LookupCommand("/")
	assert.False(t, ok)
	assert.Len(t, reg.Commands(), 2)
}

func TestRegistryListCommandsSkipsHidden(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Welcome"})
	reg.RegisterCommand("/cancel", commands.Command{Handler: noop, Description: "Cancel", Hidden: true})

	assert.Equal(t, []tele.Command{{Text: "start", Description: "Welcome"}}, reg.ListCommands(true))
	assert.Len(t, reg.ListCommands(false), 2)
}

func TestRegistryCallbacks(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCallback("page", noop))
	assert.Error(t, reg.RegisterCallback("page", noop))
	assert.Error(t, reg.RegisterCallback("", noop))

	_, ok := reg.GetCallback("page")
	assert.True(t, ok)
	_, ok = reg.GetCallback("date")
	assert.False(t, ok)
	assert.Equal(t, []string{"page"}, reg.ListCallbacks())
	assert.NotNil(t, reg.CallbackNotFound())
}
