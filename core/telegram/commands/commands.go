// Package commands describes bot commands independently of their wiring.
package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// Hidden commands still work but are left out of the Telegram menu.
	Hidden  bool
	Aliases []string
}
