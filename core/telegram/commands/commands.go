package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands are wrapped with the operator check and hidden from the command menu.
	AdminOnly bool
	Hidden    bool
	Aliases   []string
}
