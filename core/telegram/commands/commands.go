package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	// Hidden commands work but are left out of the published menu and help.
	Hidden  bool
	Aliases []string
}
