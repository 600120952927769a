package common

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
)

// HandlerFunc is the business-logic half of a command. It reports failures as
// errors; the dispatcher converts them into user-visible responses.
type HandlerFunc func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *Responder) error

// Command pairs a slash-command definition with its guard requirements and handler
type Command struct {
	// Definition is registered with the platform on connect
	Definition *discordgo.ApplicationCommand

	// Permissions is a discordgo permission bitmask the invoking member must
	// hold entirely; zero means no requirement
	Permissions int64

	// Cooldown is the minimum interval between invocations per user;
	// zero disables the check
	Cooldown time.Duration

	Handler HandlerFunc
}

// Component routes message-component interactions (buttons) whose custom ID
// starts with Prefix
type Component struct {
	Prefix  string
	Handler HandlerFunc
}
