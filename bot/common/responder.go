package common

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Responder tracks per-interaction response state so every interaction is
// answered exactly once. A deferred acknowledgment plus one follow-up counts
// as the single response; any further send attempt fails locally with
// ErrAlreadyResponded before touching the network.
type Responder struct {
	mu          sync.Mutex
	s           *discordgo.Session
	interaction *discordgo.Interaction
	deferred    bool
	responded   bool
}

// NewResponder creates a responder for one interaction
func NewResponder(s *discordgo.Session, i *discordgo.InteractionCreate) *Responder {
	return &Responder{s: s, interaction: i.Interaction}
}

// Defer acknowledges the interaction so the handler gains time for slow work.
// The eventual Respond call is delivered as the follow-up message.
func (r *Responder) Defer(ephemeral bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.responded || r.deferred {
		return ErrAlreadyResponded
	}

	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}

	err := r.s.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: flags},
	})
	if err != nil {
		return err
	}

	r.deferred = true
	return nil
}

// Respond sends the single response for this interaction
func (r *Responder) Respond(data *discordgo.InteractionResponseData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.responded {
		return ErrAlreadyResponded
	}

	if r.deferred {
		params := &discordgo.WebhookParams{
			Content:    data.Content,
			Embeds:     data.Embeds,
			Components: data.Components,
			Flags:      data.Flags,
		}
		if _, err := r.s.FollowupMessageCreate(r.interaction, true, params); err != nil {
			return err
		}
		r.responded = true
		return nil
	}

	err := r.s.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		return err
	}

	r.responded = true
	return nil
}

// RespondText sends a plain text response
func (r *Responder) RespondText(content string, ephemeral bool) error {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	return r.Respond(&discordgo.InteractionResponseData{Content: content, Flags: flags})
}

// RespondEmbed sends a single-embed response
func (r *Responder) RespondEmbed(embed *discordgo.MessageEmbed, ephemeral bool) error {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	return r.Respond(&discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  flags,
	})
}

// Responded reports whether the single response has been sent
func (r *Responder) Responded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.responded
}
