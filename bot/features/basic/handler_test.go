package basic

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func commandInteraction(invokerID string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{Options: options},
		Member: &discordgo.Member{
			User: &discordgo.User{ID: invokerID},
		},
	}}
}

func TestTargetUser(t *testing.T) {
	t.Run("defaults to the invoker", func(t *testing.T) {
		i := commandInteraction("100")
		assert.Equal(t, "100", targetUser(nil, i).ID)
	})

	t.Run("prefers the user option", func(t *testing.T) {
		i := commandInteraction("100", &discordgo.ApplicationCommandInteractionDataOption{
			Name:  "user",
			Type:  discordgo.ApplicationCommandOptionUser,
			Value: "42",
		})
		assert.Equal(t, "42", targetUser(nil, i).ID)
	})
}
