package moderation

import (
	"testing"

	"rumia/bot/common"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hierarchySession(t *testing.T) *discordgo.Session {
	t.Helper()
	s := &discordgo.Session{State: discordgo.NewState()}
	require.NoError(t, s.State.GuildAdd(&discordgo.Guild{
		ID:      "200",
		OwnerID: "1",
		Roles: []*discordgo.Role{
			{ID: "admin", Position: 10},
			{ID: "mod", Position: 5},
			{ID: "member", Position: 1},
		},
		Members: []*discordgo.Member{
			{GuildID: "200", User: &discordgo.User{ID: "1"}, Roles: []string{"admin"}},
			{GuildID: "200", User: &discordgo.User{ID: "2"}, Roles: []string{"mod"}},
			{GuildID: "200", User: &discordgo.User{ID: "3"}, Roles: []string{"mod"}},
			{GuildID: "200", User: &discordgo.User{ID: "4"}, Roles: []string{"member"}},
			{GuildID: "200", User: &discordgo.User{ID: "5"}, Roles: nil},
		},
	}))
	return s
}

func TestCheckHierarchy(t *testing.T) {
	s := hierarchySession(t)

	t.Run("moderator can act below their top role", func(t *testing.T) {
		assert.NoError(t, checkHierarchy(s, "200", "2", "4"))
		assert.NoError(t, checkHierarchy(s, "200", "2", "5"))
	})

	t.Run("equal top roles are rejected", func(t *testing.T) {
		err := checkHierarchy(s, "200", "2", "3")
		var userErr *common.UserError
		assert.ErrorAs(t, err, &userErr)
	})

	t.Run("acting upward is rejected", func(t *testing.T) {
		err := checkHierarchy(s, "200", "4", "2")
		var userErr *common.UserError
		assert.ErrorAs(t, err, &userErr)
	})

	t.Run("guild owner is untouchable", func(t *testing.T) {
		err := checkHierarchy(s, "200", "2", "1")
		var userErr *common.UserError
		assert.ErrorAs(t, err, &userErr)
	})

	t.Run("unknown guild surfaces the state error", func(t *testing.T) {
		assert.Error(t, checkHierarchy(s, "999", "2", "4"))
	})
}

func TestTopRolePosition(t *testing.T) {
	guild := &discordgo.Guild{Roles: []*discordgo.Role{
		{ID: "a", Position: 3},
		{ID: "b", Position: 7},
	}}

	assert.Equal(t, 7, topRolePosition(guild, []string{"a", "b"}))
	assert.Equal(t, 3, topRolePosition(guild, []string{"a"}))
	assert.Equal(t, -1, topRolePosition(guild, nil), "roleless members rank below everyone")
}
