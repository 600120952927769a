package moderation

import (
	"fmt"

	"rumia/bot/common"

	"github.com/bwmarrin/discordgo"
)

// topRolePosition returns the highest role position a member holds. A member
// with no roles sits at -1, below anyone holding any role.
func topRolePosition(guild *discordgo.Guild, roleIDs []string) int {
	pos := -1
	for _, role := range guild.Roles {
		for _, id := range roleIDs {
			if role.ID == id && role.Position > pos {
				pos = role.Position
			}
		}
	}
	return pos
}

// checkHierarchy rejects actions against the guild owner or against anyone
// whose top role sits at or above the invoker's.
func checkHierarchy(s *discordgo.Session, guildID, invokerID, targetID string) error {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return fmt.Errorf("failed to load guild: %w", err)
	}
	if targetID == guild.OwnerID {
		return common.NewUserError("サーバーオーナーには実行できません。")
	}

	target, err := s.State.Member(guildID, targetID)
	if err != nil {
		return fmt.Errorf("failed to load target member: %w", err)
	}
	invoker, err := s.State.Member(guildID, invokerID)
	if err != nil {
		return fmt.Errorf("failed to load invoking member: %w", err)
	}

	if topRolePosition(guild, target.Roles) >= topRolePosition(guild, invoker.Roles) {
		return common.NewUserError("自分と同等以上のロールを持つメンバーには実行できません。")
	}
	return nil
}
