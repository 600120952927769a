package basic

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"rumia/bot/common"

	"github.com/bwmarrin/discordgo"
)

func (f *Feature) handleServerInfo(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	guild, err := s.State.Guild(i.GuildID)
	if err != nil {
		return fmt.Errorf("failed to load guild: %w", err)
	}

	humans, bots := 0, 0
	for _, m := range guild.Members {
		if m.User != nil && m.User.Bot {
			bots++
		} else {
			humans++
		}
	}

	textChannels, voiceChannels := 0, 0
	for _, ch := range guild.Channels {
		switch ch.Type {
		case discordgo.ChannelTypeGuildText:
			textChannels++
		case discordgo.ChannelTypeGuildVoice:
			voiceChannels++
		}
	}

	created := "不明"
	if ts, err := discordgo.SnowflakeTimestamp(guild.ID); err == nil {
		created = ts.Format("2006/01/02")
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🏰 %s の情報", guild.Name),
		Color: common.ColorMain,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🆔 サーバーID", Value: guild.ID, Inline: true},
			{Name: "👑 オーナー", Value: fmt.Sprintf("<@%s>", guild.OwnerID), Inline: true},
			{Name: "📅 作成日", Value: created, Inline: true},
			{Name: "👥 メンバー", Value: fmt.Sprintf("合計: %d\n(人: %d / Bot: %d)", guild.MemberCount, humans, bots), Inline: true},
			{Name: "💬 チャンネル", Value: fmt.Sprintf("Text: %d | Voice: %d", textChannels, voiceChannels), Inline: true},
			{Name: "🎭 ロール数", Value: fmt.Sprintf("%d", len(guild.Roles)), Inline: true},
			{Name: "🚀 ブースト", Value: fmt.Sprintf("Level %d (%d Boosts)", guild.PremiumTier, guild.PremiumSubscriptionCount), Inline: true},
		},
	}
	if guild.Icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: guild.IconURL("256")}
	}
	if guild.Banner != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: guild.BannerURL("512")}
	}
	return r.RespondEmbed(embed, false)
}

// targetUser resolves the optional "user" option, defaulting to the invoker.
func targetUser(s *discordgo.Session, i *discordgo.InteractionCreate) *discordgo.User {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "user" {
			return opt.UserValue(s)
		}
	}
	return common.InteractionUser(i)
}

func (f *Feature) handleUserInfo(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	target := targetUser(s, i)
	guild, err := s.State.Guild(i.GuildID)
	if err != nil {
		return fmt.Errorf("failed to load guild: %w", err)
	}
	member, err := s.State.Member(i.GuildID, target.ID)
	if err != nil {
		member, err = s.GuildMember(i.GuildID, target.ID)
		if err != nil {
			return fmt.Errorf("failed to load member: %w", err)
		}
	}

	// Roles from highest to lowest, @everyone excluded, capped at ten.
	held := make([]*discordgo.Role, 0, len(member.Roles))
	for _, role := range guild.Roles {
		for _, id := range member.Roles {
			if role.ID == id {
				held = append(held, role)
			}
		}
	}
	sort.Slice(held, func(a, b int) bool { return held[a].Position > held[b].Position })

	var perms int64
	mentions := make([]string, 0, 10)
	for _, role := range held {
		perms |= role.Permissions
		if len(mentions) < 10 {
			mentions = append(mentions, role.Mention())
		}
	}
	roleStr := strings.Join(mentions, ", ")
	if len(held) > 10 {
		roleStr += fmt.Sprintf(" 他 %d個", len(held)-10)
	}
	if roleStr == "" {
		roleStr = "なし"
	}

	created := "不明"
	if ts, err := discordgo.SnowflakeTimestamp(target.ID); err == nil {
		created = ts.Format("2006/01/02")
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "ユーザーID", Value: target.ID, Inline: true},
		{Name: "アカウント作成", Value: created, Inline: true},
		{Name: "サーバー参加", Value: member.JoinedAt.Format("2006/01/02"), Inline: true},
		{Name: fmt.Sprintf("ロール (%d)", len(held)), Value: roleStr, Inline: false},
	}

	var keyPerms []string
	if perms&discordgo.PermissionAdministrator != 0 {
		keyPerms = append(keyPerms, "管理者")
	}
	if perms&discordgo.PermissionBanMembers != 0 {
		keyPerms = append(keyPerms, "BAN権限")
	}
	if perms&discordgo.PermissionManageServer != 0 {
		keyPerms = append(keyPerms, "サーバー管理")
	}
	if len(keyPerms) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "🔑 主な権限", Value: strings.Join(keyPerms, ", "), Inline: false})
	}

	name := target.Username
	if member.Nick != "" {
		name = member.Nick
	}
	return r.RespondEmbed(&discordgo.MessageEmbed{
		Title:     fmt.Sprintf("👤 %s の情報", name),
		Color:     common.ColorMain,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: target.AvatarURL("256")},
		Fields:    fields,
	}, false)
}

func (f *Feature) handleAvatar(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	target := targetUser(s, i)
	return r.RespondEmbed(&discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s のアイコン", target.Username),
		Color: common.ColorMain,
		Image: &discordgo.MessageEmbedImage{URL: target.AvatarURL("1024")},
	}, false)
}

func (f *Feature) handleSay(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	var message string
	channelID := i.ChannelID
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "message":
			message = opt.StringValue()
		case "channel":
			channelID = opt.ChannelValue(s).ID
		}
	}

	if _, err := s.ChannelMessageSend(channelID, message); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return r.RespondText("✅ 送信しました", true)
}
