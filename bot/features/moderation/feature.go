package moderation

import (
	"rumia/bot/common"
	"rumia/service"

	"github.com/bwmarrin/discordgo"
)

// Feature bundles the moderator commands. Each command carries the
// permission bitmask the dispatcher enforces before the handler runs.
type Feature struct {
	moderation service.ModerationService
	settings   service.GuildSettingsService
}

func New(moderation service.ModerationService, settings service.GuildSettingsService) *Feature {
	return &Feature{moderation: moderation, settings: settings}
}

func (f *Feature) Commands() []*common.Command {
	minCount := float64(1)
	maxCount := float64(100)
	minMinutes := float64(1)

	return []*common.Command{
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "kick",
				Description: "メンバーをキック",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "対象", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "理由"},
				},
			},
			Permissions: discordgo.PermissionKickMembers,
			Handler:     f.handleKick,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "ban",
				Description: "メンバーをBAN",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "対象", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "理由"},
				},
			},
			Permissions: discordgo.PermissionBanMembers,
			Handler:     f.handleBan,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "unban",
				Description: "BANを解除",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "user_id", Description: "対象のユーザーID", Required: true},
				},
			},
			Permissions: discordgo.PermissionBanMembers,
			Handler:     f.handleUnban,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "timeout",
				Description: "メンバーをタイムアウト",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "対象", Required: true},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "minutes", Description: "時間(分)", Required: true, MinValue: &minMinutes},
					{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "理由"},
				},
			},
			Permissions: discordgo.PermissionModerateMembers,
			Handler:     f.handleTimeout,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "untimeout",
				Description: "タイムアウトを解除",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "対象", Required: true},
				},
			},
			Permissions: discordgo.PermissionModerateMembers,
			Handler:     f.handleUntimeout,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "delete",
				Description: "メッセージをまとめて削除",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "count", Description: "削除する件数 (1-100)", Required: true, MinValue: &minCount, MaxValue: maxCount},
				},
			},
			Permissions: discordgo.PermissionManageMessages,
			Handler:     f.handleDelete,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "warnings",
				Description: "メンバーの処分履歴を表示",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "対象", Required: true},
				},
			},
			Permissions: discordgo.PermissionModerateMembers,
			Handler:     f.handleWarnings,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "logs_setting",
				Description: "モデレーションログの送信先を設定",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:         discordgo.ApplicationCommandOptionChannel,
						Name:         "channel",
						Description:  "ログチャンネル",
						Required:     true,
						ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
					},
				},
			},
			Permissions: discordgo.PermissionManageServer,
			Handler:     f.handleLogsSetting,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "automod_setting",
				Description: "自動モデレーションを設定",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionBoolean, Name: "enabled", Description: "自動モデレーションの有効/無効", Required: true},
					{Type: discordgo.ApplicationCommandOptionBoolean, Name: "spam_filter", Description: "スパムフィルターの有効/無効"},
					{Type: discordgo.ApplicationCommandOptionString, Name: "banned_words", Description: "禁止ワード (カンマ区切り)"},
				},
			},
			Permissions: discordgo.PermissionManageServer,
			Handler:     f.handleAutomodSetting,
		},
	}
}
