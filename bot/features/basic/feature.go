package basic

import (
	"context"
	"fmt"

	"rumia/bot/common"

	"github.com/bwmarrin/discordgo"
)

// Feature holds the utility commands.
type Feature struct{}

func New() *Feature {
	return &Feature{}
}

func (f *Feature) Commands() []*common.Command {
	return []*common.Command{
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "ping",
				Description: "生存確認と遅延の表示",
			},
			Handler: f.handlePing,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "serverinfo",
				Description: "サーバーの詳細情報を表示します",
			},
			Handler: f.handleServerInfo,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "userinfo",
				Description: "ユーザーの詳細情報を表示します",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "対象ユーザー (省略時は自分)"},
				},
			},
			Handler: f.handleUserInfo,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "avatar",
				Description: "指定したユーザーのアイコンを表示します",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "対象ユーザー (省略時は自分)"},
				},
			},
			Handler: f.handleAvatar,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "say",
				Description: "Botに好きな言葉を言わせます",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "message", Description: "言わせる内容", Required: true},
					{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "送信先チャンネル (省略可)"},
				},
			},
			Permissions: discordgo.PermissionManageMessages,
			Handler:     f.handleSay,
		},
	}
}

func (f *Feature) handlePing(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	latency := s.HeartbeatLatency()
	return r.RespondText(fmt.Sprintf("🏓 Pong! %dms", latency.Milliseconds()), false)
}
