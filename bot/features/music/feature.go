package music

import (
	"rumia/bot/common"
	"rumia/bot/voice"

	"github.com/bwmarrin/discordgo"
)

// Feature bundles the voice playback commands.
type Feature struct {
	voice *voice.Manager
}

func New(manager *voice.Manager) *Feature {
	return &Feature{voice: manager}
}

func (f *Feature) Commands() []*common.Command {
	minVolume := float64(0)
	maxVolume := float64(100)

	return []*common.Command{
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "join",
				Description: "ボイスチャンネルに参加",
			},
			Handler: f.handleJoin,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "leave",
				Description: "ボイスチャンネルから退出",
			},
			Handler: f.handleLeave,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "play",
				Description: "曲を再生またはキューに追加",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "query", Description: "曲名またはURL", Required: true},
				},
			},
			Handler: f.handlePlay,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "skip",
				Description: "今の曲をスキップ",
			},
			Handler: f.handleSkip,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "stop",
				Description: "再生を止めてキューを空にする",
			},
			Handler: f.handleStop,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "queue",
				Description: "再生キューを表示",
			},
			Handler: f.handleQueue,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "volume",
				Description: "音量を変更 (0-100)",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "level", Description: "音量", Required: true, MinValue: &minVolume, MaxValue: maxVolume},
				},
			},
			Handler: f.handleVolume,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "loop",
				Description: "ループ再生の切り替え",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionBoolean, Name: "enabled", Description: "有効/無効", Required: true},
				},
			},
			Handler: f.handleLoop,
		},
	}
}
