package music

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rumia/bot/common"
	"rumia/bot/voice"

	"github.com/bwmarrin/discordgo"
)

// memberVoiceChannel returns the voice channel the invoker is connected to.
func memberVoiceChannel(s *discordgo.Session, guildID, userID string) (string, error) {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return "", fmt.Errorf("failed to read guild state: %w", err)
	}
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID, nil
		}
	}
	return "", common.NewUserError("先にボイスチャンネルに参加してください。")
}

// player returns the guild's player, as a user error when not connected.
func (f *Feature) player(guildID string) (*voice.Player, error) {
	p, ok := f.voice.Player(guildID)
	if !ok {
		return nil, common.NewUserError("ボイスチャンネルに接続していません。")
	}
	return p, nil
}

func (f *Feature) handleJoin(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	channelID, err := memberVoiceChannel(s, i.GuildID, common.InteractionUser(i).ID)
	if err != nil {
		return err
	}

	if _, err := f.voice.Join(i.GuildID, channelID); err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}
	return r.RespondText(fmt.Sprintf("🔊 <#%s> に参加しました。", channelID), false)
}

func (f *Feature) handleLeave(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	if err := f.voice.Leave(i.GuildID); err != nil {
		if errors.Is(err, voice.ErrNotConnected) {
			return common.NewUserError("ボイスチャンネルに接続していません。")
		}
		return err
	}
	return r.RespondText("👋 退出しました。", false)
}

func (f *Feature) handlePlay(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	query := i.ApplicationCommandData().Options[0].StringValue()
	invoker := common.InteractionUser(i)

	p, ok := f.voice.Player(i.GuildID)
	if !ok {
		channelID, err := memberVoiceChannel(s, i.GuildID, invoker.ID)
		if err != nil {
			return err
		}
		p, err = f.voice.Join(i.GuildID, channelID)
		if err != nil {
			return fmt.Errorf("failed to join voice channel: %w", err)
		}
	}

	// Resolution shells out and can exceed the interaction deadline.
	if err := r.Defer(false); err != nil {
		return err
	}

	track, err := f.voice.Resolve(ctx, query, invoker.ID)
	if err != nil {
		return common.NewUserError("曲が見つかりませんでした。")
	}

	position := p.Enqueue(track)
	if position == 0 {
		return r.RespondText(fmt.Sprintf("▶️ **%s** を再生します。", track.Title), false)
	}
	return r.RespondText(fmt.Sprintf("📥 **%s** をキューに追加しました。(%d番目)", track.Title, position), false)
}

func (f *Feature) handleSkip(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	p, err := f.player(i.GuildID)
	if err != nil {
		return err
	}
	if !p.Skip() {
		return common.NewUserError("再生中の曲がありません。")
	}
	return r.RespondText("⏭️ スキップしました。", false)
}

func (f *Feature) handleStop(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	p, err := f.player(i.GuildID)
	if err != nil {
		return err
	}
	p.Stop()
	return r.RespondText("⏹️ 再生を停止してキューを空にしました。", false)
}

func (f *Feature) handleQueue(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	p, err := f.player(i.GuildID)
	if err != nil {
		return err
	}

	current := p.NowPlaying()
	pending := p.Queue()
	if current == nil && len(pending) == 0 {
		return r.RespondText("キューは空です。", false)
	}

	var sb strings.Builder
	if current != nil {
		fmt.Fprintf(&sb, "▶️ **%s**\n\n", current.Title)
	}
	for n, track := range pending {
		fmt.Fprintf(&sb, "%d. %s\n", n+1, track.Title)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🎶 再生キュー",
		Description: sb.String(),
		Color:       common.ColorMain,
	}
	return r.RespondEmbed(embed, false)
}

func (f *Feature) handleVolume(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	level := i.ApplicationCommandData().Options[0].IntValue()

	p, err := f.player(i.GuildID)
	if err != nil {
		return err
	}
	p.SetVolume(float64(level) / 100)
	return r.RespondText(fmt.Sprintf("🔉 音量を %d%% にしました。", level), false)
}

func (f *Feature) handleLoop(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	enabled := i.ApplicationCommandData().Options[0].BoolValue()

	p, err := f.player(i.GuildID)
	if err != nil {
		return err
	}
	p.SetLoop(enabled)

	state := "無効"
	if enabled {
		state = "有効"
	}
	return r.RespondText(fmt.Sprintf("🔁 ループ再生を%sにしました。", state), false)
}
