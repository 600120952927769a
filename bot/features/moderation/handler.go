package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rumia/bot/common"
	"rumia/models"

	"github.com/bwmarrin/discordgo"
)

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func reasonOf(opts map[string]*discordgo.ApplicationCommandInteractionDataOption) string {
	if opt, ok := opts["reason"]; ok {
		return opt.StringValue()
	}
	return "理由なし"
}

// record persists the case; the service fans it out to the log channel.
func (f *Feature) record(ctx context.Context, i *discordgo.InteractionCreate, targetID string, action models.ModerationAction, details string, color int) error {
	guildID, err := common.ParseUserID(i.GuildID)
	if err != nil {
		return err
	}
	userID, err := common.ParseUserID(targetID)
	if err != nil {
		return err
	}
	moderatorID, err := common.ParseUserID(common.InteractionUser(i).ID)
	if err != nil {
		return err
	}

	warning := &models.Warning{
		GuildID:     guildID,
		UserID:      userID,
		ModeratorID: moderatorID,
		Action:      action,
		Reason:      details,
	}
	return f.moderation.RecordAction(ctx, warning, details, color)
}

func (f *Feature) handleKick(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	opts := optionMap(i)
	target := opts["user"].UserValue(s)
	reason := reasonOf(opts)

	if err := checkHierarchy(s, i.GuildID, common.InteractionUser(i).ID, target.ID); err != nil {
		return err
	}
	if err := s.GuildMemberDeleteWithReason(i.GuildID, target.ID, reason); err != nil {
		return fmt.Errorf("failed to kick member: %w", err)
	}
	if err := f.record(ctx, i, target.ID, models.ActionKick, fmt.Sprintf("%s をキック: %s", target.Username, reason), common.ColorWarn); err != nil {
		return err
	}
	return r.RespondText(fmt.Sprintf("👢 %s をキックしました。(%s)", target.Username, reason), false)
}

func (f *Feature) handleBan(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	opts := optionMap(i)
	target := opts["user"].UserValue(s)
	reason := reasonOf(opts)

	if err := checkHierarchy(s, i.GuildID, common.InteractionUser(i).ID, target.ID); err != nil {
		return err
	}
	if err := s.GuildBanCreateWithReason(i.GuildID, target.ID, reason, 0); err != nil {
		return fmt.Errorf("failed to ban member: %w", err)
	}
	if err := f.record(ctx, i, target.ID, models.ActionBan, fmt.Sprintf("%s をBAN: %s", target.Username, reason), common.ColorError); err != nil {
		return err
	}
	return r.RespondText(fmt.Sprintf("🔨 %s をBANしました。(%s)", target.Username, reason), false)
}

func (f *Feature) handleUnban(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	targetID := optionMap(i)["user_id"].StringValue()
	if _, err := common.ParseUserID(targetID); err != nil {
		return common.NewUserError("ユーザーIDが不正です。")
	}

	if err := s.GuildBanDelete(i.GuildID, targetID); err != nil {
		return fmt.Errorf("failed to unban user: %w", err)
	}
	if err := f.record(ctx, i, targetID, models.ActionUnban, fmt.Sprintf("<@%s> のBANを解除", targetID), common.ColorSuccess); err != nil {
		return err
	}
	return r.RespondText(fmt.Sprintf("🕊️ <@%s> のBANを解除しました。", targetID), false)
}

func (f *Feature) handleTimeout(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	opts := optionMap(i)
	target := opts["user"].UserValue(s)
	minutes := opts["minutes"].IntValue()
	reason := reasonOf(opts)

	if err := checkHierarchy(s, i.GuildID, common.InteractionUser(i).ID, target.ID); err != nil {
		return err
	}
	until := time.Now().Add(time.Duration(minutes) * time.Minute)
	if err := s.GuildMemberTimeout(i.GuildID, target.ID, &until); err != nil {
		return fmt.Errorf("failed to timeout member: %w", err)
	}
	if err := f.record(ctx, i, target.ID, models.ActionTimeout, fmt.Sprintf("%s を%d分タイムアウト: %s", target.Username, minutes, reason), common.ColorWarn); err != nil {
		return err
	}
	return r.RespondText(fmt.Sprintf("🔇 %s を%d分タイムアウトしました。", target.Username, minutes), false)
}

func (f *Feature) handleUntimeout(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	target := optionMap(i)["user"].UserValue(s)

	if err := s.GuildMemberTimeout(i.GuildID, target.ID, nil); err != nil {
		return fmt.Errorf("failed to clear timeout: %w", err)
	}
	return r.RespondText(fmt.Sprintf("🔊 %s のタイムアウトを解除しました。", target.Username), false)
}

func (f *Feature) handleDelete(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	count := int(optionMap(i)["count"].IntValue())

	messages, err := s.ChannelMessages(i.ChannelID, count, "", "", "")
	if err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}
	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.ID)
	}
	if len(ids) == 0 {
		return r.RespondText("削除できるメッセージがありません。", true)
	}

	if err := s.ChannelMessagesBulkDelete(i.ChannelID, ids); err != nil {
		return fmt.Errorf("failed to bulk delete: %w", err)
	}
	if err := f.record(ctx, i, common.InteractionUser(i).ID, models.ActionPurge, fmt.Sprintf("<#%s> で%d件削除", i.ChannelID, len(ids)), common.ColorWarn); err != nil {
		return err
	}
	return r.RespondText(fmt.Sprintf("🧹 %d件のメッセージを削除しました。", len(ids)), true)
}

func (f *Feature) handleWarnings(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	target := optionMap(i)["user"].UserValue(s)

	guildID, err := common.ParseUserID(i.GuildID)
	if err != nil {
		return err
	}
	userID, err := common.ParseUserID(target.ID)
	if err != nil {
		return err
	}

	warnings, err := f.moderation.ListWarnings(ctx, guildID, userID)
	if err != nil {
		return err
	}
	if len(warnings) == 0 {
		return r.RespondText(fmt.Sprintf("%s に処分履歴はありません。", target.Username), true)
	}

	var sb strings.Builder
	for _, w := range warnings {
		fmt.Fprintf(&sb, "`%s` **%s** %s\n", w.CreatedAt.Format("2006-01-02"), w.Action, w.Reason)
	}
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📑 %s の処分履歴 (%d件)", target.Username, len(warnings)),
		Description: sb.String(),
		Color:       common.ColorWarn,
	}
	return r.RespondEmbed(embed, true)
}

func (f *Feature) handleLogsSetting(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	channel := optionMap(i)["channel"].ChannelValue(s)

	guildID, err := common.ParseUserID(i.GuildID)
	if err != nil {
		return err
	}
	channelID, err := common.ParseUserID(channel.ID)
	if err != nil {
		return err
	}

	if err := f.settings.SetLogChannel(ctx, guildID, channelID); err != nil {
		return err
	}
	return r.RespondText(fmt.Sprintf("📝 モデレーションログを <#%s> に送信します。", channel.ID), true)
}

func (f *Feature) handleAutomodSetting(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	opts := optionMap(i)
	enabled := opts["enabled"].BoolValue()

	guildID, err := common.ParseUserID(i.GuildID)
	if err != nil {
		return err
	}

	var words []string
	if opt, ok := opts["banned_words"]; ok {
		for _, w := range strings.Split(opt.StringValue(), ",") {
			if trimmed := strings.TrimSpace(w); trimmed != "" {
				words = append(words, trimmed)
			}
		}
	}
	if err := f.settings.SetBannedWords(ctx, guildID, enabled, words); err != nil {
		return err
	}

	if opt, ok := opts["spam_filter"]; ok {
		if err := f.settings.SetSpamFilter(ctx, guildID, opt.BoolValue()); err != nil {
			return err
		}
	}

	state := "無効"
	if enabled {
		state = "有効"
	}
	return r.RespondText(fmt.Sprintf("🛡️ 自動モデレーションを%sにしました。", state), true)
}
