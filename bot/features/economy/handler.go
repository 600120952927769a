package economy

import (
	"context"
	"fmt"
	"strings"

	"rumia/bot/common"

	"github.com/bwmarrin/discordgo"
)

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func (f *Feature) handleBalance(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	target := common.InteractionUser(i)
	if opt, ok := optionMap(options)["user"]; ok {
		target = opt.UserValue(s)
	}

	userID, err := common.ParseUserID(target.ID)
	if err != nil {
		return err
	}

	user, err := f.economy.GetOrCreateUser(ctx, userID)
	if err != nil {
		return err
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("💰 %s の残高", target.Username),
		Color: common.ColorMain,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "現金", Value: common.FormatYen(user.Cash), Inline: true},
			{Name: "銀行", Value: common.FormatYen(user.Bank), Inline: true},
			{Name: "借金", Value: common.FormatYen(user.Debt), Inline: true},
			{Name: "純資産", Value: common.FormatYen(user.NetWorth())},
		},
	}
	return r.RespondEmbed(embed, false)
}

func (f *Feature) handleWork(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	userID, err := common.ParseUserID(common.InteractionUser(i).ID)
	if err != nil {
		return err
	}

	result, err := f.economy.Work(ctx, userID)
	if err != nil {
		return err
	}

	embed := &discordgo.MessageEmbed{
		Title:       "💪 お疲れさまでした！",
		Description: fmt.Sprintf("%sとして働いて %s 稼ぎました。(+%d XP)", result.Job.Name, common.FormatYen(result.Earnings), result.XPGained),
		Color:       common.ColorSuccess,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("現金: %s", common.FormatYen(result.NewCash))},
	}
	return r.RespondEmbed(embed, false)
}

func (f *Feature) handleSlot(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	opts := optionMap(options)
	bet := opts["bet"].IntValue()

	userID, err := common.ParseUserID(common.InteractionUser(i).ID)
	if err != nil {
		return err
	}

	result, err := f.economy.PlaySlot(ctx, userID, bet)
	if err != nil {
		return err
	}

	reels := strings.Join(result.Reels[:], " | ")
	embed := &discordgo.MessageEmbed{
		Title: "🎰 スロット",
		Color: common.ColorError,
		Description: fmt.Sprintf("**[ %s ]**\n\n残念、%s 失いました…", reels, common.FormatYen(bet)),
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("現金: %s", common.FormatYen(result.NewCash))},
	}
	if result.Won() {
		embed.Color = common.ColorSuccess
		embed.Description = fmt.Sprintf("**[ %s ]**\n\n🎉 %s 獲得！", reels, common.FormatYen(result.Payout))
	}
	return r.RespondEmbed(embed, false)
}

func (f *Feature) handleSend(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	opts := optionMap(options)
	target := opts["user"].UserValue(s)
	amount := opts["amount"].IntValue()

	if target.Bot {
		return common.NewUserError("ボットにはお金を送れません。")
	}

	fromID, err := common.ParseUserID(common.InteractionUser(i).ID)
	if err != nil {
		return err
	}
	toID, err := common.ParseUserID(target.ID)
	if err != nil {
		return err
	}

	if err := f.economy.Send(ctx, fromID, toID, amount); err != nil {
		return err
	}

	return r.RespondText(fmt.Sprintf("💸 %s に %s 送りました。", target.Mention(), common.FormatYen(amount)), false)
}

func (f *Feature) handleBorrow(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	amount := optionMap(options)["amount"].IntValue()

	userID, err := common.ParseUserID(common.InteractionUser(i).ID)
	if err != nil {
		return err
	}

	newDebt, err := f.economy.Borrow(ctx, userID, amount)
	if err != nil {
		return err
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🏦 借金",
		Description: fmt.Sprintf("%s 借りました。", common.FormatYen(amount)),
		Color:       common.ColorWarn,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("借金残高: %s", common.FormatYen(newDebt))},
	}
	return r.RespondEmbed(embed, false)
}

func (f *Feature) handleRepay(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	amount := optionMap(options)["amount"].IntValue()

	userID, err := common.ParseUserID(common.InteractionUser(i).ID)
	if err != nil {
		return err
	}

	repaid, remaining, err := f.economy.Repay(ctx, userID, amount)
	if err != nil {
		return err
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🏦 返済",
		Description: fmt.Sprintf("%s 返済しました。", common.FormatYen(repaid)),
		Color:       common.ColorSuccess,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("借金残高: %s", common.FormatYen(remaining))},
	}
	return r.RespondEmbed(embed, false)
}

func (f *Feature) handleRanking(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	ranked, err := f.economy.Ranking(ctx, 10)
	if err != nil {
		return err
	}
	if len(ranked) == 0 {
		return r.RespondText("まだ誰も資産を持っていません。", false)
	}

	medals := []string{"🥇", "🥈", "🥉"}
	var sb strings.Builder
	for n, entry := range ranked {
		rank := fmt.Sprintf("%d.", n+1)
		if n < len(medals) {
			rank = medals[n]
		}
		fmt.Fprintf(&sb, "%s <@%d> %s\n", rank, entry.UserID, common.FormatYen(entry.NetWorth))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "👑 資産ランキング",
		Description: sb.String(),
		Color:       common.ColorMain,
	}
	return r.RespondEmbed(embed, false)
}

func (f *Feature) handleInfo(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	invoker := common.InteractionUser(i)
	userID, err := common.ParseUserID(invoker.ID)
	if err != nil {
		return err
	}

	user, err := f.economy.GetOrCreateUser(ctx, userID)
	if err != nil {
		return err
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📋 %s のプロフィール", invoker.Username),
		Color: common.ColorMain,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "職業", Value: user.Job, Inline: true},
			{Name: "レベル", Value: fmt.Sprintf("Lv.%d (%d XP)", user.Level, user.XP), Inline: true},
			{Name: "純資産", Value: common.FormatYen(user.NetWorth()), Inline: true},
		},
	}
	if invoker.Avatar != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: invoker.AvatarURL("")}
	}
	return r.RespondEmbed(embed, false)
}

func (f *Feature) handleJobChange(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	jobName := i.ApplicationCommandData().Options[0].StringValue()

	userID, err := common.ParseUserID(common.InteractionUser(i).ID)
	if err != nil {
		return err
	}

	job, err := f.economy.ChangeJob(ctx, userID, jobName)
	if err != nil {
		return err
	}

	description := fmt.Sprintf("%s に転職しました！", job.Name)
	if job.Cost > 0 {
		description += fmt.Sprintf(" (転職費用 %s)", common.FormatYen(job.Cost))
	}
	embed := &discordgo.MessageEmbed{
		Title:       "💼 転職",
		Description: description,
		Color:       common.ColorSuccess,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("基本給: %s / シフト", common.FormatYen(job.Salary))},
	}
	return r.RespondEmbed(embed, false)
}
