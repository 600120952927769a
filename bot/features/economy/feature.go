package economy

import (
	"context"
	"sort"
	"time"

	"rumia/bot/common"
	"rumia/models"
	"rumia/service"

	"github.com/bwmarrin/discordgo"
)

// Feature bundles the money commands.
type Feature struct {
	economy service.EconomyService
}

func New(economy service.EconomyService) *Feature {
	return &Feature{economy: economy}
}

// Commands returns the /s command group and /job_change.
func (f *Feature) Commands() []*common.Command {
	minBet := float64(1)

	return []*common.Command{
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "s",
				Description: "お金コマンド",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "bal",
						Description: "残高を表示",
						Options: []*discordgo.ApplicationCommandOption{
							{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "照会するユーザー"},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "work",
						Description: "働いてお金を稼ぐ",
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "slot",
						Description: "スロットを回す",
						Options: []*discordgo.ApplicationCommandOption{
							{Type: discordgo.ApplicationCommandOptionInteger, Name: "bet", Description: "賭け金", Required: true, MinValue: &minBet},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "send",
						Description: "お金を送る",
						Options: []*discordgo.ApplicationCommandOption{
							{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "送る相手", Required: true},
							{Type: discordgo.ApplicationCommandOptionInteger, Name: "amount", Description: "金額", Required: true, MinValue: &minBet},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "borrow",
						Description: "借金する",
						Options: []*discordgo.ApplicationCommandOption{
							{Type: discordgo.ApplicationCommandOptionInteger, Name: "amount", Description: "金額", Required: true, MinValue: &minBet},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "repay",
						Description: "借金を返す",
						Options: []*discordgo.ApplicationCommandOption{
							{Type: discordgo.ApplicationCommandOptionInteger, Name: "amount", Description: "金額", Required: true, MinValue: &minBet},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "ranking",
						Description: "資産ランキングを表示",
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "info",
						Description: "自分のプロフィールを表示",
					},
				},
			},
			Handler: f.handleMoney,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "job_change",
				Description: "転職する",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "job",
						Description: "新しい職業",
						Required:    true,
						Choices:     jobChoices(),
					},
				},
			},
			Cooldown: 10 * time.Second,
			Handler:  f.handleJobChange,
		},
	}
}

// handleMoney fans the /s subcommands out to their handlers.
func (f *Feature) handleMoney(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return common.NewUserError("サブコマンドを指定してください。")
	}

	sub := options[0]
	switch sub.Name {
	case "bal":
		return f.handleBalance(ctx, s, i, r, sub.Options)
	case "work":
		return f.handleWork(ctx, s, i, r)
	case "slot":
		return f.handleSlot(ctx, s, i, r, sub.Options)
	case "send":
		return f.handleSend(ctx, s, i, r, sub.Options)
	case "borrow":
		return f.handleBorrow(ctx, s, i, r, sub.Options)
	case "repay":
		return f.handleRepay(ctx, s, i, r, sub.Options)
	case "ranking":
		return f.handleRanking(ctx, s, i, r)
	case "info":
		return f.handleInfo(ctx, s, i, r)
	default:
		return common.NewUserError("不明なサブコマンドです。")
	}
}

// jobChoices lists the job table in ascending cost order so the picker reads
// as a career ladder.
func jobChoices() []*discordgo.ApplicationCommandOptionChoice {
	jobs := make([]models.Job, 0, len(models.Jobs))
	for _, job := range models.Jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(a, b int) bool {
		if jobs[a].Cost != jobs[b].Cost {
			return jobs[a].Cost < jobs[b].Cost
		}
		return jobs[a].Salary < jobs[b].Salary
	})

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(jobs))
	for _, job := range jobs {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  job.Name,
			Value: job.Name,
		})
	}
	return choices
}
