package games

import (
	"context"
	"sync"
	"time"

	"rumia/bot/common"
	"rumia/bot/gamesession"
	"rumia/service"

	"github.com/bwmarrin/discordgo"
)

// Reward amounts for the reply-driven mini games.
const (
	rewardMath      = 300
	rewardGuess     = 500
	rewardShiritori = 100
)

const (
	questTimeout     = 60 * time.Second
	mathTimeout      = 10 * time.Second
	guessTimeout     = 10 * time.Second
	shiritoriTimeout = 20 * time.Second
)

// Feature bundles the mini games. Message-driven games go through the
// session manager; the quest uses buttons and its own pending store.
type Feature struct {
	economy  service.EconomyService
	sessions *gamesession.Manager

	mu     sync.Mutex
	quests map[string]*quest
}

func New(economy service.EconomyService, sessions *gamesession.Manager) *Feature {
	return &Feature{
		economy:  economy,
		sessions: sessions,
		quests:   make(map[string]*quest),
	}
}

// Commands returns the /game command group.
func (f *Feature) Commands() []*common.Command {
	return []*common.Command{
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "game",
				Description: "ミニゲーム",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "bot-quest",
						Description: "Botからのクエストに挑戦 (RPG)",
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "math-quiz",
						Description: "算数クイズを出題",
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "guess",
						Description: "1〜10の数字を当ててください",
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "shiritori",
						Description: "Botとしりとりをします (日本語)",
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "emerald",
						Description: "エメラルドを探します",
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "lovecalc",
						Description: "相性診断",
						Options: []*discordgo.ApplicationCommandOption{
							{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "相手", Required: true},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "8ball",
						Description: "魔法の8ボールに聞く",
						Options: []*discordgo.ApplicationCommandOption{
							{Type: discordgo.ApplicationCommandOptionString, Name: "question", Description: "質問", Required: true},
						},
					},
				},
			},
			Handler: f.handleGame,
		},
	}
}

// Components returns the quest button route.
func (f *Feature) Components() []common.Component {
	return []common.Component{
		{Prefix: "quest:", Handler: f.handleQuestButton},
	}
}

func (f *Feature) handleGame(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return common.NewUserError("サブコマンドを指定してください。")
	}

	sub := options[0]
	switch sub.Name {
	case "bot-quest":
		return f.handleQuest(ctx, s, i, r)
	case "math-quiz":
		return f.handleMath(ctx, s, i, r)
	case "guess":
		return f.handleGuess(ctx, s, i, r)
	case "shiritori":
		return f.handleShiritori(ctx, s, i, r)
	case "emerald":
		return f.handleEmerald(ctx, s, i, r)
	case "lovecalc":
		return f.handleLoveCalc(ctx, s, i, r, sub.Options)
	case "8ball":
		return f.handleEightBall(ctx, s, i, r, sub.Options)
	default:
		return common.NewUserError("不明なサブコマンドです。")
	}
}

// sessionKey builds the session identity for a message-driven game.
func sessionKey(i *discordgo.InteractionCreate) gamesession.Key {
	return gamesession.Key{
		UserID:    common.InteractionUser(i).ID,
		ChannelID: i.ChannelID,
	}
}
