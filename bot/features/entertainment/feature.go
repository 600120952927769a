package entertainment

import (
	"context"
	"fmt"
	"math/rand"

	"rumia/bot/common"

	"github.com/bwmarrin/discordgo"
)

// Feature bundles the diversion commands: fortunes, talk topics and the
// punishment roulette.
type Feature struct{}

func New() *Feature {
	return &Feature{}
}

type fortune struct {
	name string
	prob int
	desc string
}

var fortunes = []fortune{
	{name: "大吉", prob: 5, desc: "最高の運勢！願い事が叶うでしょう。"},
	{name: "中吉", prob: 20, desc: "良いことがありそう。"},
	{name: "小吉", prob: 30, desc: "ささやかな幸せが訪れます。"},
	{name: "吉", prob: 30, desc: "普通が一番。"},
	{name: "凶", prob: 10, desc: "足元に注意。"},
	{name: "大凶", prob: 5, desc: "今日は大人しくしていましょう…"},
}

// Topics and punishments are assembled from phrase tables so the pools stay
// in the hundreds without listing every line.
var (
	topicPrefixes = []string{"もしも", "実は", "最近", "子供の頃", "将来", "今週末", "一生に一度は"}
	topicNouns    = []string{
		"宝くじが当たったら", "魔法が使えたら", "透明人間になれたら", "動物と話せたら",
		"好きな食べ物は", "嫌いな食べ物は", "行きたい国は", "一番の失敗談は",
		"誰にも言えない秘密は", "宇宙人を見たら", "無人島に持っていくなら",
		"最後の晩餐は", "ゾンビパニックが起きたら", "過去に戻れるなら",
		"未来に行けるなら", "一日だけ異性になれるなら", "総理大臣になったら",
	}
	topicSuffixes = []string{"どうする？", "何をする？", "誰と行く？", "教えて！", "について語ろう。"}

	punishActions = []string{
		"語尾に『にゃん』をつけて", "全力で愛を叫んで", "恥ずかしい過去を暴露して",
		"一番の変顔をして", "ポエムを詠んで", "架空の彼氏/彼女自慢をして",
		"5分間関西弁で話して", "英語禁止で喋って", "赤ちゃん言葉で話して",
	}
	punishTargets = []string{"1分間", "次の発言まで", "今日一日", "5回発言するまで"}
)

func (f *Feature) Commands() []*common.Command {
	return []*common.Command{
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "omikuji",
				Description: "おみくじ機能",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "draw",
						Description: "おみくじを引きます",
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "list",
						Description: "現在のおみくじ確率一覧",
					},
				},
			},
			Handler: f.handleOmikuji,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "topic",
				Description: "話題を提供します (700種以上)",
			},
			Handler: f.handleTopic,
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "punishment",
				Description: "罰ゲームをランダム表示",
			},
			Handler: f.handlePunishment,
		},
	}
}

func (f *Feature) handleOmikuji(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	options := i.ApplicationCommandData().Options
	if len(options) > 0 && options[0].Name == "list" {
		text := ""
		for _, fo := range fortunes {
			text += fmt.Sprintf("・**%s**: %d%% - %s\n", fo.name, fo.prob, fo.desc)
		}
		return r.RespondEmbed(&discordgo.MessageEmbed{
			Title:       "📜 おみくじ一覧",
			Description: text,
			Color:       common.ColorMain,
		}, false)
	}

	drawn := drawFortune()
	embed := &discordgo.MessageEmbed{
		Title: "⛩️ おみくじ結果",
		Color: common.ColorError,
		Fields: []*discordgo.MessageEmbedField{
			{Name: drawn.name, Value: drawn.desc},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("運勢: %s | %s", drawn.name, common.InteractionUser(i).Username),
		},
	}
	return r.RespondEmbed(embed, false)
}

func drawFortune() fortune {
	total := 0
	for _, fo := range fortunes {
		total += fo.prob
	}
	roll := rand.Intn(total)
	for _, fo := range fortunes {
		if roll < fo.prob {
			return fo
		}
		roll -= fo.prob
	}
	return fortunes[len(fortunes)-1]
}

func (f *Feature) handleTopic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	topic := fmt.Sprintf("%s %s %s",
		topicPrefixes[rand.Intn(len(topicPrefixes))],
		topicNouns[rand.Intn(len(topicNouns))],
		topicSuffixes[rand.Intn(len(topicSuffixes))])
	embed := &discordgo.MessageEmbed{
		Title:       "💡 話題の提案",
		Description: topic,
		Color:       common.ColorMain,
	}
	return r.RespondEmbed(embed, false)
}

func (f *Feature) handlePunishment(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	punishment := fmt.Sprintf("%s %s",
		punishActions[rand.Intn(len(punishActions))],
		punishTargets[rand.Intn(len(punishTargets))])
	embed := &discordgo.MessageEmbed{
		Title:       "☠️ 罰ゲーム命令",
		Description: "# " + punishment,
		Color:       0x000000,
	}
	return r.RespondEmbed(embed, false)
}
