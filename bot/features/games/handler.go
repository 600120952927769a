package games

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"rumia/bot/common"
	"rumia/bot/gamesession"

	"github.com/bwmarrin/discordgo"
)

// award credits a game reward, logging instead of failing the game when the
// ledger write goes wrong.
func (f *Feature) award(userID string, amount int64, reason string) {
	id, err := common.ParseUserID(userID)
	if err != nil {
		return
	}
	if err := f.economy.Award(context.Background(), id, amount, reason); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("failed to credit game reward")
	}
}

func say(s *discordgo.Session, channelID, content string) {
	if _, err := s.ChannelMessageSend(channelID, content); err != nil {
		log.WithError(err).WithField("channel_id", channelID).Warn("failed to send game message")
	}
}

func (f *Feature) handleMath(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	a, b := rand.Intn(20)+1, rand.Intn(20)+1
	var expr string
	var answer int
	switch rand.Intn(3) {
	case 0:
		expr, answer = fmt.Sprintf("%d + %d", a, b), a+b
	case 1:
		expr, answer = fmt.Sprintf("%d - %d", a, b), a-b
	default:
		expr, answer = fmt.Sprintf("%d * %d", a, b), a*b
	}

	key := sessionKey(i)
	channelID := i.ChannelID
	userID := key.UserID

	err := f.sessions.Start(key, &gamesession.Session{
		Timeout: mathTimeout,
		OnMessage: func(content string) gamesession.Outcome {
			guess, err := strconv.Atoi(strings.TrimSpace(content))
			if err != nil {
				return gamesession.Ignore
			}
			if guess == answer {
				return gamesession.Match
			}
			return gamesession.Fail
		},
		OnSuccess: func(string) {
			f.award(userID, rewardMath, "game_math")
			say(s, channelID, fmt.Sprintf("⭕ **正解！** 報酬: %s", common.FormatYen(rewardMath)))
		},
		OnFailure: func(string) {
			say(s, channelID, fmt.Sprintf("❌ **不正解…** 答えは `%d` でした。", answer))
		},
		OnTimeout: func() {
			say(s, channelID, fmt.Sprintf("⏰ 時間切れ！ 答えは `%d` でした。", answer))
		},
	})
	if err != nil {
		return common.NewUserError("このチャンネルで既にゲームが進行中です。")
	}

	return r.RespondText(fmt.Sprintf("🧠 **問題**: `%s = ?` (10秒以内に数字のみ入力)", expr), false)
}

func (f *Feature) handleGuess(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	target := rand.Intn(10) + 1

	key := sessionKey(i)
	channelID := i.ChannelID
	userID := key.UserID

	err := f.sessions.Start(key, &gamesession.Session{
		Timeout: guessTimeout,
		OnMessage: func(content string) gamesession.Outcome {
			guess, err := strconv.Atoi(strings.TrimSpace(content))
			if err != nil {
				return gamesession.Ignore
			}
			if guess == target {
				return gamesession.Match
			}
			return gamesession.Fail
		},
		OnSuccess: func(string) {
			f.award(userID, rewardGuess, "game_guess")
			say(s, channelID, fmt.Sprintf("🎯 **大当たり！** %s ゲット！", common.FormatYen(rewardGuess)))
		},
		OnFailure: func(string) {
			say(s, channelID, fmt.Sprintf("💨 ハズレ… 正解は `%d` でした。", target))
		},
		OnTimeout: func() {
			say(s, channelID, fmt.Sprintf("⏰ 時間切れ！ 正解は `%d` でした。", target))
		},
	})
	if err != nil {
		return common.NewUserError("このチャンネルで既にゲームが進行中です。")
	}

	return r.RespondText("🔢 1から10の数字を思い浮かべました。何でしょう？ (1回勝負)", false)
}

var shiritoriOpeners = []string{"りんご", "ごりら", "らっぱ", "ぱんだ", "だちょう", "うし", "しか", "からす", "すいか"}

var shiritoriBotLosses = []string{"みかん", "きりん", "ラーメン"}

func (f *Feature) handleShiritori(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	opener := shiritoriOpeners[rand.Intn(len(shiritoriOpeners))]
	required := lastKana(opener)

	key := sessionKey(i)
	channelID := i.ChannelID
	userID := key.UserID

	err := f.sessions.Start(key, &gamesession.Session{
		Timeout: shiritoriTimeout,
		OnMessage: func(content string) gamesession.Outcome {
			word := []rune(strings.TrimSpace(content))
			if len(word) == 0 {
				return gamesession.Ignore
			}
			if word[0] != required {
				return gamesession.Fail
			}
			if word[len(word)-1] == 'ん' {
				return gamesession.Fail
			}
			return gamesession.Match
		},
		OnSuccess: func(string) {
			// The bot concedes by answering with a word ending in ん.
			loss := shiritoriBotLosses[rand.Intn(len(shiritoriBotLosses))]
			f.award(userID, rewardShiritori, "game_shiritori")
			say(s, channelID, fmt.Sprintf("Bot: **%s**… あっ！「ん」がついちゃった！\n🎉 あなたの勝ちです！ %s 獲得！", loss, common.FormatYen(rewardShiritori)))
		},
		OnFailure: func(content string) {
			word := []rune(strings.TrimSpace(content))
			if len(word) > 0 && word[0] != required {
				say(s, channelID, fmt.Sprintf("❌ 「%c」から始まっていません！ ゲームオーバー！", required))
				return
			}
			say(s, channelID, "❌ 「ん」がつきました！ あなたの負けです！")
		},
		OnTimeout: func() {
			say(s, channelID, "⏰ 時間切れです！")
		},
	})
	if err != nil {
		return common.NewUserError("このチャンネルで既にゲームが進行中です。")
	}

	return r.RespondText(fmt.Sprintf("しりとりスタート！ Bot: **%s**\n（「%c」から始まる単語をひらがなで入力してね！）", opener, required), false)
}

// lastKana returns the kana the next word must start with, skipping a
// trailing long-vowel mark.
func lastKana(word string) rune {
	runes := []rune(word)
	for n := len(runes) - 1; n >= 0; n-- {
		if runes[n] != 'ー' {
			return runes[n]
		}
	}
	return 0
}

func (f *Feature) handleEmerald(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	roll := rand.Intn(100)
	switch {
	case roll < 60:
		return r.RespondEmbed(&discordgo.MessageEmbed{
			Description: "🕸️ 何もありませんでした…",
			Color:       0x95a5a6,
		}, false)
	case roll < 90:
		amt := int64(rand.Intn(501)) + 500
		f.award(common.InteractionUser(i).ID, amt, "game_emerald")
		return r.RespondEmbed(&discordgo.MessageEmbed{
			Description: fmt.Sprintf("🟢 **エメラルド発見！** %s で売れました！", common.FormatYen(amt)),
			Color:       common.ColorSuccess,
		}, false)
	default:
		amt := int64(rand.Intn(3001)) + 2000
		f.award(common.InteractionUser(i).ID, amt, "game_emerald")
		return r.RespondEmbed(&discordgo.MessageEmbed{
			Description: fmt.Sprintf("💎 **ダイヤモンド発見！** %s の大金です！", common.FormatYen(amt)),
			Color:       0x3498db,
		}, false)
	}
}

func (f *Feature) handleLoveCalc(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	target := options[0].UserValue(s)
	invoker := common.InteractionUser(i)

	// Hash the unordered pair so the result is stable and symmetric.
	a, b := invoker.ID, target.ID
	if a > b {
		a, b = b, a
	}
	h := fnv.New32a()
	h.Write([]byte(a + ":" + b))
	score := int(h.Sum32() % 101)

	var verdict string
	switch {
	case score == 100:
		verdict = "💑 結婚レベル！運命の二人です！"
	case score >= 80:
		verdict = "💖 かなりラブラブです！"
	case score >= 50:
		verdict = "🤔 まあまあの相性です。"
	default:
		verdict = "💔 前途多難かも…"
	}

	const barLen = 20
	fill := score * barLen / 100
	bar := strings.Repeat("█", fill) + strings.Repeat("░", barLen-fill)

	embed := &discordgo.MessageEmbed{
		Title:       "💘 恋愛計算機",
		Description: fmt.Sprintf("%s & %s\n\n**%d%%**\n`%s`\n\n%s", invoker.Mention(), target.Mention(), score, bar, verdict),
		Color:       0xff69b4,
	}
	return r.RespondEmbed(embed, false)
}

var eightBallAnswers = []string{
	"確かにそうです。",
	"間違いありません。",
	"おそらくそうです。",
	"今は分かりません。",
	"やめておいた方がいいでしょう。",
	"絶対に違います。",
}

func (f *Feature) handleEightBall(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	question := options[0].StringValue()
	answer := eightBallAnswers[rand.Intn(len(eightBallAnswers))]
	return r.RespondText(fmt.Sprintf("🎱 質問: %s\n**答え**: %s", question, answer), false)
}
