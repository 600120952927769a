package games

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"rumia/bot/common"

	"github.com/bwmarrin/discordgo"
)

// questTemplate is one entry of the quest board. Success is rolled against
// successRate when the owner accepts.
type questTemplate struct {
	name        string
	rank        string
	successRate int
	rewardMin   int64
	rewardMax   int64
	failMsg     string
}

var questTemplates = []questTemplate{
	{name: "スライム退治", rank: "D", successRate: 90, rewardMin: 100, rewardMax: 300, failMsg: "スライムに逃げられた…"},
	{name: "ゴブリンの討伐", rank: "C", successRate: 70, rewardMin: 500, rewardMax: 800, failMsg: "返り討ちにあった…"},
	{name: "ドラゴンの調査", rank: "S", successRate: 30, rewardMin: 5000, rewardMax: 10000, failMsg: "炎に焼かれて逃げ帰った…"},
	{name: "魔王城への潜入", rank: "SS", successRate: 10, rewardMin: 50000, rewardMax: 100000, failMsg: "門番に捕まり全財産を失いかけた…"},
}

// quest is a pending offer. It belongs to the user who requested it and
// expires after questTimeout.
type quest struct {
	userID   string
	template questTemplate
}

func (f *Feature) handleQuest(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	template := questTemplates[rand.Intn(len(questTemplates))]
	token := i.ID
	owner := common.InteractionUser(i).ID

	f.mu.Lock()
	f.quests[token] = &quest{userID: owner, template: template}
	f.mu.Unlock()

	// Expire the pending quest so clicks on a stale message get a clean
	// rejection instead of a free roll.
	time.AfterFunc(questTimeout, func() {
		f.mu.Lock()
		delete(f.quests, token)
		f.mu.Unlock()
	})

	return r.Respond(&discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{{
			Title: fmt.Sprintf("🛡️ クエスト受注: %s", template.name),
			Color: common.ColorMain,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "ランク", Value: template.rank, Inline: true},
				{Name: "成功率", Value: fmt.Sprintf("%d%%", template.successRate), Inline: true},
				{Name: "報酬", Value: fmt.Sprintf("%s - %s", common.FormatYen(template.rewardMin), common.FormatYen(template.rewardMax)), Inline: true},
			},
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "挑戦する",
					Style:    discordgo.DangerButton,
					Emoji:    &discordgo.ComponentEmoji{Name: "⚔️"},
					CustomID: "quest:" + token,
				},
			}},
		},
	})
}

type claimStatus int

const (
	claimOK claimStatus = iota
	claimExpired
	claimNotOwner
)

// claimQuest looks up and removes a pending quest in one critical section,
// so two clicks racing on the same token yield exactly one roll.
func (f *Feature) claimQuest(token, userID string) (*quest, claimStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()

	q, ok := f.quests[token]
	if !ok {
		return nil, claimExpired
	}
	if q.userID != userID {
		return nil, claimNotOwner
	}
	delete(f.quests, token)
	return q, claimOK
}

func (f *Feature) handleQuestButton(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder) error {
	token := i.MessageComponentData().CustomID[len("quest:"):]

	clicker := common.InteractionUser(i)
	q, status := f.claimQuest(token, clicker.ID)
	switch status {
	case claimExpired:
		return r.RespondText("⏰ このクエストは終了しています。", true)
	case claimNotOwner:
		return r.RespondText("他の人のクエストです。", true)
	}

	t := q.template
	if rand.Intn(100)+1 > t.successRate {
		return r.Respond(&discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "💀 クエスト失敗…",
				Description: t.failMsg + "\n報酬は得られませんでした。",
				Color:       common.ColorError,
			}},
		})
	}

	reward := t.rewardMin + rand.Int63n(t.rewardMax-t.rewardMin+1)
	f.award(clicker.ID, reward, "game_quest")
	return r.Respond(&discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "🎉 クエスト成功！",
			Description: fmt.Sprintf("無事に%sを達成しました。\n報酬: **%s** 獲得！", t.name, common.FormatYen(reward)),
			Color:       common.ColorSuccess,
		}},
	})
}
