package automod

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"rumia/config"
	"rumia/models"
	"rumia/service"
)

// Rule names reported in detection results and metrics.
const (
	RuleBannedWord    = "banned_word"
	RuleRepeatedChars = "repeated_chars"
	RuleSpamBurst     = "spam_burst"
)

const (
	windowCapacity = 10
	burstSpan      = 5 * time.Second
	repeatedRunLen = 10

	noticeTTL      = 5 * time.Second
	shortNoticeTTL = 3 * time.Second
)

var actionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rumia_automod_actions_total",
	Help: "Automod enforcement actions by rule.",
}, []string{"rule"})

// Message is the guild message view the detector inspects. IDs stay in wire
// form; the detector parses what it needs.
type Message struct {
	ID        string
	GuildID   string
	ChannelID string
	AuthorID  string
	RoleIDs   []string
	Content   string
	Sent      time.Time
}

// Actions is the enforcement surface the detector drives. Implementations
// talk to the chat platform; failures are logged, never retried. Notices are
// transient: the implementation removes them after expiry.
type Actions interface {
	DeleteMessage(channelID, messageID string) error
	MuteUser(guildID, userID string, duration time.Duration) error
	Notify(channelID, content string, expiry time.Duration) error
}

// Result describes what a detection run did to a message.
type Result struct {
	Rule  string
	Muted bool
}

type windowKey struct {
	guildID string
	userID  string
}

// window tracks one user's recent message times in one guild. Each window
// carries its own lock so a flood from one user never stalls another.
type window struct {
	mu    sync.Mutex
	times []time.Time
}

// Detector applies the moderation rules to guild messages: banned word
// substrings, repeated character runs, and message bursts.
type Detector struct {
	settings   service.GuildSettingsService
	moderation service.ModerationService
	actions    Actions

	mu      sync.Mutex
	windows map[windowKey]*window

	now func() time.Time
}

func NewDetector(settings service.GuildSettingsService, moderation service.ModerationService, actions Actions) *Detector {
	return &Detector{
		settings:   settings,
		moderation: moderation,
		actions:    actions,
		windows:    make(map[windowKey]*window),
		now:        time.Now,
	}
}

// Inspect runs the rules against a message and enforces the first one that
// matches. It returns nil for clean messages and for guilds with automod
// disabled.
func (d *Detector) Inspect(ctx context.Context, msg *Message) (*Result, error) {
	guildID, err := strconv.ParseInt(msg.GuildID, 10, 64)
	if err != nil {
		return nil, nil
	}

	settings, err := d.settings.Get(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guild settings: %w", err)
	}
	if !settings.AutomodEnabled || d.exempt(settings, msg) {
		return nil, nil
	}

	if word := firstBannedWord(settings.BannedWords, msg.Content); word != "" {
		d.enforce(ctx, guildID, msg, RuleBannedWord, fmt.Sprintf("禁止ワード「%s」を検出", word), 0)
		return &Result{Rule: RuleBannedWord}, nil
	}

	// Both spam rules sit behind the spam-filter flag; banned words are
	// gated by the automod flag alone.
	if !settings.SpamFilterEnabled {
		return nil, nil
	}

	if longestRun(msg.Content) >= repeatedRunLen {
		d.enforce(ctx, guildID, msg, RuleRepeatedChars, "同一文字の連続投稿を検出", 0)
		return &Result{Rule: RuleRepeatedChars}, nil
	}

	if d.recordBurst(msg, settings.SpamThreshold) {
		mute := settings.MuteDuration
		if mute <= 0 {
			mute = config.Get().SpamMuteDuration
		}
		d.enforce(ctx, guildID, msg, RuleSpamBurst, "短時間の連続投稿を検出", mute)
		return &Result{Rule: RuleSpamBurst, Muted: true}, nil
	}

	return nil, nil
}

// Forget drops a user's burst window, for use when the user leaves the guild.
func (d *Detector) Forget(guildID, userID string) {
	d.mu.Lock()
	delete(d.windows, windowKey{guildID: guildID, userID: userID})
	d.mu.Unlock()
}

func (d *Detector) exempt(settings *models.GuildSettings, msg *Message) bool {
	if channelID, err := strconv.ParseInt(msg.ChannelID, 10, 64); err == nil {
		for _, ignored := range settings.IgnoredChannelIDs {
			if ignored == channelID {
				return true
			}
		}
	}
	for _, role := range msg.RoleIDs {
		roleID, err := strconv.ParseInt(role, 10, 64)
		if err != nil {
			continue
		}
		for _, ignored := range settings.IgnoredRoleIDs {
			if ignored == roleID {
				return true
			}
		}
	}
	return false
}

// recordBurst appends the message time to the author's window and reports
// whether the burst threshold fired. A firing clears the window so the next
// message starts a fresh count instead of re-triggering.
func (d *Detector) recordBurst(msg *Message, threshold int) bool {
	if threshold <= 0 {
		return false
	}

	key := windowKey{guildID: msg.GuildID, userID: msg.AuthorID}
	d.mu.Lock()
	w, ok := d.windows[key]
	if !ok {
		w = &window{}
		d.windows[key] = w
	}
	d.mu.Unlock()

	sent := msg.Sent
	if sent.IsZero() {
		sent = d.now()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.times = append(w.times, sent)
	if len(w.times) > windowCapacity {
		w.times = w.times[len(w.times)-windowCapacity:]
	}
	if len(w.times) < threshold {
		return false
	}
	oldest := w.times[len(w.times)-threshold]
	if sent.Sub(oldest) >= burstSpan {
		return false
	}
	w.times = nil
	return true
}

// enforce deletes the offending message, mutes the author when the rule asks
// for it, and records the case. Platform failures are logged and swallowed;
// a failed delete must not block the mute.
func (d *Detector) enforce(ctx context.Context, guildID int64, msg *Message, rule, details string, mute time.Duration) {
	actionsTotal.WithLabelValues(rule).Inc()

	if err := d.actions.DeleteMessage(msg.ChannelID, msg.ID); err != nil {
		log.WithError(err).WithField("message_id", msg.ID).Warn("automod failed to delete message")
	}

	action := models.ActionAutomodDelete
	if mute > 0 {
		action = models.ActionAutomodMute
		if err := d.actions.MuteUser(msg.GuildID, msg.AuthorID, mute); err != nil {
			log.WithError(err).WithField("user_id", msg.AuthorID).Warn("automod failed to mute user")
		}
		if err := d.actions.Notify(msg.ChannelID, fmt.Sprintf("<@%s> スパムを検出したため%d秒間ミュートしました。", msg.AuthorID, int(mute.Seconds())), noticeTTL); err != nil {
			log.WithError(err).Warn("automod failed to post notice")
		}
	} else {
		// Repeated-character notices expire faster; the shorter TTL keeps
		// a flood of runs from stacking warnings in the channel.
		ttl := noticeTTL
		if rule == RuleRepeatedChars {
			ttl = shortNoticeTTL
		}
		if err := d.actions.Notify(msg.ChannelID, fmt.Sprintf("<@%s> そのメッセージは投稿できません。", msg.AuthorID), ttl); err != nil {
			log.WithError(err).Warn("automod failed to post notice")
		}
	}

	userID, err := strconv.ParseInt(msg.AuthorID, 10, 64)
	if err != nil {
		return
	}
	warning := &models.Warning{
		GuildID: guildID,
		UserID:  userID,
		Action:  action,
		Reason:  details,
	}
	if err := d.moderation.RecordAction(ctx, warning, details, 0xe74c3c); err != nil {
		log.WithError(err).Error("automod failed to record moderation case")
	}
}

// firstBannedWord returns the first configured word contained in the content,
// checked in configuration order.
func firstBannedWord(words []string, content string) string {
	for _, w := range words {
		if w == "" {
			continue
		}
		if strings.Contains(content, w) {
			return w
		}
	}
	return ""
}

// longestRun returns the length of the longest run of one rune. Run length is
// counted in runes so multibyte text behaves the same as ASCII.
func longestRun(s string) int {
	var prev rune
	run, longest := 0, 0
	for _, r := range s {
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
