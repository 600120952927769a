package automod

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rumia/models"
)

func TestMain(m *testing.M) {
	os.Setenv("ENVIRONMENT", "test")
	os.Exit(m.Run())
}

type stubSettings struct {
	settings *models.GuildSettings
}

func (s *stubSettings) Get(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	return s.settings, nil
}

func (s *stubSettings) SetLogChannel(ctx context.Context, guildID, channelID int64) error {
	return nil
}

func (s *stubSettings) SetBannedWords(ctx context.Context, guildID int64, enabled bool, words []string) error {
	return nil
}

func (s *stubSettings) SetSpamFilter(ctx context.Context, guildID int64, enabled bool) error {
	return nil
}

type stubModeration struct {
	recorded []*models.Warning
}

func (s *stubModeration) RecordAction(ctx context.Context, warning *models.Warning, details string, color int) error {
	s.recorded = append(s.recorded, warning)
	return nil
}

func (s *stubModeration) ListWarnings(ctx context.Context, guildID, userID int64) ([]*models.Warning, error) {
	return nil, nil
}

type fakeActions struct {
	deleted  []string
	muted    []time.Duration
	notices  []string
	expiries []time.Duration
}

func (f *fakeActions) DeleteMessage(channelID, messageID string) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeActions) MuteUser(guildID, userID string, duration time.Duration) error {
	f.muted = append(f.muted, duration)
	return nil
}

func (f *fakeActions) Notify(channelID, content string, expiry time.Duration) error {
	f.notices = append(f.notices, content)
	f.expiries = append(f.expiries, expiry)
	return nil
}

func newTestDetector(settings *models.GuildSettings) (*Detector, *fakeActions, *stubModeration) {
	actions := &fakeActions{}
	moderation := &stubModeration{}
	d := NewDetector(&stubSettings{settings: settings}, moderation, actions)
	return d, actions, moderation
}

func guildMessage(id, content string, sent time.Time) *Message {
	return &Message{
		ID:        id,
		GuildID:   "200",
		ChannelID: "300",
		AuthorID:  "100",
		Content:   content,
		Sent:      sent,
	}
}

func TestInspect_DisabledGuildIsUntouched(t *testing.T) {
	settings := models.DefaultGuildSettings(200)
	settings.BannedWords = []string{"spam"}
	d, actions, _ := newTestDetector(settings)

	result, err := d.Inspect(context.Background(), guildMessage("1", "spam spam", time.Now()))

	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, actions.deleted)
}

func TestInspect_BannedWordFirstMatchWins(t *testing.T) {
	settings := models.DefaultGuildSettings(200)
	settings.AutomodEnabled = true
	settings.BannedWords = []string{"first", "second"}
	d, actions, moderation := newTestDetector(settings)

	result, err := d.Inspect(context.Background(), guildMessage("1", "second comes before first here", time.Now()))

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, RuleBannedWord, result.Rule)
	assert.False(t, result.Muted)
	assert.Equal(t, []string{"1"}, actions.deleted)
	assert.Empty(t, actions.muted)
	assert.Equal(t, []time.Duration{noticeTTL}, actions.expiries)
	require.Len(t, moderation.recorded, 1)
	assert.Equal(t, models.ActionAutomodDelete, moderation.recorded[0].Action)
	assert.Contains(t, moderation.recorded[0].Reason, "first")
}

func TestInspect_RepeatedCharacters(t *testing.T) {
	settings := models.DefaultGuildSettings(200)
	settings.AutomodEnabled = true
	settings.SpamFilterEnabled = true
	d, actions, _ := newTestDetector(settings)

	result, err := d.Inspect(context.Background(), guildMessage("1", "ああああああああああ", time.Now()))

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, RuleRepeatedChars, result.Rule)
	assert.Equal(t, []string{"1"}, actions.deleted)
	assert.Equal(t, []time.Duration{shortNoticeTTL}, actions.expiries)

	result, err = d.Inspect(context.Background(), guildMessage("2", "あああああああああ", time.Now()))
	require.NoError(t, err)
	assert.Nil(t, result, "nine repeats stay under the line")
}

func TestInspect_SpamFilterOffSkipsRepeatedRuns(t *testing.T) {
	settings := models.DefaultGuildSettings(200)
	settings.AutomodEnabled = true
	settings.SpamFilterEnabled = false
	d, actions, _ := newTestDetector(settings)

	result, err := d.Inspect(context.Background(), guildMessage("1", "ああああああああああああ", time.Now()))

	require.NoError(t, err)
	assert.Nil(t, result, "repeated runs only fire when the spam filter is on")
	assert.Empty(t, actions.deleted)
	assert.Empty(t, actions.notices)
}

func TestInspect_BurstMutesAndClearsWindow(t *testing.T) {
	settings := models.DefaultGuildSettings(200)
	settings.AutomodEnabled = true
	settings.SpamFilterEnabled = true
	d, actions, moderation := newTestDetector(settings)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var last *Result
	for n := 0; n < 5; n++ {
		result, err := d.Inspect(context.Background(), guildMessage("m", "hi", base.Add(time.Duration(n)*time.Second/2)))
		require.NoError(t, err)
		last = result
	}

	require.NotNil(t, last)
	assert.Equal(t, RuleSpamBurst, last.Rule)
	assert.True(t, last.Muted)
	assert.Equal(t, []time.Duration{time.Minute}, actions.muted)
	require.Len(t, moderation.recorded, 1)
	assert.Equal(t, models.ActionAutomodMute, moderation.recorded[0].Action)

	// The firing cleared the window; one more quick message must not
	// re-trigger on stale history.
	result, err := d.Inspect(context.Background(), guildMessage("m6", "hi", base.Add(3*time.Second)))
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Len(t, actions.muted, 1)
}

func TestInspect_BurstMuteFallsBackToConfiguredDuration(t *testing.T) {
	settings := models.DefaultGuildSettings(200)
	settings.AutomodEnabled = true
	settings.SpamFilterEnabled = true
	settings.MuteDuration = 0
	d, actions, _ := newTestDetector(settings)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for n := 0; n < 5; n++ {
		_, err := d.Inspect(context.Background(), guildMessage("m", "hi", base.Add(time.Duration(n)*time.Second/2)))
		require.NoError(t, err)
	}

	assert.Equal(t, []time.Duration{time.Minute}, actions.muted,
		"a guild without its own mute duration uses the process-wide default")
}

func TestInspect_SlowMessagesNeverBurst(t *testing.T) {
	settings := models.DefaultGuildSettings(200)
	settings.AutomodEnabled = true
	settings.SpamFilterEnabled = true
	d, actions, _ := newTestDetector(settings)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for n := 0; n < 12; n++ {
		result, err := d.Inspect(context.Background(), guildMessage("m", "hi", base.Add(time.Duration(n)*2*time.Second)))
		require.NoError(t, err)
		assert.Nil(t, result)
	}
	assert.Empty(t, actions.muted)
}

func TestInspect_IgnoredChannelIsExempt(t *testing.T) {
	settings := models.DefaultGuildSettings(200)
	settings.AutomodEnabled = true
	settings.BannedWords = []string{"spam"}
	settings.IgnoredChannelIDs = []int64{300}
	d, actions, _ := newTestDetector(settings)

	result, err := d.Inspect(context.Background(), guildMessage("1", "spam", time.Now()))

	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, actions.deleted)
}

func TestInspect_IgnoredRoleIsExempt(t *testing.T) {
	settings := models.DefaultGuildSettings(200)
	settings.AutomodEnabled = true
	settings.BannedWords = []string{"spam"}
	settings.IgnoredRoleIDs = []int64{900}
	d, actions, _ := newTestDetector(settings)

	msg := guildMessage("1", "spam", time.Now())
	msg.RoleIDs = []string{"900"}
	result, err := d.Inspect(context.Background(), msg)

	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, actions.deleted)
}

func TestRecordBurst_WindowCapacity(t *testing.T) {
	d, _, _ := newTestDetector(models.DefaultGuildSettings(200))

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msg := guildMessage("m", "hi", base)
	for n := 0; n < 25; n++ {
		msg.Sent = base.Add(time.Duration(n) * 10 * time.Second)
		assert.False(t, d.recordBurst(msg, 5))
	}

	d.mu.Lock()
	w := d.windows[windowKey{guildID: "200", userID: "100"}]
	d.mu.Unlock()
	require.NotNil(t, w)
	assert.Len(t, w.times, windowCapacity)
}

func TestLongestRun(t *testing.T) {
	assert.Equal(t, 0, longestRun(""))
	assert.Equal(t, 1, longestRun("abc"))
	assert.Equal(t, 4, longestRun("xaaaab"))
	assert.Equal(t, 10, longestRun("wwwwwwwwww"))
	assert.Equal(t, 3, longestRun("あああ"))
}
