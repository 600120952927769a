package repository

import (
	"context"
	"testing"
	"time"

	"rumia/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuildSettingsRepository_GetDefaults(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewGuildSettingsRepository(testDB.DB)
	ctx := context.Background()

	settings, err := repo.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), settings.GuildID)
	assert.False(t, settings.AutomodEnabled)
	assert.Equal(t, 5, settings.SpamThreshold)
	assert.Equal(t, time.Minute, settings.MuteDuration)
	assert.Nil(t, settings.LogChannelID)
}

func TestGuildSettingsRepository_UpsertRoundTrip(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewGuildSettingsRepository(testDB.DB)
	ctx := context.Background()

	original := testutil.CreateTestGuildSettings(42)
	logChannel := int64(777)
	original.LogChannelID = &logChannel
	original.IgnoredChannelIDs = []int64{1, 2}
	original.MuteDuration = 5 * time.Minute
	require.NoError(t, repo.Upsert(ctx, original))

	loaded, err := repo.Get(ctx, 42)
	require.NoError(t, err)
	assert.True(t, loaded.AutomodEnabled)
	assert.True(t, loaded.SpamFilterEnabled)
	assert.Equal(t, []string{"spam"}, loaded.BannedWords)
	require.NotNil(t, loaded.LogChannelID)
	assert.Equal(t, int64(777), *loaded.LogChannelID)
	assert.Equal(t, []int64{1, 2}, loaded.IgnoredChannelIDs)
	assert.Equal(t, 5*time.Minute, loaded.MuteDuration)

	// Second upsert replaces the row
	original.AutomodEnabled = false
	original.BannedWords = nil
	require.NoError(t, repo.Upsert(ctx, original))

	loaded, err = repo.Get(ctx, 42)
	require.NoError(t, err)
	assert.False(t, loaded.AutomodEnabled)
	assert.Empty(t, loaded.BannedWords)
}
