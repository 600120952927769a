package repository

import (
	"context"
	"fmt"
	"time"

	"rumia/database"
	"rumia/models"

	"github.com/jackc/pgx/v5"
)

const guildSettingsColumns = `guild_id, automod_enabled, spam_filter_enabled, banned_words,
	log_channel_id, spam_threshold, mute_duration_seconds, ignored_channel_ids, ignored_role_ids`

// GuildSettingsRepository implements the service.GuildSettingsRepository interface
type GuildSettingsRepository struct {
	q queryable
}

// NewGuildSettingsRepository creates a new guild settings repository
func NewGuildSettingsRepository(db *database.DB) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: db.Pool}
}

// newGuildSettingsRepositoryWithTx creates a new guild settings repository with a transaction
func newGuildSettingsRepositoryWithTx(tx queryable) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: tx}
}

func scanGuildSettings(row pgx.Row) (*models.GuildSettings, error) {
	var settings models.GuildSettings
	var muteSeconds int
	err := row.Scan(
		&settings.GuildID,
		&settings.AutomodEnabled,
		&settings.SpamFilterEnabled,
		&settings.BannedWords,
		&settings.LogChannelID,
		&settings.SpamThreshold,
		&muteSeconds,
		&settings.IgnoredChannelIDs,
		&settings.IgnoredRoleIDs,
	)
	if err != nil {
		return nil, err
	}
	settings.MuteDuration = time.Duration(muteSeconds) * time.Second
	return &settings, nil
}

// Get retrieves settings for a guild, returning defaults when none are stored.
// Called on every inbound guild message, so it stays a single-row lookup.
func (r *GuildSettingsRepository) Get(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	query := `SELECT ` + guildSettingsColumns + ` FROM guild_settings WHERE guild_id = $1`

	settings, err := scanGuildSettings(r.q.QueryRow(ctx, query, guildID))
	if err == pgx.ErrNoRows {
		return models.DefaultGuildSettings(guildID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings for guild %d: %w", guildID, err)
	}

	return settings, nil
}

// Upsert inserts or replaces the settings row for a guild
func (r *GuildSettingsRepository) Upsert(ctx context.Context, settings *models.GuildSettings) error {
	query := `
		INSERT INTO guild_settings (guild_id, automod_enabled, spam_filter_enabled, banned_words,
			log_channel_id, spam_threshold, mute_duration_seconds, ignored_channel_ids, ignored_role_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (guild_id) DO UPDATE
		SET automod_enabled = $2,
		    spam_filter_enabled = $3,
		    banned_words = $4,
		    log_channel_id = $5,
		    spam_threshold = $6,
		    mute_duration_seconds = $7,
		    ignored_channel_ids = $8,
		    ignored_role_ids = $9,
		    updated_at = NOW()
	`

	bannedWords := settings.BannedWords
	if bannedWords == nil {
		bannedWords = []string{}
	}
	ignoredChannels := settings.IgnoredChannelIDs
	if ignoredChannels == nil {
		ignoredChannels = []int64{}
	}
	ignoredRoles := settings.IgnoredRoleIDs
	if ignoredRoles == nil {
		ignoredRoles = []int64{}
	}

	_, err := r.q.Exec(ctx, query,
		settings.GuildID,
		settings.AutomodEnabled,
		settings.SpamFilterEnabled,
		bannedWords,
		settings.LogChannelID,
		settings.SpamThreshold,
		int(settings.MuteDuration/time.Second),
		ignoredChannels,
		ignoredRoles,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert guild settings for guild %d: %w", settings.GuildID, err)
	}

	return nil
}
