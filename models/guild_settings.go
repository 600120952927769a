package models

import "time"

// GuildSettings holds per-guild moderation configuration.
// Created on first configuration command, read on every guild message.
type GuildSettings struct {
	GuildID           int64         `db:"guild_id"`
	AutomodEnabled    bool          `db:"automod_enabled"`
	SpamFilterEnabled bool          `db:"spam_filter_enabled"`
	BannedWords       []string      `db:"banned_words"`
	LogChannelID      *int64        `db:"log_channel_id"`
	SpamThreshold     int           `db:"spam_threshold"`
	MuteDuration      time.Duration `db:"-"`
	IgnoredChannelIDs []int64       `db:"ignored_channel_ids"`
	IgnoredRoleIDs    []int64       `db:"ignored_role_ids"`
}

// DefaultGuildSettings returns the zero configuration for a guild
func DefaultGuildSettings(guildID int64) *GuildSettings {
	return &GuildSettings{
		GuildID:       guildID,
		SpamThreshold: 5,
		MuteDuration:  time.Minute,
	}
}
