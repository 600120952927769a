package models

import "time"

// ModerationAction categorizes log entries in the warnings table
type ModerationAction string

const (
	ActionKick          ModerationAction = "kick"
	ActionBan           ModerationAction = "ban"
	ActionUnban         ModerationAction = "unban"
	ActionTimeout       ModerationAction = "timeout"
	ActionPurge         ModerationAction = "purge"
	ActionAutomodDelete ModerationAction = "automod_delete"
	ActionAutomodMute   ModerationAction = "automod_mute"
)

// Warning is a persisted moderation case
type Warning struct {
	ID          int64            `db:"id"`
	GuildID     int64            `db:"guild_id"`
	UserID      int64            `db:"user_id"`
	ModeratorID int64            `db:"moderator_id"`
	Action      ModerationAction `db:"action"`
	Reason      string           `db:"reason"`
	CreatedAt   time.Time        `db:"created_at"`
}
