package testutil

import (
	"time"

	"rumia/models"
)

// CreateTestUser creates a user with a comfortable cash balance
func CreateTestUser(userID int64) *models.User {
	now := time.Now()
	return &models.User{
		UserID:    userID,
		Cash:      100_000,
		Job:       models.JobNeet,
		Level:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestUserWithCash creates a user with a specific cash balance
func CreateTestUserWithCash(userID, cash int64) *models.User {
	user := CreateTestUser(userID)
	user.Cash = cash
	return user
}

// CreateTestGuildSettings creates guild settings with automod fully enabled
func CreateTestGuildSettings(guildID int64) *models.GuildSettings {
	settings := models.DefaultGuildSettings(guildID)
	settings.AutomodEnabled = true
	settings.SpamFilterEnabled = true
	settings.BannedWords = []string{"spam"}
	return settings
}

// CreateTestWarning creates a moderation case
func CreateTestWarning(guildID, userID int64, action models.ModerationAction) *models.Warning {
	return &models.Warning{
		GuildID:     guildID,
		UserID:      userID,
		ModeratorID: 1,
		Action:      action,
		Reason:      "test case",
	}
}
