package service

import (
	"context"
	"fmt"

	"rumia/models"
)

// guildSettingsService implements the GuildSettingsService interface
type guildSettingsService struct {
	uowFactory UnitOfWorkFactory
}

// NewGuildSettingsService creates a new guild settings service
func NewGuildSettingsService(uowFactory UnitOfWorkFactory) GuildSettingsService {
	return &guildSettingsService{
		uowFactory: uowFactory,
	}
}

// Get retrieves a guild's settings, falling back to defaults
func (s *guildSettingsService) Get(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	settings, err := uow.GuildSettingsRepository().Get(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return settings, nil
}

// mutate loads a guild's settings, applies fn, and upserts the result
func (s *guildSettingsService) mutate(ctx context.Context, guildID int64, fn func(*models.GuildSettings)) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := uow.GuildSettingsRepository().Get(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to get guild settings: %w", err)
	}

	fn(settings)

	if err := uow.GuildSettingsRepository().Upsert(ctx, settings); err != nil {
		return fmt.Errorf("failed to update guild settings: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SetLogChannel updates the moderation log channel for a guild
func (s *guildSettingsService) SetLogChannel(ctx context.Context, guildID, channelID int64) error {
	return s.mutate(ctx, guildID, func(settings *models.GuildSettings) {
		settings.LogChannelID = &channelID
	})
}

// SetBannedWords replaces the banned-word list and toggles the automod flag
func (s *guildSettingsService) SetBannedWords(ctx context.Context, guildID int64, enabled bool, words []string) error {
	return s.mutate(ctx, guildID, func(settings *models.GuildSettings) {
		settings.AutomodEnabled = enabled
		if words != nil {
			settings.BannedWords = words
		}
	})
}

// SetSpamFilter toggles the repetition/burst spam filter
func (s *guildSettingsService) SetSpamFilter(ctx context.Context, guildID int64, enabled bool) error {
	return s.mutate(ctx, guildID, func(settings *models.GuildSettings) {
		settings.SpamFilterEnabled = enabled
	})
}
