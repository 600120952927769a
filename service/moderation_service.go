package service

import (
	"context"
	"fmt"

	"rumia/events"
	"rumia/models"
)

// moderationService implements the ModerationService interface
type moderationService struct {
	uowFactory UnitOfWorkFactory
}

// NewModerationService creates a new moderation service
func NewModerationService(uowFactory UnitOfWorkFactory) ModerationService {
	return &moderationService{
		uowFactory: uowFactory,
	}
}

// RecordAction persists a moderation case and, once committed, emits a log
// event for the guild's log channel
func (s *moderationService) RecordAction(ctx context.Context, warning *models.Warning, details string, color int) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := uow.WarningRepository().Create(ctx, warning); err != nil {
		return fmt.Errorf("failed to record moderation case: %w", err)
	}

	uow.Publish(events.ModerationLogEvent{
		GuildID: warning.GuildID,
		Action:  string(warning.Action),
		Details: details,
		Color:   color,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListWarnings returns a user's moderation cases in a guild
func (s *moderationService) ListWarnings(ctx context.Context, guildID, userID int64) ([]*models.Warning, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	warnings, err := uow.WarningRepository().ListByUser(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list warnings: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return warnings, nil
}
