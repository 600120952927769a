package repository

import (
	"context"
	"fmt"

	"rumia/database"
	"rumia/models"
)

// WarningRepository implements the service.WarningRepository interface
type WarningRepository struct {
	q queryable
}

// NewWarningRepository creates a new warning repository
func NewWarningRepository(db *database.DB) *WarningRepository {
	return &WarningRepository{q: db.Pool}
}

// newWarningRepositoryWithTx creates a new warning repository with a transaction
func newWarningRepositoryWithTx(tx queryable) *WarningRepository {
	return &WarningRepository{q: tx}
}

// Create persists a moderation case
func (r *WarningRepository) Create(ctx context.Context, warning *models.Warning) error {
	query := `
		INSERT INTO warnings (guild_id, user_id, moderator_id, action, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		warning.GuildID,
		warning.UserID,
		warning.ModeratorID,
		warning.Action,
		warning.Reason,
	).Scan(&warning.ID, &warning.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create warning for user %d: %w", warning.UserID, err)
	}

	return nil
}

// ListByUser returns a user's moderation cases in a guild, newest first
func (r *WarningRepository) ListByUser(ctx context.Context, guildID, userID int64) ([]*models.Warning, error) {
	query := `
		SELECT id, guild_id, user_id, moderator_id, action, reason, created_at
		FROM warnings
		WHERE guild_id = $1 AND user_id = $2
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list warnings for user %d: %w", userID, err)
	}
	defer rows.Close()

	var warnings []*models.Warning
	for rows.Next() {
		var w models.Warning
		err := rows.Scan(&w.ID, &w.GuildID, &w.UserID, &w.ModeratorID, &w.Action, &w.Reason, &w.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan warning: %w", err)
		}
		warnings = append(warnings, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate warnings: %w", err)
	}

	return warnings, nil
}
