package service

import (
	"context"

	"rumia/events"
	"rumia/models"
)

// UserRepository defines the interface for account data access
type UserRepository interface {
	// Get retrieves a user by ID, nil when absent
	Get(ctx context.Context, userID int64) (*models.User, error)

	// GetOrCreate retrieves a user, lazily creating the account with zero defaults
	GetOrCreate(ctx context.Context, userID int64) (*models.User, error)

	// AdjustBalances applies cash/bank/debt deltas as one atomic increment
	AdjustBalances(ctx context.Context, userID int64, cashDelta, bankDelta, debtDelta int64) error

	// DeductCash deducts cash, failing when the balance would go negative
	DeductCash(ctx context.Context, userID int64, amount int64) error

	// Borrow increments cash and debt together, enforcing the debt ceiling
	Borrow(ctx context.Context, userID int64, amount, debtLimit int64) error

	// RepayDebt decrements cash and debt together, keeping both non-negative
	RepayDebt(ctx context.Context, userID int64, amount int64) error

	// SetJob updates a user's job
	SetJob(ctx context.Context, userID int64, job string) error

	// AddXP grants experience and recomputes the level
	AddXP(ctx context.Context, userID int64, amount int64) error

	// TopByNetWorth returns the ranking ordered by cash + bank - debt
	TopByNetWorth(ctx context.Context, limit int) ([]*models.RankedUser, error)
}

// GuildSettingsRepository defines the interface for guild configuration access
type GuildSettingsRepository interface {
	// Get returns the stored settings for a guild, or defaults when absent
	Get(ctx context.Context, guildID int64) (*models.GuildSettings, error)

	// Upsert inserts or replaces a guild's settings row
	Upsert(ctx context.Context, settings *models.GuildSettings) error
}

// WarningRepository defines the interface for moderation case access
type WarningRepository interface {
	// Create persists a moderation case
	Create(ctx context.Context, warning *models.Warning) error

	// ListByUser returns a user's cases in a guild, newest first
	ListByUser(ctx context.Context, guildID, userID int64) ([]*models.Warning, error)
}

// UnitOfWork bundles repositories sharing one transaction. Events published
// through it are held until Commit and dropped on Rollback.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() UserRepository
	GuildSettingsRepository() GuildSettingsRepository
	WarningRepository() WarningRepository

	Publish(event events.Event)
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// EconomyService exposes the ledger-backed economy operations
type EconomyService interface {
	GetOrCreateUser(ctx context.Context, userID int64) (*models.User, error)
	Work(ctx context.Context, userID int64) (*WorkResult, error)
	PlaySlot(ctx context.Context, userID int64, bet int64) (*SlotResult, error)
	Send(ctx context.Context, fromUserID, toUserID, amount int64) error
	Borrow(ctx context.Context, userID int64, amount int64) (newDebt int64, err error)
	Repay(ctx context.Context, userID int64, amount int64) (repaid, remaining int64, err error)
	Ranking(ctx context.Context, limit int) ([]*models.RankedUser, error)
	ChangeJob(ctx context.Context, userID int64, jobName string) (*models.Job, error)
	Award(ctx context.Context, userID int64, amount int64, reason string) error
}

// GuildSettingsService exposes guild configuration operations
type GuildSettingsService interface {
	Get(ctx context.Context, guildID int64) (*models.GuildSettings, error)
	SetLogChannel(ctx context.Context, guildID, channelID int64) error
	SetBannedWords(ctx context.Context, guildID int64, enabled bool, words []string) error
	SetSpamFilter(ctx context.Context, guildID int64, enabled bool) error
}

// ModerationService records moderation cases and fans them out as log events
type ModerationService interface {
	RecordAction(ctx context.Context, warning *models.Warning, details string, color int) error
	ListWarnings(ctx context.Context, guildID, userID int64) ([]*models.Warning, error)
}
