package repository

import (
	"context"
	"fmt"

	"rumia/database"
	"rumia/models"

	"github.com/jackc/pgx/v5"
)

const userColumns = `user_id, cash, bank, debt, job, xp, level, created_at, updated_at`

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.UserID,
		&user.Cash,
		&user.Bank,
		&user.Debt,
		&user.Job,
		&user.XP,
		&user.Level,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Get retrieves a user by ID, returning nil when the account does not exist
func (r *UserRepository) Get(ctx context.Context, userID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	return user, nil
}

// GetOrCreate retrieves a user, lazily creating the account with zero defaults.
// The upsert makes concurrent first references safe.
func (r *UserRepository) GetOrCreate(ctx context.Context, userID int64) (*models.User, error) {
	query := `
		INSERT INTO users (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user %d: %w", userID, err)
	}

	return user, nil
}

// AdjustBalances applies cash/bank/debt deltas as a single atomic increment.
// The account is created first if absent. Callers are responsible for keeping
// cash and bank non-negative; conditional variants below enforce it in SQL.
func (r *UserRepository) AdjustBalances(ctx context.Context, userID int64, cashDelta, bankDelta, debtDelta int64) error {
	query := `
		INSERT INTO users (user_id, cash, bank, debt)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET cash = users.cash + $2,
		    bank = users.bank + $3,
		    debt = users.debt + $4,
		    updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, userID, cashDelta, bankDelta, debtDelta); err != nil {
		return fmt.Errorf("failed to adjust balances for user %d: %w", userID, err)
	}

	return nil
}

// DeductCash deducts cash atomically, failing with ErrInsufficientFunds when
// the account holds less than amount at the moment of the update
func (r *UserRepository) DeductCash(ctx context.Context, userID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET cash = cash - $1, updated_at = NOW()
		WHERE user_id = $2 AND cash >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to deduct cash for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		// Distinguish a missing account from an underfunded one
		user, err := r.Get(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if user == nil {
			return ErrUserNotFound
		}
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, user.Cash, amount)
	}

	return nil
}

// Borrow adds amount to both cash and debt, failing with ErrDebtLimitExceeded
// when the resulting debt would pass the ceiling. The ceiling is enforced in
// the UPDATE itself so concurrent borrows cannot overshoot it.
func (r *UserRepository) Borrow(ctx context.Context, userID int64, amount, debtLimit int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET cash = cash + $1, debt = debt + $1, updated_at = NOW()
		WHERE user_id = $2 AND debt + $1 <= $3
	`

	result, err := r.q.Exec(ctx, query, amount, userID, debtLimit)
	if err != nil {
		return fmt.Errorf("failed to borrow for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		user, err := r.Get(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if user == nil {
			return ErrUserNotFound
		}
		return fmt.Errorf("%w: debt %d, requested %d, limit %d", ErrDebtLimitExceeded, user.Debt, amount, debtLimit)
	}

	return nil
}

// RepayDebt reduces cash and debt by amount. The guard keeps both cash and
// debt non-negative under concurrent repayments; callers clamp amount to the
// outstanding debt they last observed.
func (r *UserRepository) RepayDebt(ctx context.Context, userID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET cash = cash - $1, debt = debt - $1, updated_at = NOW()
		WHERE user_id = $2 AND cash >= $1 AND debt >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to repay debt for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		user, err := r.Get(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if user == nil {
			return ErrUserNotFound
		}
		return fmt.Errorf("%w: have %d cash / %d debt, tried to repay %d", ErrInsufficientFunds, user.Cash, user.Debt, amount)
	}

	return nil
}

// SetJob updates a user's job
func (r *UserRepository) SetJob(ctx context.Context, userID int64, job string) error {
	query := `
		UPDATE users
		SET job = $1, updated_at = NOW()
		WHERE user_id = $2
	`

	result, err := r.q.Exec(ctx, query, job, userID)
	if err != nil {
		return fmt.Errorf("failed to set job for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// AddXP grants experience, leveling up every 100 xp
func (r *UserRepository) AddXP(ctx context.Context, userID int64, amount int64) error {
	query := `
		UPDATE users
		SET xp = xp + $1, level = 1 + (xp + $1) / 100, updated_at = NOW()
		WHERE user_id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to add xp for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// TopByNetWorth returns up to limit users ordered by cash + bank - debt
func (r *UserRepository) TopByNetWorth(ctx context.Context, limit int) ([]*models.RankedUser, error) {
	query := `
		SELECT user_id, (cash + bank - debt) AS net_worth
		FROM users
		ORDER BY net_worth DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get net worth ranking: %w", err)
	}
	defer rows.Close()

	var ranked []*models.RankedUser
	for rows.Next() {
		var ru models.RankedUser
		if err := rows.Scan(&ru.UserID, &ru.NetWorth); err != nil {
			return nil, fmt.Errorf("failed to scan ranking row: %w", err)
		}
		ranked = append(ranked, &ru)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ranking rows: %w", err)
	}

	return ranked, nil
}
