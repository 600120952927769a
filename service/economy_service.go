package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"rumia/config"
	"rumia/events"
	"rumia/models"
)

// User-facing validation failures, reported inline and never logged
var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrSelfTransfer  = errors.New("cannot send money to yourself")
	ErrUnknownJob    = errors.New("no such job")
	ErrNoDebt        = errors.New("nothing to repay")
	ErrMinimumBet    = errors.New("bet is below the table minimum")
)

// WorkResult is the outcome of a work shift
type WorkResult struct {
	Job      models.Job
	Earnings int64
	NewCash  int64
	XPGained int64
}

// SlotResult is the outcome of a slot spin
type SlotResult struct {
	Reels   [3]string
	Payout  int64
	NewCash int64
}

// Won reports whether the spin paid anything
func (r *SlotResult) Won() bool {
	return r.Payout > 0
}

// Slot reel symbols and their draw weights. The jackpot symbol is rare.
var (
	slotSymbols = []string{"🍒", "🍋", "🍇", "🍉", "🔔", "💎", "7️⃣"}
	slotWeights = []int{20, 20, 20, 15, 15, 8, 2}
)

const workXP = 10

type economyService struct {
	uowFactory UnitOfWorkFactory
}

// NewEconomyService creates a new economy service
func NewEconomyService(uowFactory UnitOfWorkFactory) EconomyService {
	return &economyService{
		uowFactory: uowFactory,
	}
}

// GetOrCreateUser loads an account, creating it with zero defaults on first reference
func (s *economyService) GetOrCreateUser(ctx context.Context, userID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	user, err := uow.UserRepository().GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// workEarnings computes a shift's pay for a job. A jobless shift pays a flat
// 100-500; otherwise pay is salary scaled by a 50%-150% variance and the
// job multiplier.
func workEarnings(job models.Job, rng *rand.Rand) int64 {
	if job.Salary == 0 {
		return 100 + rng.Int63n(401)
	}
	variance := 0.5 + rng.Float64()
	return int64(float64(job.Salary) * variance * job.Multiplier)
}

// Work pays a salary into cash and grants xp
func (s *economyService) Work(ctx context.Context, userID int64) (*WorkResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	job := models.LookupJob(user.Job)
	earnings := workEarnings(job, rng())

	if err := uow.UserRepository().AdjustBalances(ctx, userID, earnings, 0, 0); err != nil {
		return nil, fmt.Errorf("failed to pay salary: %w", err)
	}
	if err := uow.UserRepository().AddXP(ctx, userID, workXP); err != nil {
		return nil, fmt.Errorf("failed to grant xp: %w", err)
	}

	uow.Publish(events.BalanceChangeEvent{UserID: userID, CashDelta: earnings, Reason: "work"})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &WorkResult{
		Job:      job,
		Earnings: earnings,
		NewCash:  user.Cash + earnings,
		XPGained: workXP,
	}, nil
}

// spinReels draws three weighted symbols
func spinReels(rng *rand.Rand) [3]string {
	total := 0
	for _, w := range slotWeights {
		total += w
	}

	var reels [3]string
	for i := range reels {
		roll := rng.Intn(total)
		for j, w := range slotWeights {
			if roll < w {
				reels[i] = slotSymbols[j]
				break
			}
			roll -= w
		}
	}
	return reels
}

// evaluateSpin returns the payout for a spin: triple sevens pay 77x, triple
// diamonds 50x, any other triple 10x, any pair 1.5x rounded down, else zero.
func evaluateSpin(reels [3]string, bet int64) int64 {
	switch {
	case reels[0] == reels[1] && reels[1] == reels[2]:
		switch reels[0] {
		case "7️⃣":
			return bet * 77
		case "💎":
			return bet * 50
		default:
			return bet * 10
		}
	case reels[0] == reels[1] || reels[1] == reels[2] || reels[0] == reels[2]:
		return bet * 3 / 2
	default:
		return 0
	}
}

// PlaySlot spins the slot machine. The stake is taken up front, so a spin
// the player cannot cover is rejected before any balance changes; a winning
// spin then returns the stake plus the payout.
func (s *economyService) PlaySlot(ctx context.Context, userID int64, bet int64) (*SlotResult, error) {
	cfg := config.Get()
	if bet < cfg.SlotMinimumBet {
		return nil, fmt.Errorf("%w: minimum is %d", ErrMinimumBet, cfg.SlotMinimumBet)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Conditional deduct: fails instead of going negative, which also
	// covers a concurrent spin draining the balance since the snapshot
	if err := uow.UserRepository().DeductCash(ctx, userID, bet); err != nil {
		return nil, err
	}

	reels := spinReels(rng())
	payout := evaluateSpin(reels, bet)

	newCash := user.Cash - bet
	if payout > 0 {
		if err := uow.UserRepository().AdjustBalances(ctx, userID, bet+payout, 0, 0); err != nil {
			return nil, fmt.Errorf("failed to credit payout: %w", err)
		}
		newCash += bet + payout
		uow.Publish(events.BalanceChangeEvent{UserID: userID, CashDelta: payout, Reason: "slot_win"})
	} else {
		uow.Publish(events.BalanceChangeEvent{UserID: userID, CashDelta: -bet, Reason: "slot_loss"})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &SlotResult{
		Reels:   reels,
		Payout:  payout,
		NewCash: newCash,
	}, nil
}

// Send transfers cash between two users inside one transaction
func (s *economyService) Send(ctx context.Context, fromUserID, toUserID, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if fromUserID == toUserID {
		return ErrSelfTransfer
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := uow.UserRepository().GetOrCreate(ctx, toUserID); err != nil {
		return fmt.Errorf("failed to ensure recipient account: %w", err)
	}

	if err := uow.UserRepository().DeductCash(ctx, fromUserID, amount); err != nil {
		return err
	}
	if err := uow.UserRepository().AdjustBalances(ctx, toUserID, amount, 0, 0); err != nil {
		return fmt.Errorf("failed to credit recipient: %w", err)
	}

	uow.Publish(events.BalanceChangeEvent{UserID: fromUserID, CashDelta: -amount, Reason: "transfer_out"})
	uow.Publish(events.BalanceChangeEvent{UserID: toUserID, CashDelta: amount, Reason: "transfer_in"})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Borrow takes out a loan, bounded by the configured debt ceiling
func (s *economyService) Borrow(ctx context.Context, userID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetOrCreate(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get user: %w", err)
	}

	if err := uow.UserRepository().Borrow(ctx, userID, amount, config.Get().DebtLimit); err != nil {
		return 0, err
	}

	uow.Publish(events.BalanceChangeEvent{UserID: userID, CashDelta: amount, DebtDelta: amount, Reason: "borrow"})

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user.Debt + amount, nil
}

// Repay pays down debt from cash, clamped to the outstanding amount
func (s *economyService) Repay(ctx context.Context, userID int64, amount int64) (int64, int64, error) {
	if amount <= 0 {
		return 0, 0, ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetOrCreate(ctx, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Debt <= 0 {
		return 0, 0, ErrNoDebt
	}

	repaid := min(amount, user.Debt)
	if err := uow.UserRepository().RepayDebt(ctx, userID, repaid); err != nil {
		return 0, 0, err
	}

	uow.Publish(events.BalanceChangeEvent{UserID: userID, CashDelta: -repaid, DebtDelta: -repaid, Reason: "repay"})

	if err := uow.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return repaid, user.Debt - repaid, nil
}

// Ranking returns the top accounts by net worth
func (s *economyService) Ranking(ctx context.Context, limit int) ([]*models.RankedUser, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ranked, err := uow.UserRepository().TopByNetWorth(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ranking: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return ranked, nil
}

// ChangeJob switches a user's job, charging the job's one-time cost
func (s *economyService) ChangeJob(ctx context.Context, userID int64, jobName string) (*models.Job, error) {
	job, ok := models.Jobs[jobName]
	if !ok {
		return nil, ErrUnknownJob
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := uow.UserRepository().GetOrCreate(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if job.Cost > 0 {
		if err := uow.UserRepository().DeductCash(ctx, userID, job.Cost); err != nil {
			return nil, err
		}
	}
	if err := uow.UserRepository().SetJob(ctx, userID, job.Name); err != nil {
		return nil, fmt.Errorf("failed to set job: %w", err)
	}

	if job.Cost > 0 {
		uow.Publish(events.BalanceChangeEvent{UserID: userID, CashDelta: -job.Cost, Reason: "job_change"})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &job, nil
}

// Award credits a game reward to a user's cash
func (s *economyService) Award(ctx context.Context, userID int64, amount int64, reason string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := uow.UserRepository().GetOrCreate(ctx, userID); err != nil {
		return fmt.Errorf("failed to ensure account: %w", err)
	}
	if err := uow.UserRepository().AdjustBalances(ctx, userID, amount, 0, 0); err != nil {
		return fmt.Errorf("failed to credit reward: %w", err)
	}

	uow.Publish(events.BalanceChangeEvent{UserID: userID, CashDelta: amount, Reason: reason})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
