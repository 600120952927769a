package repository

import (
	"context"
	"sync"
	"testing"

	"rumia/models"
	"rumia/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetOrCreate(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("creates with zero defaults", func(t *testing.T) {
		user, err := repo.GetOrCreate(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(100), user.UserID)
		assert.Zero(t, user.Cash)
		assert.Zero(t, user.Bank)
		assert.Zero(t, user.Debt)
		assert.Equal(t, models.JobNeet, user.Job)
	})

	t.Run("returns the existing row", func(t *testing.T) {
		require.NoError(t, repo.AdjustBalances(ctx, 100, 500, 0, 0))

		user, err := repo.GetOrCreate(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(500), user.Cash)
	})

	t.Run("Get returns nil for unknown user", func(t *testing.T) {
		user, err := repo.Get(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestUserRepository_AdjustBalances_Concurrent(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, 200)
	require.NoError(t, err)

	// Increments are single atomic statements, so none may be lost.
	const workers = 20
	var wg sync.WaitGroup
	for n := 0; n < workers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.AdjustBalances(ctx, 200, 10, 0, 0))
		}()
	}
	wg.Wait()

	user, err := repo.Get(ctx, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(workers*10), user.Cash)
}

func TestUserRepository_DeductCash(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, 300)
	require.NoError(t, err)
	require.NoError(t, repo.AdjustBalances(ctx, 300, 1000, 0, 0))

	t.Run("deducts when covered", func(t *testing.T) {
		require.NoError(t, repo.DeductCash(ctx, 300, 600))
		user, err := repo.Get(ctx, 300)
		require.NoError(t, err)
		assert.Equal(t, int64(400), user.Cash)
	})

	t.Run("refuses to go negative", func(t *testing.T) {
		err := repo.DeductCash(ctx, 300, 500)
		assert.ErrorIs(t, err, ErrInsufficientFunds)

		user, getErr := repo.Get(ctx, 300)
		require.NoError(t, getErr)
		assert.Equal(t, int64(400), user.Cash, "failed deduct must not change the balance")
	})

	t.Run("unknown user", func(t *testing.T) {
		assert.ErrorIs(t, repo.DeductCash(ctx, 999, 1), ErrUserNotFound)
	})

	t.Run("only one concurrent deduct of the full balance wins", func(t *testing.T) {
		_, err := repo.GetOrCreate(ctx, 301)
		require.NoError(t, err)
		require.NoError(t, repo.AdjustBalances(ctx, 301, 100, 0, 0))

		var wg sync.WaitGroup
		results := make(chan error, 10)
		for n := 0; n < 10; n++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- repo.DeductCash(ctx, 301, 100)
			}()
		}
		wg.Wait()
		close(results)

		succeeded := 0
		for err := range results {
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, ErrInsufficientFunds)
			}
		}
		assert.Equal(t, 1, succeeded)

		user, err := repo.Get(ctx, 301)
		require.NoError(t, err)
		assert.Zero(t, user.Cash)
	})
}

func TestUserRepository_Borrow(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, 400)
	require.NoError(t, err)

	t.Run("credits cash and debt together", func(t *testing.T) {
		require.NoError(t, repo.Borrow(ctx, 400, 5000, 10_000))

		user, err := repo.Get(ctx, 400)
		require.NoError(t, err)
		assert.Equal(t, int64(5000), user.Cash)
		assert.Equal(t, int64(5000), user.Debt)
	})

	t.Run("rejects borrowing past the ceiling", func(t *testing.T) {
		err := repo.Borrow(ctx, 400, 5001, 10_000)
		assert.ErrorIs(t, err, ErrDebtLimitExceeded)

		user, getErr := repo.Get(ctx, 400)
		require.NoError(t, getErr)
		assert.Equal(t, int64(5000), user.Debt)
	})

	t.Run("allows borrowing exactly to the ceiling", func(t *testing.T) {
		require.NoError(t, repo.Borrow(ctx, 400, 5000, 10_000))

		user, err := repo.Get(ctx, 400)
		require.NoError(t, err)
		assert.Equal(t, int64(10_000), user.Debt)
	})
}

func TestUserRepository_RepayDebt(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, 500)
	require.NoError(t, err)
	require.NoError(t, repo.Borrow(ctx, 500, 3000, 10_000))

	t.Run("pays down from cash", func(t *testing.T) {
		require.NoError(t, repo.RepayDebt(ctx, 500, 2000))

		user, err := repo.Get(ctx, 500)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), user.Cash)
		assert.Equal(t, int64(1000), user.Debt)
	})

	t.Run("refuses when cash cannot cover", func(t *testing.T) {
		err := repo.RepayDebt(ctx, 500, 1001)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
	})
}

func TestUserRepository_AddXP(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, 600)
	require.NoError(t, err)

	require.NoError(t, repo.AddXP(ctx, 600, 95))
	user, err := repo.Get(ctx, 600)
	require.NoError(t, err)
	assert.Equal(t, int64(95), user.XP)
	assert.Equal(t, int64(1), user.Level)

	require.NoError(t, repo.AddXP(ctx, 600, 10))
	user, err = repo.Get(ctx, 600)
	require.NoError(t, err)
	assert.Equal(t, int64(105), user.XP)
	assert.Equal(t, int64(2), user.Level, "crossing 100 xp levels up")
}

func TestUserRepository_SetJob(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, 700)
	require.NoError(t, err)

	require.NoError(t, repo.SetJob(ctx, 700, "エンジニア"))
	user, err := repo.Get(ctx, 700)
	require.NoError(t, err)
	assert.Equal(t, "エンジニア", user.Job)

	assert.ErrorIs(t, repo.SetJob(ctx, 999, "医者"), ErrUserNotFound)
}

func TestUserRepository_TopByNetWorth(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	// Net worths: 800 -> 1000, 801 -> 5000, 802 -> -2000 (debt heavy)
	for _, seed := range []struct {
		id               int64
		cash, bank, debt int64
	}{
		{800, 1000, 0, 0},
		{801, 2000, 3000, 0},
		{802, 1000, 0, 3000},
	} {
		_, err := repo.GetOrCreate(ctx, seed.id)
		require.NoError(t, err)
		require.NoError(t, repo.AdjustBalances(ctx, seed.id, seed.cash, seed.bank, seed.debt))
	}

	ranked, err := repo.TopByNetWorth(ctx, 2)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, int64(801), ranked[0].UserID)
	assert.Equal(t, int64(5000), ranked[0].NetWorth)
	assert.Equal(t, int64(800), ranked[1].UserID)
}
