package repository

import (
	"context"
	"testing"

	"rumia/models"
	"rumia/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarningRepository_CreateAndList(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewWarningRepository(testDB.DB)
	ctx := context.Background()

	first := testutil.CreateTestWarning(10, 20, models.ActionTimeout)
	require.NoError(t, repo.Create(ctx, first))
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := testutil.CreateTestWarning(10, 20, models.ActionAutomodMute)
	require.NoError(t, repo.Create(ctx, second))

	// Different user and guild must not bleed into the listing
	require.NoError(t, repo.Create(ctx, testutil.CreateTestWarning(10, 99, models.ActionKick)))
	require.NoError(t, repo.Create(ctx, testutil.CreateTestWarning(11, 20, models.ActionBan)))

	warnings, err := repo.ListByUser(ctx, 10, 20)
	require.NoError(t, err)
	require.Len(t, warnings, 2)
	assert.Equal(t, second.ID, warnings[0].ID, "newest first")
	assert.Equal(t, first.ID, warnings[1].ID)
}
