package service

import (
	"context"
	"testing"

	"rumia/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMockedSettingsService() (*MockUnitOfWork, *MockGuildSettingsRepository, GuildSettingsService) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockSettingsRepo := new(MockGuildSettingsRepository)

	mockUoW.SetRepositories(new(MockUserRepository), mockSettingsRepo, new(MockWarningRepository))
	mockFactory.On("Create").Return(mockUoW)

	return mockUoW, mockSettingsRepo, NewGuildSettingsService(mockFactory)
}

func TestSetBannedWords_NilPreservesExistingList(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockSettingsRepo, svc := newMockedSettingsService()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	existing := models.DefaultGuildSettings(42)
	existing.BannedWords = []string{"spam", "scam"}
	mockSettingsRepo.On("Get", ctx, int64(42)).Return(existing, nil)
	mockSettingsRepo.On("Upsert", ctx, mock.MatchedBy(func(s *models.GuildSettings) bool {
		return s.AutomodEnabled && len(s.BannedWords) == 2
	})).Return(nil)

	require.NoError(t, svc.SetBannedWords(ctx, 42, true, nil))
	mockSettingsRepo.AssertExpectations(t)
}

func TestSetBannedWords_ReplacesList(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockSettingsRepo, svc := newMockedSettingsService()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSettingsRepo.On("Get", ctx, int64(42)).Return(models.DefaultGuildSettings(42), nil)
	mockSettingsRepo.On("Upsert", ctx, mock.MatchedBy(func(s *models.GuildSettings) bool {
		return assert.ObjectsAreEqual([]string{"bad"}, s.BannedWords)
	})).Return(nil)

	require.NoError(t, svc.SetBannedWords(ctx, 42, true, []string{"bad"}))
	mockSettingsRepo.AssertExpectations(t)
}

func TestSetLogChannel(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockSettingsRepo, svc := newMockedSettingsService()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockSettingsRepo.On("Get", ctx, int64(42)).Return(models.DefaultGuildSettings(42), nil)
	mockSettingsRepo.On("Upsert", ctx, mock.MatchedBy(func(s *models.GuildSettings) bool {
		return s.LogChannelID != nil && *s.LogChannelID == 777
	})).Return(nil)

	require.NoError(t, svc.SetLogChannel(ctx, 42, 777))
	mockSettingsRepo.AssertExpectations(t)
}
