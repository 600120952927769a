package service

import (
	"context"
	"errors"
	"testing"

	"rumia/events"
	"rumia/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockedModerationService() (*MockUnitOfWork, *MockWarningRepository, ModerationService) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockWarningRepo := new(MockWarningRepository)

	mockUoW.SetRepositories(new(MockUserRepository), new(MockGuildSettingsRepository), mockWarningRepo)
	mockFactory.On("Create").Return(mockUoW)

	return mockUoW, mockWarningRepo, NewModerationService(mockFactory)
}

func TestRecordAction_PersistsAndPublishes(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockWarningRepo, svc := newMockedModerationService()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	warning := &models.Warning{GuildID: 10, UserID: 20, Action: models.ActionKick, Reason: "spamming"}
	mockWarningRepo.On("Create", ctx, warning).Return(nil)

	require.NoError(t, svc.RecordAction(ctx, warning, "kicked for spamming", 0xf1c40f))

	require.Len(t, mockUoW.Events, 1)
	logEvent, ok := mockUoW.Events[0].(events.ModerationLogEvent)
	require.True(t, ok)
	assert.Equal(t, int64(10), logEvent.GuildID)
	assert.Equal(t, "kick", logEvent.Action)
	assert.Equal(t, "kicked for spamming", logEvent.Details)
}

func TestRecordAction_RepositoryFailure(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockWarningRepo, svc := newMockedModerationService()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	warning := &models.Warning{GuildID: 10, UserID: 20, Action: models.ActionBan}
	mockWarningRepo.On("Create", ctx, warning).Return(errors.New("connection lost"))

	err := svc.RecordAction(ctx, warning, "details", 0)
	assert.Error(t, err)
	mockUoW.AssertNotCalled(t, "Commit")
}
