package service

import (
	"context"

	"rumia/events"
	"rumia/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Get(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetOrCreate(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) AdjustBalances(ctx context.Context, userID int64, cashDelta, bankDelta, debtDelta int64) error {
	args := m.Called(ctx, userID, cashDelta, bankDelta, debtDelta)
	return args.Error(0)
}

func (m *MockUserRepository) DeductCash(ctx context.Context, userID int64, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockUserRepository) Borrow(ctx context.Context, userID int64, amount, debtLimit int64) error {
	args := m.Called(ctx, userID, amount, debtLimit)
	return args.Error(0)
}

func (m *MockUserRepository) RepayDebt(ctx context.Context, userID int64, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockUserRepository) SetJob(ctx context.Context, userID int64, job string) error {
	args := m.Called(ctx, userID, job)
	return args.Error(0)
}

func (m *MockUserRepository) AddXP(ctx context.Context, userID int64, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockUserRepository) TopByNetWorth(ctx context.Context, limit int) ([]*models.RankedUser, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RankedUser), args.Error(1)
}

// MockGuildSettingsRepository is a mock implementation of GuildSettingsRepository
type MockGuildSettingsRepository struct {
	mock.Mock
}

func (m *MockGuildSettingsRepository) Get(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsRepository) Upsert(ctx context.Context, settings *models.GuildSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockWarningRepository is a mock implementation of WarningRepository
type MockWarningRepository struct {
	mock.Mock
}

func (m *MockWarningRepository) Create(ctx context.Context, warning *models.Warning) error {
	args := m.Called(ctx, warning)
	return args.Error(0)
}

func (m *MockWarningRepository) ListByUser(ctx context.Context, guildID, userID int64) ([]*models.Warning, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Warning), args.Error(1)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// injected with SetRepositories; published events are captured in Events.
type MockUnitOfWork struct {
	mock.Mock

	userRepo     UserRepository
	settingsRepo GuildSettingsRepository
	warningRepo  WarningRepository

	Events []events.Event
}

func (m *MockUnitOfWork) SetRepositories(userRepo UserRepository, settingsRepo GuildSettingsRepository, warningRepo WarningRepository) {
	m.userRepo = userRepo
	m.settingsRepo = settingsRepo
	m.warningRepo = warningRepo
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) GuildSettingsRepository() GuildSettingsRepository {
	return m.settingsRepo
}

func (m *MockUnitOfWork) WarningRepository() WarningRepository {
	return m.warningRepo
}

func (m *MockUnitOfWork) Publish(event events.Event) {
	m.Events = append(m.Events, event)
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
