package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"webmail/internal/model"
)

// MockNotificationRepository is a mock implementation of NotificationRepository.
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) List(ctx context.Context) ([]model.Notification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CreateBatch(ctx context.Context, notifications []model.Notification) error {
	args := m.Called(ctx, notifications)
	return args.Error(0)
}

func TestSeedService_SeedDefaults(t *testing.T) {
	t.Run("empty database", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		notifications := new(MockNotificationRepository)
		svc := NewSeedService(new(MockUserRepository), categories, notifications, zap.NewNop())

		categories.On("List", mock.Anything).Return([]model.Category{}, nil)
		categories.On("Create", mock.Anything, mock.AnythingOfType("*model.Category")).Return(nil)
		notifications.On("List", mock.Anything).Return([]model.Notification{}, nil)
		notifications.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)

		result, err := svc.SeedDefaults(context.Background())
		require.NoError(t, err)
		assert.Equal(t, len(DefaultCategories), result.Categories)
		assert.Equal(t, len(DefaultNotifications), result.Notifications)
		categories.AssertNumberOfCalls(t, "Create", len(DefaultCategories))
	})

	t.Run("already seeded", func(t *testing.T) {
		categories := new(MockCategoryRepository)
		notifications := new(MockNotificationRepository)
		svc := NewSeedService(new(MockUserRepository), categories, notifications, zap.NewNop())

		existing := make([]model.Category, 0, len(DefaultCategories))
		for _, name := range DefaultCategories {
			existing = append(existing, model.Category{CategoryName: name})
		}
		categories.On("List", mock.Anything).Return(existing, nil)
		notifications.On("List", mock.Anything).Return([]model.Notification{{ID: 1}}, nil)

		result, err := svc.SeedDefaults(context.Background())
		require.NoError(t, err)
		assert.Equal(t, &SeedResult{}, result)
		categories.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		notifications.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})
}

func TestSeedService_EnsureAdmin(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewSeedService(users, new(MockCategoryRepository), new(MockNotificationRepository), zap.NewNop())
	admin := AdminAccount{Username: "admin", Email: "admin@example.com", Password: "secret123", City: "Yardley"}

	users.On("ExistsByUsernameOrEmail", mock.Anything, "admin", "admin@example.com").Return(false, nil).Once()
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.AppUser) bool {
		return u.IsAdmin() && u.EmailConfirmed && u.IsActive
	})).Return(nil).Once()

	created, err := svc.EnsureAdmin(context.Background(), admin)
	require.NoError(t, err)
	assert.True(t, created)

	users.On("ExistsByUsernameOrEmail", mock.Anything, "admin", "admin@example.com").Return(true, nil).Once()
	created, err = svc.EnsureAdmin(context.Background(), admin)
	require.NoError(t, err)
	assert.False(t, created)
	users.AssertExpectations(t)
}
