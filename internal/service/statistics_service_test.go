package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"removaltracker/internal/authz"
	"removaltracker/internal/model"
	"removaltracker/internal/repository"

	"github.com/google/uuid"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStatisticsRepository is a mock implementation of repository.StatisticsRepository
type MockStatisticsRepository struct {
	mock.Mock
}

var _ repository.StatisticsRepository = (*MockStatisticsRepository)(nil)

func (m *MockStatisticsRepository) CountByStatus(ctx context.Context, v authz.Visibility) ([]model.StatusCount, error) {
	args := m.Called(ctx, v)
	return args.Get(0).([]model.StatusCount), args.Error(1)
}

func (m *MockStatisticsRepository) DueReturns(ctx context.Context, v authz.Visibility, before time.Time, limit int) ([]model.RemovalDigest, error) {
	args := m.Called(ctx, v, before, limit)
	return args.Get(0).([]model.RemovalDigest), args.Error(1)
}

func (m *MockStatisticsRepository) RecentlyUpdated(ctx context.Context, v authz.Visibility, limit int) ([]model.RemovalDigest, error) {
	args := m.Called(ctx, v, limit)
	return args.Get(0).([]model.RemovalDigest), args.Error(1)
}

func TestStatisticsService_GetDashboard(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	clk := testclock.NewClock(now)
	security := authz.NewActor(uuid.New(), "Security Officer", []authz.RoleName{authz.RoleSecurity})
	visibility := authz.VisibilityFor(security)

	due := []model.RemovalDigest{{ID: uuid.New(), Status: model.StatusApproved, RemovalType: model.RemovalTypeReturnable}}

	repo := new(MockStatisticsRepository)
	repo.On("CountByStatus", mock.Anything, visibility).Return([]model.StatusCount{
		{Status: model.StatusApproved, Count: 3},
		{Status: model.StatusPendingSecurity, Count: 2},
	}, nil).Once()
	repo.On("DueReturns", mock.Anything, visibility, now.Add(7*24*time.Hour), 5).Return(due, nil).Once()
	repo.On("RecentlyUpdated", mock.Anything, visibility, 5).Return([]model.RemovalDigest(nil), nil).Once()

	res, err := NewStatisticsService(repo, clk).GetDashboard(ctx, security)
	require.NoError(t, err)
	assert.EqualValues(t, 5, res.Total)
	assert.EqualValues(t, 2, res.Pending)
	assert.Equal(t, due, res.DueReturns)
	assert.NotNil(t, res.RecentActivity)
	assert.Empty(t, res.RecentActivity)
	assert.Equal(t, now, res.GeneratedAt)
	repo.AssertExpectations(t)
}

func TestStatisticsService_GetDashboardNoVisibility(t *testing.T) {
	repo := new(MockStatisticsRepository)
	nobody := &authz.Actor{ID: uuid.New(), Permissions: map[authz.PermissionName]authz.Scope{}}

	res, err := NewStatisticsService(repo, nil).GetDashboard(context.Background(), nobody)
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Empty(t, res.StatusCounts)
	repo.AssertNotCalled(t, "CountByStatus", mock.Anything, mock.Anything)

	_, err = NewStatisticsService(repo, nil).GetDashboard(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestStatisticsService_GetDashboardRepositoryFailure(t *testing.T) {
	admin := authz.NewActor(uuid.New(), "System Administrator", []authz.RoleName{authz.RoleAdmin})
	repo := new(MockStatisticsRepository)
	repo.On("CountByStatus", mock.Anything, mock.Anything).Return([]model.StatusCount(nil), errors.New("db down"))

	_, err := NewStatisticsService(repo, nil).GetDashboard(context.Background(), admin)
	assert.Error(t, err)
}
