package service

import (
	"context"
	"fmt"
	"time"

	"removaltracker/internal/authz"
	"removaltracker/internal/model"
	"removaltracker/internal/repository"

	"github.com/juju/clock"
)

const (
	dueReturnWindow = 7 * 24 * time.Hour
	dashboardLimit  = 5
)

var pendingStatuses = map[string]bool{
	model.StatusPendingLevel2:        true,
	model.StatusPendingLevel3:        true,
	model.StatusPendingLevel4:        true,
	model.StatusPendingSecurity:      true,
	model.StatusPendingLevel2Recheck: true,
}

type StatisticsService interface {
	GetDashboard(ctx context.Context, actor *authz.Actor) (*model.DashboardResponse, error)
}

type statisticsService struct {
	repo  repository.StatisticsRepository
	clock clock.Clock
}

// NewStatisticsService builds the dashboard service. A nil clock falls back to the wall clock.
func NewStatisticsService(repo repository.StatisticsRepository, clk clock.Clock) StatisticsService {
	if clk == nil {
		clk = clock.WallClock
	}
	return &statisticsService{repo: repo, clock: clk}
}

// GetDashboard counts the visible removals per status and lists the
// returnable ones due back within a week plus the most recently touched.
func (s *statisticsService) GetDashboard(ctx context.Context, actor *authz.Actor) (*model.DashboardResponse, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	now := s.clock.Now()
	res := &model.DashboardResponse{
		StatusCounts:   []model.StatusCount{},
		DueReturns:     []model.RemovalDigest{},
		RecentActivity: []model.RemovalDigest{},
		GeneratedAt:    now,
	}

	visibility := authz.VisibilityFor(actor)
	if visibility.Empty() {
		return res, nil
	}

	counts, err := s.repo.CountByStatus(ctx, visibility)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	for _, c := range counts {
		res.Total += c.Count
		if pendingStatuses[c.Status] {
			res.Pending += c.Count
		}
	}
	res.StatusCounts = counts

	due, err := s.repo.DueReturns(ctx, visibility, now.Add(dueReturnWindow), dashboardLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	if due != nil {
		res.DueReturns = due
	}

	recent, err := s.repo.RecentlyUpdated(ctx, visibility, dashboardLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	if recent != nil {
		res.RecentActivity = recent
	}

	return res, nil
}
