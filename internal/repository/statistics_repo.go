package repository

import (
	"context"
	"fmt"
	"time"

	"removaltracker/internal/authz"
	"removaltracker/internal/model"

	"gorm.io/gorm"
)

// StatisticsRepository aggregates removals for the dashboard. Every query is
// restricted to the given visibility.
type StatisticsRepository interface {
	CountByStatus(ctx context.Context, v authz.Visibility) ([]model.StatusCount, error)
	DueReturns(ctx context.Context, v authz.Visibility, before time.Time, limit int) ([]model.RemovalDigest, error)
	RecentlyUpdated(ctx context.Context, v authz.Visibility, limit int) ([]model.RemovalDigest, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) CountByStatus(ctx context.Context, v authz.Visibility) ([]model.StatusCount, error) {
	var counts []model.StatusCount
	if err := GetDB(ctx, r.db).Model(&model.Removal{}).
		Scopes(visibleTo(v)).
		Select("status, COUNT(*) as count").
		Group("status").
		Order("status ASC").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count removals by status: %w", err)
	}
	return counts, nil
}

func (r *statisticsRepository) DueReturns(ctx context.Context, v authz.Visibility, before time.Time, limit int) ([]model.RemovalDigest, error) {
	var rows []model.RemovalDigest
	if err := r.digest(ctx, v).
		Where("status = ? AND removal_type = ? AND date_to IS NOT NULL AND date_to <= ?",
			model.StatusApproved, model.RemovalTypeReturnable, before).
		Order("date_to ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query due returns: %w", err)
	}
	return rows, nil
}

func (r *statisticsRepository) RecentlyUpdated(ctx context.Context, v authz.Visibility, limit int) ([]model.RemovalDigest, error) {
	var rows []model.RemovalDigest
	if err := r.digest(ctx, v).
		Order("updated_at DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query recent removals: %w", err)
	}
	return rows, nil
}

func (r *statisticsRepository) digest(ctx context.Context, v authz.Visibility) *gorm.DB {
	return GetDB(ctx, r.db).Model(&model.Removal{}).
		Scopes(visibleTo(v)).
		Select("id, status, removal_type, employee, date_to, updated_at")
}
