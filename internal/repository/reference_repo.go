package repository

import (
	"context"
	"errors"
	"fmt"

	"removaltracker/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReferenceRepository serves departments and removal reasons.
type ReferenceRepository interface {
	ListDepartments(ctx context.Context) ([]model.Department, error)
	FindDepartment(ctx context.Context, id uuid.UUID) (*model.Department, error)
	FindOrCreateDepartment(ctx context.Context, dept *model.Department) error
	ListReasons(ctx context.Context) ([]model.RemovalReason, error)
	FindReason(ctx context.Context, id uuid.UUID) (*model.RemovalReason, error)
	FindOrCreateReason(ctx context.Context, reason *model.RemovalReason) error
}

type referenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) ListDepartments(ctx context.Context) ([]model.Department, error) {
	var depts []model.Department
	if err := GetDB(ctx, r.db).Order("name asc").Find(&depts).Error; err != nil {
		return nil, err
	}
	return depts, nil
}

func (r *referenceRepository) FindDepartment(ctx context.Context, id uuid.UUID) (*model.Department, error) {
	var dept model.Department
	err := GetDB(ctx, r.db).First(&dept, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load department: %w", err)
	}
	return &dept, nil
}

func (r *referenceRepository) FindOrCreateDepartment(ctx context.Context, dept *model.Department) error {
	return GetDB(ctx, r.db).Where("name = ?", dept.Name).FirstOrCreate(dept).Error
}

func (r *referenceRepository) ListReasons(ctx context.Context) ([]model.RemovalReason, error) {
	var reasons []model.RemovalReason
	if err := GetDB(ctx, r.db).Order("name asc").Find(&reasons).Error; err != nil {
		return nil, err
	}
	return reasons, nil
}

func (r *referenceRepository) FindReason(ctx context.Context, id uuid.UUID) (*model.RemovalReason, error) {
	var reason model.RemovalReason
	err := GetDB(ctx, r.db).First(&reason, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load removal reason: %w", err)
	}
	return &reason, nil
}

func (r *referenceRepository) FindOrCreateReason(ctx context.Context, reason *model.RemovalReason) error {
	return GetDB(ctx, r.db).
		Where("name = ?", reason.Name).
		Assign(map[string]interface{}{"allow_custom": reason.AllowCustom}).
		FirstOrCreate(reason).Error
}
