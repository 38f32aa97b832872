package repository

import (
	"context"
	"errors"
	"fmt"

	"removaltracker/internal/authz"
	"removaltracker/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RemovalFilter narrows a listing. Visibility is always applied.
type RemovalFilter struct {
	Visibility authz.Visibility
	Status     string
	Page       int
	Limit      int
}

// RemovalRepository persists removal aggregates: the removal row together
// with its items, approvals, return record and extension requests.
type RemovalRepository interface {
	Create(ctx context.Context, removal *model.Removal) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Removal, error)
	// Update writes the aggregate if its Version still matches the stored one
	// and bumps Version on success. Approvals and the return record are only
	// ever inserted.
	Update(ctx context.Context, removal *model.Removal) error
	List(ctx context.Context, filter RemovalFilter) ([]model.Removal, int64, error)
}

type removalRepository struct {
	db *gorm.DB
}

func NewRemovalRepository(db *gorm.DB) RemovalRepository {
	return &removalRepository{db: db}
}

func (r *removalRepository) Create(ctx context.Context, removal *model.Removal) error {
	if err := GetDB(ctx, r.db).Create(removal).Error; err != nil {
		return fmt.Errorf("failed to create removal: %w", err)
	}
	return nil
}

func (r *removalRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Removal, error) {
	var removal model.Removal
	err := withAggregate(GetDB(ctx, r.db)).First(&removal, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load removal: %w", err)
	}
	return &removal, nil
}

func (r *removalRepository) Update(ctx context.Context, removal *model.Removal) error {
	db := GetDB(ctx, r.db)

	res := db.Model(&model.Removal{}).
		Where("id = ? AND version = ?", removal.ID, removal.Version).
		Updates(map[string]interface{}{
			"removal_type":     removal.RemovalType,
			"date_from":        removal.DateFrom,
			"date_to":          removal.DateTo,
			"employee":         removal.Employee,
			"department_id":    removal.DepartmentID,
			"status":           removal.Status,
			"rejection_reason": removal.RejectionReason,
			"version":          gorm.Expr("version + 1"),
			"updated_at":       removal.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update removal: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	removal.Version++

	// Items are owned wholesale by the removal: replace them.
	if err := db.Where("removal_id = ?", removal.ID).Delete(&model.RemovalItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear removal items: %w", err)
	}
	if len(removal.Items) > 0 {
		for i := range removal.Items {
			removal.Items[i].RemovalID = removal.ID
			removal.Items[i].Position = i
		}
		if err := db.Create(&removal.Items).Error; err != nil {
			return fmt.Errorf("failed to write removal items: %w", err)
		}
	}

	if len(removal.Approvals) > 0 {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&removal.Approvals).Error; err != nil {
			return fmt.Errorf("failed to append approvals: %w", err)
		}
	}

	if removal.ReturnRecord != nil {
		removal.ReturnRecord.RemovalID = removal.ID
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(removal.ReturnRecord).Error; err != nil {
			return fmt.Errorf("failed to write return record: %w", err)
		}
	}

	if len(removal.ExtensionRequests) > 0 {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "recheck_by_id", "recheck_status", "recheck_at"}),
		}).Create(&removal.ExtensionRequests).Error
		if err != nil {
			return fmt.Errorf("failed to write extension requests: %w", err)
		}
	}

	return nil
}

func (r *removalRepository) List(ctx context.Context, filter RemovalFilter) ([]model.Removal, int64, error) {
	var removals []model.Removal
	var total int64

	db := GetDB(ctx, r.db)
	filtered := func() *gorm.DB {
		query := db.Model(&model.Removal{}).Scopes(visibleTo(filter.Visibility))
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		return query
	}

	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count removals: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := withAggregate(filtered()).
		Order("created_at DESC").
		Offset(offset).
		Limit(filter.Limit).
		Find(&removals).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch removals: %w", err)
	}

	return removals, total, nil
}

func withAggregate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Requester").
		Preload("Department").
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Preload("Approvals", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		Preload("ReturnRecord").
		Preload("ExtensionRequests", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") })
}

// visibleTo turns a visibility filter into one grouped OR condition.
func visibleTo(v authz.Visibility) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if v.All {
			return tx
		}
		if v.Empty() {
			return tx.Where("1 = 0")
		}

		group := tx.Session(&gorm.Session{NewDB: true})
		first := true
		or := func(query string, args ...interface{}) {
			if first {
				group = group.Where(query, args...)
				first = false
				return
			}
			group = group.Or(query, args...)
		}

		if v.OwnerID != nil {
			or("requester_id = ?", *v.OwnerID)
		}
		if len(v.DepartmentIDs) > 0 {
			or("department_id IN ?", v.DepartmentIDs)
		}
		if len(v.Statuses) > 0 {
			or("status IN ?", v.Statuses)
		}
		if v.ApprovedReturnable {
			or("status = ? AND removal_type = ?", model.StatusApproved, model.RemovalTypeReturnable)
		}
		return tx.Where(group)
	}
}
