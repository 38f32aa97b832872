package repository

import (
	"context"

	"removaltracker/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleRepository stores the persisted copy of the role and permission catalog.
type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*model.Role, error)
	FindByNames(ctx context.Context, names []string) ([]model.Role, error)
	ListAll(ctx context.Context) ([]model.Role, error)
	ListPermissions(ctx context.Context) ([]model.Permission, error)
	FindOrCreatePermission(ctx context.Context, perm *model.Permission) error
	FindOrCreateRole(ctx context.Context, role *model.Role) error
	ReplacePermissions(ctx context.Context, roleID uuid.UUID, permIDs []uuid.UUID) error
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := GetDB(ctx, r.db).Preload("Permissions").Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindByNames(ctx context.Context, names []string) ([]model.Role, error) {
	var roles []model.Role
	if err := GetDB(ctx, r.db).Where("name IN ?", names).Order("level asc").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) ListAll(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	if err := GetDB(ctx, r.db).Preload("Permissions").Order("level asc").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) ListPermissions(ctx context.Context) ([]model.Permission, error) {
	var perms []model.Permission
	if err := GetDB(ctx, r.db).Order("\"group\" asc, code asc").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *roleRepository) FindOrCreatePermission(ctx context.Context, perm *model.Permission) error {
	return GetDB(ctx, r.db).
		Where("code = ?", perm.Code).
		Assign(map[string]interface{}{"name": perm.Name, "group": perm.Group, "scope": perm.Scope}).
		FirstOrCreate(perm).Error
}

func (r *roleRepository) FindOrCreateRole(ctx context.Context, role *model.Role) error {
	return GetDB(ctx, r.db).
		Omit("Permissions").
		Where("name = ?", role.Name).
		Assign(map[string]interface{}{"level": role.Level, "description": role.Description, "is_system": role.IsSystem}).
		FirstOrCreate(role).Error
}

func (r *roleRepository) ReplacePermissions(ctx context.Context, roleID uuid.UUID, permIDs []uuid.UUID) error {
	db := GetDB(ctx, r.db)
	var role model.Role
	if err := db.First(&role, "id = ?", roleID).Error; err != nil {
		return err
	}

	var perms []model.Permission
	if err := db.Where("id IN ?", permIDs).Find(&perms).Error; err != nil {
		return err
	}

	return db.Model(&role).Association("Permissions").Replace(perms)
}
