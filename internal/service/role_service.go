package service

import (
	"context"
	"fmt"

	"removaltracker/internal/authz"
	"removaltracker/internal/model"
	"removaltracker/internal/repository"
)

// --- DTOs ---

type RoleResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Level       int                  `json:"level"`
	Description string               `json:"description"`
	IsSystem    bool                 `json:"is_system"`
	Permissions []PermissionResponse `json:"permissions"`
	CreatedAt   string               `json:"created_at"`
}

type PermissionResponse struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Group string `json:"group"`
	Scope string `json:"scope"`
}

// --- Interface ---

// RoleService exposes the persisted role catalog. Roles are seeded from the
// static catalog on start-up and are read-only at runtime.
type RoleService interface {
	ListRoles(ctx context.Context, actor *authz.Actor) ([]RoleResponse, error)
	ListPermissions(ctx context.Context, actor *authz.Actor) ([]PermissionResponse, error)
}

type roleService struct {
	roles repository.RoleRepository
}

func NewRoleService(roles repository.RoleRepository) RoleService {
	return &roleService{roles: roles}
}

// --- Implementation ---

func (s *roleService) ListRoles(ctx context.Context, actor *authz.Actor) ([]RoleResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	roles, err := s.roles.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}

	res := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		res = append(res, toRoleResponse(r))
	}
	return res, nil
}

func (s *roleService) ListPermissions(ctx context.Context, actor *authz.Actor) ([]PermissionResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	perms, err := s.roles.ListPermissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch permissions: %w", err)
	}

	res := make([]PermissionResponse, 0, len(perms))
	for _, p := range perms {
		res = append(res, toPermissionResponse(p))
	}
	return res, nil
}

func requireAdmin(actor *authz.Actor) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: %s is required", ErrPermissionDenied, authz.AdminAccess)
	}
	return nil
}

// --- Helpers ---

func toRoleResponse(r model.Role) RoleResponse {
	perms := make([]PermissionResponse, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, toPermissionResponse(p))
	}

	return RoleResponse{
		ID:          r.ID.String(),
		Name:        r.Name,
		Level:       r.Level,
		Description: r.Description,
		IsSystem:    r.IsSystem,
		Permissions: perms,
		CreatedAt:   r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func toPermissionResponse(p model.Permission) PermissionResponse {
	return PermissionResponse{
		ID:    p.ID.String(),
		Code:  p.Code,
		Name:  p.Name,
		Group: p.Group,
		Scope: p.Scope,
	}
}
