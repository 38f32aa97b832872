package authz

import (
	"sort"

	"removaltracker/internal/model"

	"github.com/google/uuid"
)

// DepartmentMembership is one department an actor belongs to.
type DepartmentMembership struct {
	DepartmentID uuid.UUID `json:"department_id"`
	IsPrimary    bool      `json:"is_primary"`
}

// Actor is the authenticated caller of a lifecycle operation: the user's
// identity, held roles, effective permissions (union over roles) and
// department memberships.
type Actor struct {
	ID          uuid.UUID                `json:"id"`
	Name        string                   `json:"name"`
	Email       string                   `json:"email"`
	Roles       []RoleName               `json:"roles"`
	Permissions map[PermissionName]Scope `json:"permissions"`
	Departments []DepartmentMembership   `json:"departments"`
}

// NewActor builds an actor from catalog roles. Unknown role names are ignored.
func NewActor(id uuid.UUID, name string, roles []RoleName, departments ...DepartmentMembership) *Actor {
	a := &Actor{
		ID:          id,
		Name:        name,
		Permissions: make(map[PermissionName]Scope),
		Departments: departments,
	}
	for _, roleName := range roles {
		def, ok := LookupRole(roleName)
		if !ok {
			continue
		}
		a.Roles = append(a.Roles, roleName)
		for _, p := range def.Permissions {
			scope, _ := ScopeOf(p)
			a.Permissions[p] = scope
		}
	}
	return a
}

// ActorFromUser builds an actor from a persisted user with roles, permissions
// and departments preloaded. A permission stored without a scope falls back to
// its catalog scope.
func ActorFromUser(u *model.User) *Actor {
	a := &Actor{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Permissions: make(map[PermissionName]Scope),
	}
	for _, role := range u.Roles {
		a.Roles = append(a.Roles, RoleName(role.Name))
		for _, p := range role.Permissions {
			name := PermissionName(p.Code)
			scope := Scope(p.Scope)
			if scope == "" {
				scope, _ = ScopeOf(name)
			}
			a.Permissions[name] = scope
		}
	}
	for _, d := range u.Departments {
		a.Departments = append(a.Departments, DepartmentMembership{
			DepartmentID: d.DepartmentID,
			IsPrimary:    d.IsPrimary,
		})
	}
	return a
}

// HasPermission reports whether any held role grants the permission.
func (a *Actor) HasPermission(name PermissionName) bool {
	if a == nil {
		return false
	}
	_, ok := a.Permissions[name]
	return ok
}

// HasRole reports whether the actor holds the role.
func (a *Actor) HasRole(name RoleName) bool {
	if a == nil {
		return false
	}
	for _, r := range a.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// PermissionsOf returns the effective permission set, sorted by name.
func (a *Actor) PermissionsOf() []PermissionName {
	if a == nil {
		return nil
	}
	names := make([]PermissionName, 0, len(a.Permissions))
	for name := range a.Permissions {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// IsAdmin reports whether the actor holds admin_access, which bypasses
// ownership checks.
func (a *Actor) IsAdmin() bool {
	return a.HasPermission(AdminAccess)
}

// CanOverride reports whether the actor holds override_workflow, which
// bypasses status and department checks on approvals.
func (a *Actor) CanOverride() bool {
	return a.HasPermission(OverrideWorkflow)
}

// InDepartment reports department membership.
func (a *Actor) InDepartment(id uuid.UUID) bool {
	if a == nil {
		return false
	}
	for _, d := range a.Departments {
		if d.DepartmentID == id {
			return true
		}
	}
	return false
}

// DepartmentIDs lists the departments the actor belongs to.
func (a *Actor) DepartmentIDs() []uuid.UUID {
	if a == nil {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(a.Departments))
	for _, d := range a.Departments {
		ids = append(ids, d.DepartmentID)
	}
	return ids
}

func (a *Actor) scopeOf(name PermissionName) (Scope, bool) {
	if a == nil {
		return "", false
	}
	s, ok := a.Permissions[name]
	return s, ok
}
