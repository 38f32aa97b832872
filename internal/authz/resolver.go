package authz

import (
	"removaltracker/internal/model"

	"github.com/google/uuid"
)

// Resource is anything owned by a requester and optionally a department.
type Resource interface {
	OwnerID() uuid.UUID
	OwningDepartmentID() (uuid.UUID, bool)
}

// Viewable is a resource whose visibility depends on its workflow position.
type Viewable interface {
	Resource
	CurrentStatus() string
	IsReturnable() bool
}

// CanPerformAction decides whether actor may exercise perm against res under
// the permission's scope. It never fails: a missing actor, resource or base
// permission is simply false.
func CanPerformAction(actor *Actor, res Resource, perm PermissionName) bool {
	if res == nil {
		return false
	}
	scope, ok := actor.scopeOf(perm)
	if !ok {
		return false
	}

	switch scope {
	case ScopeOwn:
		return res.OwnerID() == actor.ID
	case ScopeDepartment:
		dept, ok := res.OwningDepartmentID()
		return ok && actor.InDepartment(dept)
	case ScopeGlobal:
		return true
	}
	return false
}

// IsOwnerOrAdmin reports whether actor requested res or holds admin_access.
func IsOwnerOrAdmin(actor *Actor, res Resource) bool {
	if actor == nil || res == nil {
		return false
	}
	return res.OwnerID() == actor.ID || actor.IsAdmin()
}

// WithinDepartment applies the department restriction of a department-scoped
// permission. Permissions of other scopes, and resources without a department,
// are not restricted.
func WithinDepartment(actor *Actor, res Resource, perm PermissionName) bool {
	if scope, _ := ScopeOf(perm); scope != ScopeDepartment {
		return true
	}
	if _, ok := res.OwningDepartmentID(); !ok {
		return true
	}
	return CanPerformAction(actor, res, perm)
}

// CanView decides whether actor may read a single removal: admins always,
// otherwise any view permission that passes its scope.
func CanView(actor *Actor, res Resource) bool {
	if actor == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	for _, perm := range []PermissionName{
		ViewOwnRemoval,
		ViewDepartmentRemoval,
		ViewLevel3Removal,
		ViewLevel4Removal,
		ViewSecurityRemoval,
	} {
		if CanPerformAction(actor, res, perm) {
			return true
		}
	}
	return false
}

// Visibility is the read-side filter of removals an actor may list. Clauses
// are OR-ed together.
type Visibility struct {
	All                bool        `json:"all"`
	OwnerID            *uuid.UUID  `json:"owner_id,omitempty"`
	DepartmentIDs      []uuid.UUID `json:"department_ids,omitempty"`
	Statuses           []string    `json:"statuses,omitempty"`
	ApprovedReturnable bool        `json:"approved_returnable"`
}

// VisibilityFor derives the listing filter from the actor's permissions.
func VisibilityFor(actor *Actor) Visibility {
	var v Visibility
	if actor == nil {
		return v
	}
	if actor.IsAdmin() {
		v.All = true
		return v
	}
	if actor.HasPermission(ViewOwnRemoval) {
		id := actor.ID
		v.OwnerID = &id
	}
	if actor.HasPermission(ViewDepartmentRemoval) {
		v.DepartmentIDs = actor.DepartmentIDs()
	}
	if actor.HasPermission(ViewLevel3Removal) {
		v.Statuses = append(v.Statuses, model.StatusPendingLevel3)
	}
	if actor.HasPermission(ViewLevel4Removal) {
		v.Statuses = append(v.Statuses, model.StatusPendingLevel4)
	}
	if actor.HasPermission(ViewSecurityRemoval) {
		v.Statuses = append(v.Statuses, model.StatusPendingSecurity)
		v.ApprovedReturnable = true
	}
	return v
}

// Empty reports whether the filter can match nothing.
func (v Visibility) Empty() bool {
	return !v.All && v.OwnerID == nil && len(v.DepartmentIDs) == 0 && len(v.Statuses) == 0 && !v.ApprovedReturnable
}

// Allows evaluates the filter against one removal.
func (v Visibility) Allows(r Viewable) bool {
	if v.All {
		return true
	}
	if v.OwnerID != nil && r.OwnerID() == *v.OwnerID {
		return true
	}
	if dept, ok := r.OwningDepartmentID(); ok {
		for _, id := range v.DepartmentIDs {
			if id == dept {
				return true
			}
		}
	}
	status := r.CurrentStatus()
	for _, s := range v.Statuses {
		if s == status {
			return true
		}
	}
	return v.ApprovedReturnable && status == model.StatusApproved && r.IsReturnable()
}
