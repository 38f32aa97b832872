package authz

import (
	"testing"

	"removaltracker/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRemoval(owner uuid.UUID, dept *uuid.UUID, status, removalType string) *model.Removal {
	return &model.Removal{
		ID:           uuid.New(),
		RequesterID:  owner,
		DepartmentID: dept,
		Status:       status,
		RemovalType:  removalType,
	}
}

func TestPermissionsOf_UnionOverRoles(t *testing.T) {
	actor := NewActor(uuid.New(), "Dual", []RoleName{RoleLevel1, RoleLevel2})

	assert.Equal(t, []PermissionName{
		ApproveLevel2,
		CreateRemoval,
		RecheckExtension,
		ViewDepartmentRemoval,
		ViewOwnRemoval,
	}, actor.PermissionsOf())
	assert.True(t, actor.HasRole(RoleLevel2))
	assert.False(t, actor.HasRole(RoleAdmin))
}

func TestHasPermission_UnknownIsFalse(t *testing.T) {
	actor := NewActor(uuid.New(), "Employee", []RoleName{RoleLevel1, "NOT_A_ROLE"})

	assert.False(t, actor.HasPermission("launch_rockets"))
	assert.False(t, actor.HasPermission(AdminAccess))
	assert.Equal(t, []RoleName{RoleLevel1}, actor.Roles)

	var nobody *Actor
	assert.False(t, nobody.HasPermission(CreateRemoval))
}

func TestCanPerformAction_Scopes(t *testing.T) {
	d1, d2 := uuid.New(), uuid.New()
	requester := NewActor(uuid.New(), "Employee", []RoleName{RoleLevel1})
	other := NewActor(uuid.New(), "Other", []RoleName{RoleLevel1})
	deptApprover := NewActor(uuid.New(), "Manager", []RoleName{RoleLevel2}, DepartmentMembership{DepartmentID: d1, IsPrimary: true})
	finance := NewActor(uuid.New(), "Finance", []RoleName{RoleLevel3})

	inD1 := newRemoval(requester.ID, &d1, model.StatusPendingLevel2, model.RemovalTypeReturnable)
	inD2 := newRemoval(requester.ID, &d2, model.StatusPendingLevel2, model.RemovalTypeReturnable)
	noDept := newRemoval(requester.ID, nil, model.StatusPendingLevel2, model.RemovalTypeNonReturnable)

	tests := []struct {
		name  string
		actor *Actor
		res   Resource
		perm  PermissionName
		want  bool
	}{
		{"own scope matches requester", requester, inD1, CreateRemoval, true},
		{"own scope rejects other user", other, inD1, CreateRemoval, false},
		{"department scope member", deptApprover, inD1, ApproveLevel2, true},
		{"department scope non member", deptApprover, inD2, ApproveLevel2, false},
		{"department scope without department", deptApprover, noDept, ApproveLevel2, false},
		{"global scope", finance, inD2, ApproveLevel3, true},
		{"missing base permission short-circuits", finance, inD1, ApproveLevel2, false},
		{"nil actor", nil, inD1, CreateRemoval, false},
		{"nil resource", requester, nil, CreateRemoval, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanPerformAction(tt.actor, tt.res, tt.perm))
		})
	}
}

func TestWithinDepartment(t *testing.T) {
	d1, d2 := uuid.New(), uuid.New()
	approver := NewActor(uuid.New(), "Manager", []RoleName{RoleLevel2}, DepartmentMembership{DepartmentID: d1})

	assert.True(t, WithinDepartment(approver, newRemoval(uuid.New(), &d1, model.StatusPendingLevel2, model.RemovalTypeReturnable), ApproveLevel2))
	assert.False(t, WithinDepartment(approver, newRemoval(uuid.New(), &d2, model.StatusPendingLevel2, model.RemovalTypeReturnable), ApproveLevel2))
	assert.True(t, WithinDepartment(approver, newRemoval(uuid.New(), nil, model.StatusPendingLevel2, model.RemovalTypeNonReturnable), ApproveLevel2))
	assert.True(t, WithinDepartment(approver, newRemoval(uuid.New(), &d2, model.StatusPendingLevel3, model.RemovalTypeReturnable), ApproveLevel3))
}

func TestActorFromUser(t *testing.T) {
	dept := uuid.New()
	user := &model.User{
		ID:   uuid.New(),
		Name: "Dept Manager",
		Roles: []model.Role{
			{Name: string(RoleLevel2), Permissions: []model.Permission{
				{Code: string(ApproveLevel2), Scope: string(ScopeDepartment)},
				{Code: string(RecheckExtension)},
			}},
		},
		Departments: []model.UserDepartment{{DepartmentID: dept, IsPrimary: true}},
	}

	actor := ActorFromUser(user)

	require.True(t, actor.HasPermission(ApproveLevel2))
	assert.Equal(t, ScopeDepartment, actor.Permissions[RecheckExtension], "missing scope falls back to catalog")
	assert.True(t, actor.InDepartment(dept))
	assert.Equal(t, []uuid.UUID{dept}, actor.DepartmentIDs())
}

func TestVisibilityFor(t *testing.T) {
	d1 := uuid.New()
	requester := NewActor(uuid.New(), "Employee", []RoleName{RoleLevel1})
	manager := NewActor(uuid.New(), "Manager", []RoleName{RoleLevel2}, DepartmentMembership{DepartmentID: d1})
	finance := NewActor(uuid.New(), "Finance", []RoleName{RoleLevel3})
	security := NewActor(uuid.New(), "Guard", []RoleName{RoleSecurity})
	admin := NewActor(uuid.New(), "Admin", []RoleName{RoleAdmin})

	own := newRemoval(requester.ID, nil, model.StatusDraft, model.RemovalTypeNonReturnable)
	deptRemoval := newRemoval(uuid.New(), &d1, model.StatusPendingLevel2, model.RemovalTypeReturnable)
	atFinance := newRemoval(uuid.New(), nil, model.StatusPendingLevel3, model.RemovalTypeNonReturnable)
	approvedReturnable := newRemoval(uuid.New(), &d1, model.StatusApproved, model.RemovalTypeReturnable)
	approvedFinal := newRemoval(uuid.New(), nil, model.StatusApproved, model.RemovalTypeNonReturnable)

	assert.True(t, VisibilityFor(requester).Allows(own))
	assert.False(t, VisibilityFor(requester).Allows(deptRemoval))

	assert.True(t, VisibilityFor(manager).Allows(deptRemoval))
	assert.False(t, VisibilityFor(manager).Allows(atFinance))

	assert.True(t, VisibilityFor(finance).Allows(atFinance))
	assert.False(t, VisibilityFor(finance).Allows(deptRemoval))

	assert.True(t, VisibilityFor(security).Allows(approvedReturnable))
	assert.False(t, VisibilityFor(security).Allows(approvedFinal))

	assert.True(t, VisibilityFor(admin).Allows(approvedFinal))
	assert.True(t, VisibilityFor(nil).Empty())
	assert.False(t, VisibilityFor(requester).Empty())
}

func TestCanView(t *testing.T) {
	d1 := uuid.New()
	requester := NewActor(uuid.New(), "Employee", []RoleName{RoleLevel1})
	stranger := NewActor(uuid.New(), "Stranger", []RoleName{RoleLevel1})
	manager := NewActor(uuid.New(), "Manager", []RoleName{RoleLevel2}, DepartmentMembership{DepartmentID: d1})

	r := newRemoval(requester.ID, &d1, model.StatusPendingLevel2, model.RemovalTypeReturnable)

	assert.True(t, CanView(requester, r))
	assert.True(t, CanView(manager, r))
	assert.False(t, CanView(stranger, r))
	assert.False(t, CanView(nil, r))
}

func TestCatalog(t *testing.T) {
	assert.Len(t, Permissions(), 17)
	assert.Len(t, Roles(), 6)

	def, ok := LookupPermission(RecheckExtension)
	require.True(t, ok)
	assert.Equal(t, ScopeDepartment, def.Scope)

	admin, ok := LookupRole(RoleAdmin)
	require.True(t, ok)
	assert.Equal(t, 6, admin.Level)
	assert.Contains(t, admin.Permissions, OverrideWorkflow)

	roles := Roles()
	roles[0].Permissions[0] = AdminAccess
	fresh, _ := LookupRole(roles[0].Name)
	assert.Equal(t, CreateRemoval, fresh.Permissions[0], "Roles returns copies")
}
