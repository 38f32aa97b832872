package workflow

import (
	"testing"

	"removaltracker/internal/authz"
	"removaltracker/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(ts []Transition) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}

func TestDefinition_IsConsistent(t *testing.T) {
	require.NoError(t, Validate())
	assert.Len(t, Steps(), 9)
	assert.Len(t, Transitions(), 18)
	assert.Equal(t, []int{2, 3, 4, 5}, Levels())
}

func TestTerminalSteps(t *testing.T) {
	assert.True(t, IsTerminal(model.StatusRejected))
	assert.True(t, IsTerminal(model.StatusReturned))
	assert.False(t, IsTerminal(model.StatusApproved))
	assert.False(t, IsTerminal(model.StatusPendingLevel2Recheck))
}

func TestApprovalEdges(t *testing.T) {
	tests := []struct {
		level    int
		from, to string
		perm     authz.PermissionName
	}{
		{2, model.StatusPendingLevel2, model.StatusPendingLevel3, authz.ApproveLevel2},
		{3, model.StatusPendingLevel3, model.StatusPendingLevel4, authz.ApproveLevel3},
		{4, model.StatusPendingLevel4, model.StatusPendingSecurity, authz.ApproveLevel4},
		{5, model.StatusPendingSecurity, model.StatusApproved, authz.ApproveSecurity},
	}
	for _, tt := range tests {
		edge, ok := ApprovalEdge(tt.level)
		require.True(t, ok)
		assert.Equal(t, tt.from, edge.FromStep)
		assert.Equal(t, tt.to, edge.ToStep)
		assert.Equal(t, tt.perm, edge.RequiredPermission)

		rej, ok := RejectionEdge(tt.level)
		require.True(t, ok)
		assert.Equal(t, model.StatusRejected, rej.ToStep)
	}

	_, ok := ApprovalEdge(1)
	assert.False(t, ok)
	_, ok = ApprovalEdge(6)
	assert.False(t, ok)
}

func TestOverrideEdge(t *testing.T) {
	edge, ok := OverrideEdge(model.StatusPendingLevel3)
	require.True(t, ok)
	assert.Equal(t, "wt16", edge.ID)

	_, ok = OverrideEdge(model.StatusApproved)
	assert.False(t, ok)
	_, ok = OverrideEdge(model.StatusPendingLevel2Recheck)
	assert.False(t, ok)
}

func TestStepFor(t *testing.T) {
	step, ok := StepFor(model.StatusPendingSecurity)
	require.True(t, ok)
	assert.Equal(t, "Security Approval", step.DisplayName)
	assert.Equal(t, authz.ApproveSecurity, step.RequiredPermission)

	_, ok = StepFor("ARCHIVED")
	assert.False(t, ok)
}

func TestAllowedTransitions(t *testing.T) {
	d1, d2 := uuid.New(), uuid.New()
	requester := authz.NewActor(uuid.New(), "Employee", []authz.RoleName{authz.RoleLevel1})
	manager := authz.NewActor(uuid.New(), "Manager", []authz.RoleName{authz.RoleLevel2},
		authz.DepartmentMembership{DepartmentID: d1})
	finance := authz.NewActor(uuid.New(), "Finance", []authz.RoleName{authz.RoleLevel3})
	security := authz.NewActor(uuid.New(), "Guard", []authz.RoleName{authz.RoleSecurity})
	admin := authz.NewActor(uuid.New(), "Admin", []authz.RoleName{authz.RoleAdmin})

	removal := func(status string, dept *uuid.UUID) *model.Removal {
		return &model.Removal{ID: uuid.New(), RequesterID: requester.ID, Status: status, DepartmentID: dept, RemovalType: model.RemovalTypeReturnable}
	}

	t.Run("requester may submit own draft", func(t *testing.T) {
		assert.Equal(t, []string{"wt1"}, ids(AllowedTransitions(requester, removal(model.StatusDraft, &d1))))
	})

	t.Run("department approver in department", func(t *testing.T) {
		assert.Equal(t, []string{"wt2", "wt3"}, ids(AllowedTransitions(manager, removal(model.StatusPendingLevel2, &d1))))
	})

	t.Run("department approver outside department", func(t *testing.T) {
		assert.Empty(t, AllowedTransitions(manager, removal(model.StatusPendingLevel2, &d2)))
	})

	t.Run("finance approver at the wrong step", func(t *testing.T) {
		assert.Empty(t, AllowedTransitions(finance, removal(model.StatusPendingLevel2, &d1)))
		assert.Equal(t, []string{"wt4", "wt5"}, ids(AllowedTransitions(finance, removal(model.StatusPendingLevel3, &d1))))
	})

	t.Run("security on approved returnable", func(t *testing.T) {
		assert.Equal(t, []string{"wt10", "wt11"}, ids(AllowedTransitions(security, removal(model.StatusApproved, &d1))))
	})

	t.Run("admin overrides", func(t *testing.T) {
		assert.Equal(t, []string{"wt13", "wt14"}, ids(AllowedTransitions(admin, removal(model.StatusDraft, &d1))))
		assert.Equal(t, []string{"wt15"}, ids(AllowedTransitions(admin, removal(model.StatusPendingLevel2, &d2))))
	})

	t.Run("terminal status", func(t *testing.T) {
		assert.Empty(t, AllowedTransitions(admin, removal(model.StatusReturned, &d1)))
	})

	t.Run("nil actor", func(t *testing.T) {
		assert.Empty(t, AllowedTransitions(nil, removal(model.StatusDraft, &d1)))
	})
}
