package service

import (
	"context"
	"errors"
	"testing"

	"removaltracker/internal/authz"
	"removaltracker/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRoleService_ListRoles(t *testing.T) {
	ctx := context.Background()
	admin := authz.NewActor(uuid.New(), "System Administrator", []authz.RoleName{authz.RoleAdmin})

	roles := new(MockRoleRepository)
	roles.On("ListAll", mock.Anything).Return([]model.Role{
		{ID: uuid.New(), Name: "LEVEL_2", Level: 2, IsSystem: true, Permissions: []model.Permission{
			{ID: uuid.New(), Code: "approve_level_2", Group: "approvals", Scope: "department"},
		}},
	}, nil).Once()
	svc := NewRoleService(roles)

	res, err := svc.ListRoles(ctx, admin)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 2, res[0].Level)
	assert.Equal(t, "department", res[0].Permissions[0].Scope)

	_, err = svc.ListRoles(ctx, nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	manager := authz.NewActor(uuid.New(), "Department Manager", []authz.RoleName{authz.RoleLevel2})
	_, err = svc.ListRoles(ctx, manager)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	roles.AssertExpectations(t)
}

func TestRoleService_ListPermissions(t *testing.T) {
	ctx := context.Background()
	admin := authz.NewActor(uuid.New(), "System Administrator", []authz.RoleName{authz.RoleAdmin})

	roles := new(MockRoleRepository)
	roles.On("ListPermissions", mock.Anything).Return([]model.Permission(nil), errors.New("db down")).Once()

	_, err := NewRoleService(roles).ListPermissions(ctx, admin)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrPermissionDenied)
}
