package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"removaltracker/internal/authz"
	"removaltracker/internal/model"
	"removaltracker/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReportService_Generate(t *testing.T) {
	ctx := context.Background()
	repo := newMemRemovalRepo()
	security := authz.NewActor(uuid.New(), "Security Officer", []authz.RoleName{authz.RoleSecurity})
	employee := authz.NewActor(uuid.New(), "Regular Employee", []authz.RoleName{authz.RoleLevel1})
	// report permission without any view permission
	clerk := &authz.Actor{ID: uuid.New(), Permissions: map[authz.PermissionName]authz.Scope{authz.CreateReport: authz.ScopeGlobal}}

	approved := &model.Removal{ID: uuid.New(), RequesterID: employee.ID, RemovalType: model.RemovalTypeReturnable, Status: model.StatusApproved, Version: 1}
	draft := &model.Removal{ID: uuid.New(), RequesterID: uuid.New(), RemovalType: model.RemovalTypeReturnable, Status: model.StatusDraft, Version: 1}
	require.NoError(t, repo.Create(ctx, approved))
	require.NoError(t, repo.Create(ctx, draft))

	audit := new(MockAuditRepository)
	audit.On("Log", mock.Anything, mock.MatchedBy(func(e *model.AuditLog) bool {
		return e.Action == model.ActionGenerateReport
	})).Return(nil)
	svc := NewReportService(repo, nil, audit)

	res, err := svc.Generate(ctx, security, approved.ID, ReportReturnReceipt)
	require.NoError(t, err)
	assert.Equal(t, "/reports/return_receipt/"+approved.ID.String(), res.Reference)
	audit.AssertNumberOfCalls(t, "Log", 1)

	tests := []struct {
		name       string
		actor      *authz.Actor
		removalID  uuid.UUID
		reportType ReportType
		want       error
	}{
		{"no actor", nil, approved.ID, ReportApprovalForm, ErrUnauthenticated},
		{"unknown type", security, approved.ID, "invoice", ErrValidation},
		{"missing create_report", employee, approved.ID, ReportApprovalForm, ErrPermissionDenied},
		{"unknown removal", security, uuid.New(), ReportApprovalForm, ErrNotFound},
		{"removal not visible", clerk, draft.ID, ReportApprovalForm, ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Generate(ctx, tt.actor, tt.removalID, tt.reportType)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	audit.AssertNumberOfCalls(t, "Log", 1)
}

func TestReportService_AuditFailureDoesNotFailGeneration(t *testing.T) {
	ctx := context.Background()
	repo := newMemRemovalRepo()
	admin := authz.NewActor(uuid.New(), "System Administrator", []authz.RoleName{authz.RoleAdmin})
	r := &model.Removal{ID: uuid.New(), Status: model.StatusDraft, Version: 1}
	require.NoError(t, repo.Create(ctx, r))

	audit := new(MockAuditRepository)
	audit.On("Log", mock.Anything, mock.Anything).Return(errors.New("db down"))

	res, err := NewReportService(repo, nil, audit).Generate(ctx, admin, r.ID, ReportApprovalForm)
	require.NoError(t, err)
	assert.Equal(t, ReportApprovalForm, res.Type)
}

func TestAuditService_GetAuditLogs(t *testing.T) {
	ctx := context.Background()
	admin := authz.NewActor(uuid.New(), "System Administrator", []authz.RoleName{authz.RoleAdmin})
	userID := uuid.New()

	repo := new(MockAuditRepository)
	repo.On("List", mock.Anything, repository.AuditFilter{Action: model.ActionApproveRemoval, Page: 1, Limit: 20}).Return([]model.AuditLog{
		{ID: uuid.New(), UserID: &userID, User: &model.User{Name: "Department Manager"}, Action: model.ActionApproveRemoval, CreatedAt: time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC)},
		{ID: uuid.New(), Action: model.ActionApproveRemoval},
	}, int64(2), nil)
	svc := NewAuditService(repo)

	logs, total, err := svc.GetAuditLogs(ctx, admin, AuditFilter{Action: model.ActionApproveRemoval})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "Department Manager", logs[0].UserName)
	assert.Equal(t, userID.String(), logs[0].UserID)
	assert.Equal(t, "2025-04-01 09:30:00", logs[0].CreatedAt)
	assert.Equal(t, "System", logs[1].UserName)

	manager := authz.NewActor(uuid.New(), "Department Manager", []authz.RoleName{authz.RoleLevel2})
	_, _, err = svc.GetAuditLogs(ctx, manager, AuditFilter{})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	repo.AssertExpectations(t)
}
