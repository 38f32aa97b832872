package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"removaltracker/internal/authz"
	"removaltracker/internal/middleware"
	"removaltracker/internal/model"
	"removaltracker/internal/service"
	"removaltracker/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRemovalService is a mock implementation of RemovalService
type MockRemovalService struct {
	mock.Mock
}

var _ RemovalService = (*MockRemovalService)(nil)

func (m *MockRemovalService) removal(args mock.Arguments) (*model.Removal, error) {
	if r := args.Get(0); r != nil {
		return r.(*model.Removal), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRemovalService) Create(ctx context.Context, actor *authz.Actor, in service.CreateRemovalInput) (*model.Removal, error) {
	return m.removal(m.Called(ctx, actor, in))
}

func (m *MockRemovalService) Update(ctx context.Context, actor *authz.Actor, id uuid.UUID, in service.UpdateRemovalInput) (*model.Removal, error) {
	return m.removal(m.Called(ctx, actor, id, in))
}

func (m *MockRemovalService) Submit(ctx context.Context, actor *authz.Actor, id uuid.UUID) (*model.Removal, error) {
	return m.removal(m.Called(ctx, actor, id))
}

func (m *MockRemovalService) Approve(ctx context.Context, actor *authz.Actor, id uuid.UUID, in service.ApproveInput) (*model.Removal, error) {
	return m.removal(m.Called(ctx, actor, id, in))
}

func (m *MockRemovalService) Reject(ctx context.Context, actor *authz.Actor, id uuid.UUID, in service.RejectInput) (*model.Removal, error) {
	return m.removal(m.Called(ctx, actor, id, in))
}

func (m *MockRemovalService) RecordReturn(ctx context.Context, actor *authz.Actor, id uuid.UUID, in service.ReturnInput) (*model.Removal, error) {
	return m.removal(m.Called(ctx, actor, id, in))
}

func (m *MockRemovalService) RequestExtension(ctx context.Context, actor *authz.Actor, id uuid.UUID, in service.ExtensionInput) (*model.Removal, error) {
	return m.removal(m.Called(ctx, actor, id, in))
}

func (m *MockRemovalService) ApproveExtension(ctx context.Context, actor *authz.Actor, id, extensionID uuid.UUID) (*model.Removal, error) {
	return m.removal(m.Called(ctx, actor, id, extensionID))
}

func (m *MockRemovalService) RejectExtension(ctx context.Context, actor *authz.Actor, id, extensionID uuid.UUID) (*model.Removal, error) {
	return m.removal(m.Called(ctx, actor, id, extensionID))
}

func (m *MockRemovalService) List(ctx context.Context, actor *authz.Actor, filter service.ListFilter) ([]model.Removal, int64, error) {
	args := m.Called(ctx, actor, filter)
	return args.Get(0).([]model.Removal), args.Get(1).(int64), args.Error(2)
}

func (m *MockRemovalService) Get(ctx context.Context, actor *authz.Actor, id uuid.UUID) (*model.Removal, error) {
	return m.removal(m.Called(ctx, actor, id))
}

func (m *MockRemovalService) AllowedTransitions(ctx context.Context, actor *authz.Actor, id uuid.UUID) ([]workflow.Transition, error) {
	args := m.Called(ctx, actor, id)
	return args.Get(0).([]workflow.Transition), args.Error(1)
}

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Code       string          `json:"code"`
}

func setupRouter(actor *authz.Actor, register func(api *gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", func(c *gin.Context) {
		if actor != nil {
			middleware.SetActor(c, actor)
		}
		c.Next()
	})
	register(api)
	return r
}

func doRequest(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestRemovalHandler_Create(t *testing.T) {
	actor := authz.NewActor(uuid.New(), "Regular Employee", []authz.RoleName{authz.RoleLevel1})
	svc := new(MockRemovalService)
	created := &model.Removal{ID: uuid.New(), Status: model.StatusDraft, RemovalType: model.RemovalTypeNonReturnable}
	svc.On("Create", mock.Anything, actor, mock.MatchedBy(func(in service.CreateRemovalInput) bool {
		return in.RemovalType == model.RemovalTypeNonReturnable && in.Employee == "Jane Doe" && len(in.Items) == 1
	})).Return(created, nil)

	r := setupRouter(actor, NewRemovalHandler(svc, NoRetry).RegisterRoutes)
	w, env := doRequest(t, r, http.MethodPost, "/api/removals", map[string]interface{}{
		"removal_type": "NON_RETURNABLE",
		"date_from":    "2025-04-01T00:00:00Z",
		"employee":     "Jane Doe",
		"items":        []map[string]string{{"description": "Laptop", "removal_reason_id": uuid.NewString()}},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	var got model.Removal
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, created.ID, got.ID)
	svc.AssertExpectations(t)
}

func TestRemovalHandler_ErrorMapping(t *testing.T) {
	actor := authz.NewActor(uuid.New(), "Department Manager", []authz.RoleName{authz.RoleLevel2})
	id := uuid.New()

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{"invalid state", fmt.Errorf("%w: removal is DRAFT", service.ErrInvalidState), http.StatusConflict, "invalid_state"},
		{"permission denied", service.ErrPermissionDenied, http.StatusForbidden, "permission_denied"},
		{"validation", service.ErrValidation, http.StatusBadRequest, "validation"},
		{"not found", service.ErrNotFound, http.StatusNotFound, "not_found"},
		{"precondition", service.ErrPreconditionFailed, http.StatusPreconditionFailed, "precondition_failed"},
		{"unauthenticated", service.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{"conflict", service.ErrConflict, http.StatusConflict, "conflict"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockRemovalService)
			svc.On("Approve", mock.Anything, actor, id, service.ApproveInput{Level: 2, Signature: "M"}).Return(nil, tt.err)

			r := setupRouter(actor, NewRemovalHandler(svc, NoRetry).RegisterRoutes)
			w, env := doRequest(t, r, http.MethodPost, "/api/removals/"+id.String()+"/approve", map[string]interface{}{
				"level":     2,
				"signature": "M",
			})

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, tt.wantKind, env.Code)
		})
	}
}

func TestRemovalHandler_RetriesConflicts(t *testing.T) {
	actor := authz.NewActor(uuid.New(), "Regular Employee", []authz.RoleName{authz.RoleLevel1})
	id := uuid.New()
	svc := new(MockRemovalService)
	svc.On("Submit", mock.Anything, actor, id).Return(nil, service.ErrConflict).Once()
	svc.On("Submit", mock.Anything, actor, id).Return(&model.Removal{ID: id, Status: model.StatusPendingLevel2}, nil).Once()

	r := setupRouter(actor, NewRemovalHandler(svc, fastRetry(t, 3)).RegisterRoutes)
	w, _ := doRequest(t, r, http.MethodPost, "/api/removals/"+id.String()+"/submit", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertNumberOfCalls(t, "Submit", 2)
}

func TestRemovalHandler_InvalidPathID(t *testing.T) {
	svc := new(MockRemovalService)
	r := setupRouter(nil, NewRemovalHandler(svc, NoRetry).RegisterRoutes)

	w, env := doRequest(t, r, http.MethodGet, "/api/removals/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", env.Code)

	w, _ = doRequest(t, r, http.MethodPost, "/api/removals/"+uuid.NewString()+"/extensions/nope/approve", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestRemovalHandler_List(t *testing.T) {
	actor := authz.NewActor(uuid.New(), "Finance Approver", []authz.RoleName{authz.RoleLevel3})
	svc := new(MockRemovalService)
	svc.On("List", mock.Anything, actor, service.ListFilter{Status: model.StatusPendingLevel3, Page: 2, Limit: 5}).
		Return([]model.Removal{{ID: uuid.New(), Status: model.StatusPendingLevel3}}, int64(6), nil)

	r := setupRouter(actor, NewRemovalHandler(svc, NoRetry).RegisterRoutes)
	w, env := doRequest(t, r, http.MethodGet, "/api/removals?status=PENDING_LEVEL_3&page=2&limit=5", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items      []model.Removal `json:"items"`
		Total      int64           `json:"total"`
		TotalPages int             `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Items, 1)
	assert.EqualValues(t, 6, page.Total)
	assert.Equal(t, 2, page.TotalPages)
}

func TestRemovalHandler_ResolveExtension(t *testing.T) {
	actor := authz.NewActor(uuid.New(), "Department Manager", []authz.RoleName{authz.RoleLevel2})
	id, extID := uuid.New(), uuid.New()
	svc := new(MockRemovalService)
	svc.On("RejectExtension", mock.Anything, actor, id, extID).Return(&model.Removal{ID: id, Status: model.StatusApproved}, nil)

	r := setupRouter(actor, NewRemovalHandler(svc, NoRetry).RegisterRoutes)
	w, _ := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/removals/%s/extensions/%s/reject", id, extID), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

type stubReports struct{}

func (stubReports) Generate(_ context.Context, _ *authz.Actor, removalID uuid.UUID, reportType service.ReportType) (*service.ReportResponse, error) {
	return &service.ReportResponse{Type: reportType, RemovalID: removalID, Reference: "/reports/" + string(reportType) + "/" + removalID.String()}, nil
}

func TestReportHandler(t *testing.T) {
	id := uuid.New()
	path := "/api/removals/" + id.String() + "/reports"
	body := map[string]string{"type": "return_receipt"}

	employee := authz.NewActor(uuid.New(), "Regular Employee", []authz.RoleName{authz.RoleLevel1})
	w, _ := doRequest(t, setupRouter(employee, NewReportHandler(stubReports{}).RegisterRoutes), http.MethodPost, path, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	security := authz.NewActor(uuid.New(), "Security Officer", []authz.RoleName{authz.RoleSecurity})
	w, env := doRequest(t, setupRouter(security, NewReportHandler(stubReports{}).RegisterRoutes), http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, w.Code)
	var report service.ReportResponse
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, "/reports/return_receipt/"+id.String(), report.Reference)
}

type staticCatalog struct{}

func (staticCatalog) Steps() []workflow.Step             { return workflow.Steps() }
func (staticCatalog) Transitions() []workflow.Transition { return workflow.Transitions() }
func (staticCatalog) Step(status string) (workflow.Step, error) {
	step, ok := workflow.StepFor(status)
	if !ok {
		return workflow.Step{}, service.ErrNotFound
	}
	return step, nil
}

func TestWorkflowHandler(t *testing.T) {
	r := setupRouter(nil, NewWorkflowHandler(staticCatalog{}).RegisterRoutes)

	w, env := doRequest(t, r, http.MethodGet, "/api/workflow/steps", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var steps []workflow.Step
	require.NoError(t, json.Unmarshal(env.Data, &steps))
	assert.Len(t, steps, 9)

	w, _ = doRequest(t, r, http.MethodGet, "/api/workflow/steps/ARCHIVED", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = doRequest(t, r, http.MethodGet, "/api/workflow/transitions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var table struct {
		Version     int                   `json:"version"`
		Transitions []workflow.Transition `json:"transitions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &table))
	assert.Equal(t, workflow.Version, table.Version)
	assert.Len(t, table.Transitions, 18)
}
