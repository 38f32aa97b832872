package handler

import (
	"context"
	"net/http"

	"removaltracker/internal/authz"
	"removaltracker/internal/middleware"
	"removaltracker/internal/model"
	"removaltracker/internal/service"
	"removaltracker/internal/workflow"
	"removaltracker/pkg/pagination"
	"removaltracker/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RemovalService is the lifecycle surface the handler drives.
type RemovalService interface {
	Create(ctx context.Context, actor *authz.Actor, in service.CreateRemovalInput) (*model.Removal, error)
	Update(ctx context.Context, actor *authz.Actor, id uuid.UUID, in service.UpdateRemovalInput) (*model.Removal, error)
	Submit(ctx context.Context, actor *authz.Actor, id uuid.UUID) (*model.Removal, error)
	Approve(ctx context.Context, actor *authz.Actor, id uuid.UUID, in service.ApproveInput) (*model.Removal, error)
	Reject(ctx context.Context, actor *authz.Actor, id uuid.UUID, in service.RejectInput) (*model.Removal, error)
	RecordReturn(ctx context.Context, actor *authz.Actor, id uuid.UUID, in service.ReturnInput) (*model.Removal, error)
	RequestExtension(ctx context.Context, actor *authz.Actor, id uuid.UUID, in service.ExtensionInput) (*model.Removal, error)
	ApproveExtension(ctx context.Context, actor *authz.Actor, id, extensionID uuid.UUID) (*model.Removal, error)
	RejectExtension(ctx context.Context, actor *authz.Actor, id, extensionID uuid.UUID) (*model.Removal, error)
	List(ctx context.Context, actor *authz.Actor, filter service.ListFilter) ([]model.Removal, int64, error)
	Get(ctx context.Context, actor *authz.Actor, id uuid.UUID) (*model.Removal, error)
	AllowedTransitions(ctx context.Context, actor *authz.Actor, id uuid.UUID) ([]workflow.Transition, error)
}

var _ RemovalService = (*service.RemovalService)(nil)

type RemovalHandler struct {
	removals RemovalService
	retry    ConflictRetry
}

func NewRemovalHandler(removals RemovalService, retry ConflictRetry) *RemovalHandler {
	return &RemovalHandler{removals: removals, retry: retry}
}

// RegisterRoutes binds the removal endpoints. router must already carry the
// authentication middleware.
func (h *RemovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	removals := router.Group("/removals")
	{
		removals.GET("", h.ListRemovals)
		removals.POST("", h.CreateRemoval)
		removals.GET("/:id", h.GetRemoval)
		removals.PUT("/:id", h.UpdateRemoval)
		removals.POST("/:id/submit", h.SubmitRemoval)
		removals.POST("/:id/approve", h.ApproveRemoval)
		removals.POST("/:id/reject", h.RejectRemoval)
		removals.POST("/:id/return", h.RecordReturn)
		removals.POST("/:id/extensions", h.RequestExtension)
		removals.POST("/:id/extensions/:extensionId/approve", h.ApproveExtension)
		removals.POST("/:id/extensions/:extensionId/reject", h.RejectExtension)
		removals.GET("/:id/transitions", h.AllowedTransitions)
	}
}

// ListRemovals handles GET /api/removals
// @Summary      List removals
// @Description  Lists the removals visible to the caller, newest first
// @Tags         removals
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=pagination.Page}
// @Failure      401     {object}  response.Response
// @Router       /api/removals [get]
func (h *RemovalHandler) ListRemovals(c *gin.Context) {
	params := pagination.Parse(c)

	removals, total, err := h.removals.List(c.Request.Context(), middleware.ActorFrom(c), service.ListFilter{
		Status: c.Query("status"),
		Page:   params.Page,
		Limit:  params.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, params, removals, total))
}

// CreateRemoval handles POST /api/removals
// @Summary      Create a removal
// @Description  Creates a DRAFT removal owned by the caller
// @Tags         removals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateRemovalInput  true  "Removal"
// @Success      201      {object}  response.Response{data=model.Removal}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/removals [post]
func (h *RemovalHandler) CreateRemoval(c *gin.Context) {
	var req service.CreateRemovalInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	removal, err := h.removals.Create(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, removal))
}

// GetRemoval handles GET /api/removals/:id
// @Summary      Get a removal
// @Tags         removals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Removal ID"
// @Success      200  {object}  response.Response{data=model.Removal}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/removals/{id} [get]
func (h *RemovalHandler) GetRemoval(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	removal, err := h.removals.Get(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, removal))
}

// UpdateRemoval handles PUT /api/removals/:id
// @Summary      Update a draft removal
// @Description  Changes the given fields of a DRAFT removal; items, when present, replace the list
// @Tags         removals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Removal ID"
// @Param        payload  body      service.UpdateRemovalInput  true  "Changes"
// @Success      200      {object}  response.Response{data=model.Removal}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/removals/{id} [put]
func (h *RemovalHandler) UpdateRemoval(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateRemovalInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	h.mutate(c, func(ctx context.Context, actor *authz.Actor) (*model.Removal, error) {
		return h.removals.Update(ctx, actor, id, req)
	})
}

// SubmitRemoval handles POST /api/removals/:id/submit
// @Summary      Submit a removal
// @Description  Moves a DRAFT removal into department approval
// @Tags         workflow
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Removal ID"
// @Success      200  {object}  response.Response{data=model.Removal}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/removals/{id}/submit [post]
func (h *RemovalHandler) SubmitRemoval(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	h.mutate(c, func(ctx context.Context, actor *authz.Actor) (*model.Removal, error) {
		return h.removals.Submit(ctx, actor, id)
	})
}

// ApproveRemoval handles POST /api/removals/:id/approve
// @Summary      Approve at a level
// @Tags         workflow
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                true  "Removal ID"
// @Param        payload  body      service.ApproveInput  true  "Approval"
// @Success      200      {object}  response.Response{data=model.Removal}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/removals/{id}/approve [post]
func (h *RemovalHandler) ApproveRemoval(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req service.ApproveInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	h.mutate(c, func(ctx context.Context, actor *authz.Actor) (*model.Removal, error) {
		return h.removals.Approve(ctx, actor, id, req)
	})
}

// RejectRemoval handles POST /api/removals/:id/reject
// @Summary      Reject at a level
// @Tags         workflow
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true  "Removal ID"
// @Param        payload  body      service.RejectInput  true  "Rejection"
// @Success      200      {object}  response.Response{data=model.Removal}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/removals/{id}/reject [post]
func (h *RemovalHandler) RejectRemoval(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req service.RejectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	h.mutate(c, func(ctx context.Context, actor *authz.Actor) (*model.Removal, error) {
		return h.removals.Reject(ctx, actor, id, req)
	})
}

// RecordReturn handles POST /api/removals/:id/return
// @Summary      Record an asset return
// @Tags         workflow
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true  "Removal ID"
// @Param        payload  body      service.ReturnInput  true  "Return"
// @Success      200      {object}  response.Response{data=model.Removal}
// @Failure      409      {object}  response.Response
// @Router       /api/removals/{id}/return [post]
func (h *RemovalHandler) RecordReturn(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req service.ReturnInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	h.mutate(c, func(ctx context.Context, actor *authz.Actor) (*model.Removal, error) {
		return h.removals.RecordReturn(ctx, actor, id, req)
	})
}

// RequestExtension handles POST /api/removals/:id/extensions
// @Summary      Request a return date extension
// @Tags         extensions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Removal ID"
// @Param        payload  body      service.ExtensionInput  true  "New return date"
// @Success      200      {object}  response.Response{data=model.Removal}
// @Failure      400      {object}  response.Response
// @Failure      412      {object}  response.Response
// @Router       /api/removals/{id}/extensions [post]
func (h *RemovalHandler) RequestExtension(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req service.ExtensionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	h.mutate(c, func(ctx context.Context, actor *authz.Actor) (*model.Removal, error) {
		return h.removals.RequestExtension(ctx, actor, id, req)
	})
}

// ApproveExtension handles POST /api/removals/:id/extensions/:extensionId/approve
// @Summary      Approve a pending extension
// @Tags         extensions
// @Produce      json
// @Security     BearerAuth
// @Param        id           path      string  true  "Removal ID"
// @Param        extensionId  path      string  true  "Extension request ID"
// @Success      200          {object}  response.Response{data=model.Removal}
// @Failure      404          {object}  response.Response
// @Router       /api/removals/{id}/extensions/{extensionId}/approve [post]
func (h *RemovalHandler) ApproveExtension(c *gin.Context) {
	h.resolveExtension(c, h.removals.ApproveExtension)
}

// RejectExtension handles POST /api/removals/:id/extensions/:extensionId/reject
// @Summary      Reject a pending extension
// @Tags         extensions
// @Produce      json
// @Security     BearerAuth
// @Param        id           path      string  true  "Removal ID"
// @Param        extensionId  path      string  true  "Extension request ID"
// @Success      200          {object}  response.Response{data=model.Removal}
// @Failure      404          {object}  response.Response
// @Router       /api/removals/{id}/extensions/{extensionId}/reject [post]
func (h *RemovalHandler) RejectExtension(c *gin.Context) {
	h.resolveExtension(c, h.removals.RejectExtension)
}

// AllowedTransitions handles GET /api/removals/:id/transitions
// @Summary      Transitions available to the caller
// @Tags         workflow
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Removal ID"
// @Success      200  {object}  response.Response{data=[]workflow.Transition}
// @Failure      404  {object}  response.Response
// @Router       /api/removals/{id}/transitions [get]
func (h *RemovalHandler) AllowedTransitions(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	transitions, err := h.removals.AllowedTransitions(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, transitions))
}

type extensionResolver func(ctx context.Context, actor *authz.Actor, id, extensionID uuid.UUID) (*model.Removal, error)

func (h *RemovalHandler) resolveExtension(c *gin.Context, resolve extensionResolver) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	extensionID, ok := pathUUID(c, "extensionId")
	if !ok {
		return
	}

	h.mutate(c, func(ctx context.Context, actor *authz.Actor) (*model.Removal, error) {
		return resolve(ctx, actor, id, extensionID)
	})
}

// mutate runs a lifecycle call under the conflict retry policy and writes
// the resulting removal.
func (h *RemovalHandler) mutate(c *gin.Context, op func(ctx context.Context, actor *authz.Actor) (*model.Removal, error)) {
	ctx := c.Request.Context()
	actor := middleware.ActorFrom(c)

	var removal *model.Removal
	err := h.retry.Do(ctx, func() error {
		var err error
		removal, err = op(ctx, actor)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, removal))
}
