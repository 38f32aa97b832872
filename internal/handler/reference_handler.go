package handler

import (
	"context"
	"net/http"

	"removaltracker/internal/model"
	"removaltracker/pkg/response"

	"github.com/gin-gonic/gin"
)

// ReferenceLister reads the reference data removals point at.
type ReferenceLister interface {
	ListDepartments(ctx context.Context) ([]model.Department, error)
	ListReasons(ctx context.Context) ([]model.RemovalReason, error)
}

type ReferenceHandler struct {
	refs ReferenceLister
}

func NewReferenceHandler(refs ReferenceLister) *ReferenceHandler {
	return &ReferenceHandler{refs: refs}
}

func (h *ReferenceHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/departments", h.ListDepartments)
	router.GET("/removal-reasons", h.ListReasons)
}

// ListDepartments handles GET /api/departments
// @Summary      List departments
// @Tags         reference
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.Department}
// @Router       /api/departments [get]
func (h *ReferenceHandler) ListDepartments(c *gin.Context) {
	depts, err := h.refs.ListDepartments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, depts))
}

// ListReasons handles GET /api/removal-reasons
// @Summary      List removal reasons
// @Tags         reference
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.RemovalReason}
// @Router       /api/removal-reasons [get]
func (h *ReferenceHandler) ListReasons(c *gin.Context) {
	reasons, err := h.refs.ListReasons(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, reasons))
}
