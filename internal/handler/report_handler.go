package handler

import (
	"context"
	"net/http"

	"removaltracker/internal/authz"
	"removaltracker/internal/middleware"
	"removaltracker/internal/service"
	"removaltracker/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReportService interface {
	Generate(ctx context.Context, actor *authz.Actor, removalID uuid.UUID, reportType service.ReportType) (*service.ReportResponse, error)
}

type ReportRequest struct {
	Type service.ReportType `json:"type" binding:"required"`
}

type ReportHandler struct {
	reports ReportService
}

func NewReportHandler(reports ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/removals/:id/reports", middleware.RequirePermission(authz.CreateReport), h.GenerateReport)
}

// GenerateReport handles POST /api/removals/:id/reports
// @Summary      Generate a removal document
// @Description  Produces an approval form, return receipt or extension form reference
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string         true  "Removal ID"
// @Param        payload  body      ReportRequest  true  "Report type"
// @Success      201      {object}  response.Response{data=service.ReportResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/removals/{id}/reports [post]
func (h *ReportHandler) GenerateReport(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	report, err := h.reports.Generate(c.Request.Context(), middleware.ActorFrom(c), id, req.Type)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, report))
}
