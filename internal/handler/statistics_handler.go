package handler

import (
	"net/http"

	"removaltracker/internal/middleware"
	"removaltracker/internal/service"
	"removaltracker/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/statistics", h.GetStatistics)
}

// @Summary      Get Dashboard Statistics
// @Description  Status counts, returns due within a week and recent activity over the removals visible to the caller
// @Tags         Statistics
// @Produce      json
// @Success      200 {object} response.Response{data=model.DashboardResponse}
// @Failure      401 {object} response.Response
// @Security     BearerAuth
// @Router       /api/statistics [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	res, err := h.statisticsService.GetDashboard(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
