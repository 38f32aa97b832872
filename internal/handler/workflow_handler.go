package handler

import (
	"net/http"

	"removaltracker/internal/workflow"
	"removaltracker/pkg/response"

	"github.com/gin-gonic/gin"
)

// WorkflowCatalog exposes the static state machine.
type WorkflowCatalog interface {
	Steps() []workflow.Step
	Step(status string) (workflow.Step, error)
	Transitions() []workflow.Transition
}

type WorkflowHandler struct {
	catalog WorkflowCatalog
}

func NewWorkflowHandler(catalog WorkflowCatalog) *WorkflowHandler {
	return &WorkflowHandler{catalog: catalog}
}

func (h *WorkflowHandler) RegisterRoutes(router *gin.RouterGroup) {
	wf := router.Group("/workflow")
	{
		wf.GET("/steps", h.ListSteps)
		wf.GET("/steps/:status", h.GetStep)
		wf.GET("/transitions", h.ListTransitions)
	}
}

// ListSteps handles GET /api/workflow/steps
// @Summary      List workflow steps
// @Tags         workflow
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]workflow.Step}
// @Router       /api/workflow/steps [get]
func (h *WorkflowHandler) ListSteps(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.catalog.Steps()))
}

// GetStep handles GET /api/workflow/steps/:status
// @Summary      Get the step of a status
// @Tags         workflow
// @Produce      json
// @Security     BearerAuth
// @Param        status  path      string  true  "Removal status, e.g. PENDING_LEVEL_2"
// @Success      200     {object}  response.Response{data=workflow.Step}
// @Failure      404     {object}  response.Response
// @Router       /api/workflow/steps/{status} [get]
func (h *WorkflowHandler) GetStep(c *gin.Context) {
	step, err := h.catalog.Step(c.Param("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, step))
}

// ListTransitions handles GET /api/workflow/transitions
// @Summary      List the transition table
// @Tags         workflow
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/workflow/transitions [get]
func (h *WorkflowHandler) ListTransitions(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"version":     workflow.Version,
		"transitions": h.catalog.Transitions(),
	}))
}
