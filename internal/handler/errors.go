package handler

import (
	"errors"
	"net/http"

	"removaltracker/internal/service"
	"removaltracker/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var errorStatuses = []struct {
	err    error
	status int
	code   string
}{
	{service.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
	{service.ErrPermissionDenied, http.StatusForbidden, "permission_denied"},
	{service.ErrInvalidState, http.StatusConflict, "invalid_state"},
	{service.ErrValidation, http.StatusBadRequest, "validation"},
	{service.ErrNotFound, http.StatusNotFound, "not_found"},
	{service.ErrPreconditionFailed, http.StatusPreconditionFailed, "precondition_failed"},
	{service.ErrConflict, http.StatusConflict, "conflict"},
}

// respondError writes the envelope for a service error. Anything that is not
// a service sentinel is logged and hidden behind a 500.
func respondError(c *gin.Context, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			c.JSON(e.status, response.ErrorWithCode(e.status, e.code, err.Error()))
			return
		}
	}

	logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).Error("request failed")
	c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Internal server error"))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, response.ErrorWithCode(http.StatusBadRequest, "validation", msg))
}

// pathUUID parses a path parameter, answering 400 when it is malformed.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid "+name+": must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
