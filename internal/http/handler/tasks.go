package handler

import (
	"net/http"

	"department-service/internal/app"
	"department-service/internal/auth"
	apperrors "department-service/pkg/errors"

	"github.com/labstack/echo/v4"
)

const paramProfileID = "profile_id"

// TaskAPIHandler serves the JSON task listing.
type TaskAPIHandler struct {
	tasks TaskQuerier
}

func NewTaskAPIHandler(tasks TaskQuerier) *TaskAPIHandler {
	return &TaskAPIHandler{tasks: tasks}
}

func (h *TaskAPIHandler) ListTasks(c echo.Context) error {
	actor, err := auth.GetActor(c)
	if err != nil {
		return err
	}
	profileID, err := pathID(c, paramProfileID)
	if err != nil {
		return respondError(c, http.StatusNotFound, msgNotFound)
	}

	tasks, err := h.tasks.TasksForProfile(c.Request().Context(), actor, profileID)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string][]app.TaskSummary{jsonKeyTasks: tasks})
	case apperrors.IsForbidden(err):
		return respondError(c, http.StatusForbidden, msgJSONDenied)
	case apperrors.IsNotFound(err):
		return respondError(c, http.StatusNotFound, msgNotFound)
	default:
		return err
	}
}
