package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"task-manager.com/task-manager/internal/http/validators"
	model "task-manager.com/task-manager/internal/models"
)

func (h *Handler) ListTasks(c echo.Context) error {
	tasks, err := h.taskService.ListTasks(c.Request().Context(), session(c).UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count": len(tasks),
		"tasks": tasks,
	})
}

func (h *Handler) CreateTask(c echo.Context) error {
	var in model.TaskInput
	if err := bind(c, &in); err != nil {
		return err
	}
	if err := validators.ValidateTaskInput(in, time.Now()); err != nil {
		return err
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), session(c).UserID, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) UpdateTask(c echo.Context) error {
	var patch model.TaskPatch
	if err := bind(c, &patch); err != nil {
		return err
	}
	if err := validators.ValidateTaskPatch(patch); err != nil {
		return err
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), session(c).UserID, c.Param("id"), patch)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	if err := h.taskService.DeleteTask(c.Request().Context(), session(c).UserID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
