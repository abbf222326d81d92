package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pmtool/pmctl/internal/api/store"
	"github.com/pmtool/pmctl/internal/core/domain"
)

type TaskHandler struct {
	store *store.Store
}

func NewTaskHandler(st *store.Store) *TaskHandler {
	return &TaskHandler{store: st}
}

// List supports the project_id, status, assigned_to and priority filters.
func (h *TaskHandler) List(c echo.Context) error {
	f := domain.TaskFilter{
		ProjectID:  c.QueryParam("project_id"),
		Status:     domain.TaskStatus(c.QueryParam("status")),
		AssignedTo: c.QueryParam("assigned_to"),
		Priority:   domain.Priority(c.QueryParam("priority")),
	}
	return c.JSON(http.StatusOK, h.store.Tasks(f))
}

func (h *TaskHandler) Get(c echo.Context) error {
	t, err := h.store.Task(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (h *TaskHandler) Create(c echo.Context) error {
	var in domain.TaskInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if in.Title == "" || in.ProjectID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}
	if _, err := h.store.CreateTask(in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return message(c, http.StatusCreated, "Task created")
}

func (h *TaskHandler) Update(c echo.Context) error {
	var in domain.TaskInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.store.UpdateTask(c.Param("id"), in); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Task updated")
}

// UpdateStatus re-checks the assignment rule for developers.
func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	caller, err := ctxClaims(c)
	if err != nil {
		return err
	}
	var req domain.StatusChangeRequest
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Status required")
	}
	task, err := h.store.Task(c.Param("id"))
	if err != nil {
		return err
	}
	if !caller.CanChangeTaskStatus(task) {
		return domain.ErrForbidden
	}
	if err := h.store.SetTaskStatus(task.ID, req.Status); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Task status updated")
}

func (h *TaskHandler) AddComment(c echo.Context) error {
	caller, err := ctxClaims(c)
	if err != nil {
		return err
	}
	var req domain.CommentRequest
	if err := c.Bind(&req); err != nil || req.Comment == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Comment required")
	}
	if err := h.store.AddComment(c.Param("id"), req.Comment, caller.ID); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Comment added")
}

func (h *TaskHandler) Delete(c echo.Context) error {
	if err := h.store.DeleteTask(c.Param("id")); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Task deleted")
}
