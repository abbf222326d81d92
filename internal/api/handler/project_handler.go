package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pmtool/pmctl/internal/api/store"
	"github.com/pmtool/pmctl/internal/core/domain"
)

type ProjectHandler struct {
	store *store.Store
}

func NewProjectHandler(st *store.Store) *ProjectHandler {
	return &ProjectHandler{store: st}
}

type teamMemberRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

func (h *ProjectHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Projects())
}

func (h *ProjectHandler) Get(c echo.Context) error {
	p, err := h.store.Project(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) Create(c echo.Context) error {
	caller, err := ctxClaims(c)
	if err != nil {
		return err
	}
	var in domain.ProjectInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if in.Name == "" || in.Description == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}
	if _, err := h.store.CreateProject(in, caller.ID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return message(c, http.StatusCreated, "Project created")
}

func (h *ProjectHandler) Update(c echo.Context) error {
	var in domain.ProjectInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.store.UpdateProject(c.Param("id"), in); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Project updated")
}

func (h *ProjectHandler) Delete(c echo.Context) error {
	if err := h.store.DeleteProject(c.Param("id")); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Project deleted")
}

func (h *ProjectHandler) AddTeamMember(c echo.Context) error {
	var req teamMemberRequest
	if err := c.Bind(&req); err != nil || req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "User ID required")
	}
	if err := h.store.AddTeamMember(c.Param("id"), req.UserID); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Team member added")
}

func (h *ProjectHandler) RemoveTeamMember(c echo.Context) error {
	if err := h.store.RemoveTeamMember(c.Param("id"), c.Param("userId")); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Team member removed")
}
