package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pmtool/pmctl/internal/api/store"
	"github.com/pmtool/pmctl/internal/core/domain"
)

type UserHandler struct {
	store *store.Store
}

func NewUserHandler(st *store.Store) *UserHandler {
	return &UserHandler{store: st}
}

type createUserRequest struct {
	Username string      `json:"username" validate:"required"`
	Email    string      `json:"email"    validate:"required"`
	Password string      `json:"password" validate:"required"`
	Role     domain.Role `json:"role"     validate:"omitempty,oneof=Admin Manager Developer Designer Tester"`
}

func (h *UserHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Users())
}

func (h *UserHandler) Get(c echo.Context) error {
	u, err := h.store.User(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// Profile returns the caller's own record.
func (h *UserHandler) Profile(c echo.Context) error {
	caller, err := ctxClaims(c)
	if err != nil {
		return err
	}
	u, err := h.store.User(caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if c.Validate(&req) != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}
	if _, err := h.store.AddUser(domain.User{Username: req.Username, Email: req.Email, Role: req.Role}, req.Password); err != nil {
		return err
	}
	return message(c, http.StatusCreated, "User created")
}

func (h *UserHandler) Update(c echo.Context) error {
	var req domain.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Role != "" && !req.Role.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "role must be one of: Admin Manager Developer Designer Tester")
	}
	if err := h.store.UpdateUser(c.Param("id"), req); err != nil {
		return err
	}
	return message(c, http.StatusOK, "User updated")
}

// Delete removes a user. Admins only, and never themselves.
func (h *UserHandler) Delete(c echo.Context) error {
	caller, err := ctxClaims(c)
	if err != nil {
		return err
	}
	if !caller.CanDeleteUser(c.Param("id")) {
		return domain.ErrForbidden
	}
	if err := h.store.DeleteUser(c.Param("id")); err != nil {
		return err
	}
	return message(c, http.StatusOK, "User deleted")
}
