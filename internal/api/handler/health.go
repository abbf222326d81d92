package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pmtool/pmctl/internal/core/domain"
)

// HealthHandler handles GET / and confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.Health{
		Message: "Project Management API is running!",
		Status:  "healthy",
	})
}
