package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pmtool/pmctl/internal/core/domain"
)

// ctxClaims extracts the auth claims injected by the Auth middleware and
// rebuilds the caller's identity from them.
func ctxClaims(c echo.Context) (*domain.Identity, error) {
	userID, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if userID == "" || role == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return &domain.Identity{ID: userID, Role: domain.Role(role)}, nil
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, domain.Ack{Message: msg})
}
