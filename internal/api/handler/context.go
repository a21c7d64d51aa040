package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/noticeboard/notice-board-api/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Auth middleware. An empty
// id or role means the middleware did not run for this route, which is a
// wiring fault, so fail closed with 401.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	id, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if id == "" || role == "" {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return domain.Identity{ID: id, Role: role}, nil
}
