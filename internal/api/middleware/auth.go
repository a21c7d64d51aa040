package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/noticeboard/notice-board-api/internal/core/domain"
)

// TokenValidator is the slice of the Authenticator the guard needs.
type TokenValidator interface {
	ValidateToken(token string) (domain.Identity, error)
}

// Auth gates protected routes: it extracts the bearer token, delegates
// validation to the Authenticator and injects the resolved identity into the
// request context. It holds no state across requests; on any failure the
// protected handler is never invoked.
func Auth(validator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			identity, err := validator.ValidateToken(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrInvalidToken.Error())
			}

			c.Set("user_id", identity.ID)
			c.Set("role", identity.Role)

			return next(c)
		}
	}
}
