package middleware

import (
	"net/http"

	"github.com/kurromiii/E-Commerce/internal/entity"

	"github.com/labstack/echo/v4"
)

func RequireRole(role entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := UserFromContext(c)
			if !ok || !user.HasRole(role) {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
