package middleware

import (
	"net/http"
	"strings"

	"github.com/kurromiii/E-Commerce/internal/repository"
	"github.com/kurromiii/E-Commerce/internal/utils"

	"github.com/labstack/echo/v4"
)

type AuthMiddleware struct {
	Codec utils.TokenCodec
	Users repository.UserRepository
}

func (m AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := extractBearerToken(c.Request())
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		username, err := m.Codec.ReadUsername(token)
		if err != nil || username == "" {
			// a verification or reset token never authenticates a request
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		user, err := m.Users.FindByUsername(c.Request().Context(), username)
		if err != nil || user == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		SetAuthContext(c, user)
		return next(c)
	}
}

func extractBearerToken(r *http.Request) string {
	authorization := r.Header.Get("Authorization")
	if authorization == "" {
		return ""
	}
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
