package routes

import (
	"github.com/kurromiii/E-Commerce/api/handler"
	"github.com/kurromiii/E-Commerce/api/middleware"
	"github.com/kurromiii/E-Commerce/internal/entity"

	"github.com/labstack/echo/v4"
)

type Router struct {
	Echo           *echo.Echo
	Accounts       *handler.AccountHandler
	AuthMiddleware middleware.AuthMiddleware
}

func NewRouter(e *echo.Echo, accounts *handler.AccountHandler, authMiddleware middleware.AuthMiddleware) *Router {
	return &Router{
		Echo:           e,
		Accounts:       accounts,
		AuthMiddleware: authMiddleware,
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo

	e.POST("/auth/register", r.Accounts.Register)
	e.POST("/auth/login", r.Accounts.Login)
	e.POST("/auth/verify-email", r.Accounts.VerifyEmail)
	e.POST("/auth/password/forgot", r.Accounts.PasswordForgot)
	e.POST("/auth/password/reset", r.Accounts.PasswordReset)

	e.GET("/me", r.Accounts.Me, r.AuthMiddleware.RequireAuth)
	e.DELETE("/users/:id", r.Accounts.Delete, r.AuthMiddleware.RequireAuth)

	e.DELETE("/admin/users/:id", r.Accounts.AdminRemove, r.AuthMiddleware.RequireAuth, middleware.RequireRole(entity.RoleAdmin))
	e.POST("/admin/users/:id/roles", r.Accounts.AdminAssignRole, r.AuthMiddleware.RequireAuth, middleware.RequireRole(entity.RoleAdmin))
}
