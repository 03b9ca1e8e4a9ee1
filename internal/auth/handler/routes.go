package handler

import (
	"github.com/Rishiraj17/backend-foundation/internal/auth/domain"
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, h *AuthHandler) {
	app.Post("/api/v1/register", h.Register)
	app.Post("/api/v1/login", h.Login)
	app.Post("/api/v1/refresh", h.Refresh)
	app.Delete("/api/v1/session", h.Logout)
	app.Post("/api/v1/password", h.RequireAuth, h.ChangePassword)

	// Admin-only endpoints
	admin := app.Group("/api/v1/admin", h.RequireAuth, h.RequireRole(domain.RoleAdmin))
	admin.Get("/users", h.GetAllUsers)
}
