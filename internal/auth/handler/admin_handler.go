package handler

import (
	"github.com/Rishiraj17/backend-foundation/internal/auth/dto"
	"github.com/gofiber/fiber/v2"
)

// GetAllUsers serves the paginated admin user listing.
func (h *AuthHandler) GetAllUsers(c *fiber.Ctx) error {
	var query dto.ListUsersQuery
	if err := c.QueryParser(&query); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid query"})
	}

	adminID, _ := c.Locals(localsAccountID).(string)

	users, err := h.userService.List(c.Context(), adminID, query, originFromCtx(c))
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(users)
}
