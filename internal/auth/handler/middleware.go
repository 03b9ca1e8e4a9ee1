package handler

import (
	"strings"

	"github.com/Rishiraj17/backend-foundation/internal/audit"
	"github.com/Rishiraj17/backend-foundation/internal/auth/domain"
	"github.com/gofiber/fiber/v2"
)

const localsAccountID = "accountID"

func originFromCtx(c *fiber.Ctx) audit.Origin {
	return audit.Origin{
		IP:        c.IP(),
		UserAgent: string(c.Request().Header.UserAgent()),
	}
}

// RequireAuth verifies the bearer access token and stores the account id
// in the request locals.
func (h *AuthHandler) RequireAuth(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
	}

	accountID, err := h.tokens.Verify(token)
	if err != nil {
		return h.respondError(c, err)
	}

	c.Locals(localsAccountID, accountID)

	return c.Next()
}

// RequireRole layers a role check on top of RequireAuth. The access
// token carries only the account id, so the role is read back from the
// store.
func (h *AuthHandler) RequireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, _ := c.Locals(localsAccountID).(string)
		if accountID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}

		account, err := h.userService.GetByID(c.Context(), accountID)
		if err != nil {
			return h.respondError(c, err)
		}
		if account == nil || account.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
		}

		return c.Next()
	}
}
