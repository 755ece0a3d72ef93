package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/wrenhq/wren-social-api/internal/utils"
)

// RequireRole guards a route behind one of the listed roles. It reads the
// user_role local set by JWTProtected, so it must run after that middleware.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if normalized := strings.ToLower(strings.TrimSpace(role)); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("user_role").(string)
		role = strings.ToLower(strings.TrimSpace(role))
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
