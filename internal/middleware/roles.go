package middleware

import (
	"slices"

	"go-negotiation/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// RequireAnyRole lets the request through when the caller holds at least one
// of roles. Approval steps check their own roles in the services.
func RequireAnyRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		for _, r := range claims.Roles {
			if slices.Contains(roles, r) {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Access denied: Insufficient role",
		})
	}
}
