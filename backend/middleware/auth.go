package middleware

import (
	"lostfound/backend/config"
	"lostfound/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// PrincipalKey locates the verified claim bundle in the request context.
const PrincipalKey = "principal"

// AuthMiddleware verifies the bearer token and stores the decoded principal
// for the handlers. Claim-level checks (verified flag, email presence) are
// the services' business.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := utils.ExtractPrincipal(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		c.Locals(PrincipalKey, principal)
		return c.Next()
	}
}

// Principal returns the claim bundle stored by AuthMiddleware, or nil on
// public routes.
func Principal(c *fiber.Ctx) *utils.Principal {
	if p, ok := c.Locals(PrincipalKey).(*utils.Principal); ok {
		return p
	}
	return nil
}
