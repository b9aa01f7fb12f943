package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// TokenValidatorInterface verifies admin bearer tokens.
type TokenValidatorInterface interface {
	ValidateAdminToken(tokenString string) (string, error)
}

// RequireAdmin returns a middleware that rejects requests lacking a valid
// admin bearer token. The verified username is stored in locals under
// "admin" for downstream logging.
func RequireAdmin(tokens TokenValidatorInterface) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get(fiber.HeaderAuthorization)
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}

		username, err := tokens.ValidateAdminToken(strings.TrimPrefix(auth, prefix))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		c.Locals("admin", username)
		return c.Next()
	}
}
