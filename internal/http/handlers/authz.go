package handlers

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	applog "stockroom/internal/log"
	"stockroom/internal/validate"
)

// RequireAdminToken checks the bearer token against a bcrypt hash. An empty
// hash disables the check.
func RequireAdminToken(hash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if hash == "" {
			return c.Next()
		}
		tok, ok := validate.BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok || bcrypt.CompareHashAndPassword([]byte(hash), []byte(tok)) != nil {
			applog.Security(c, "access.denied.admin", map[string]any{"has_token": ok})
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Next()
	}
}
