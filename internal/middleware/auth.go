package middleware

import (
	"crypto/subtle"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
)

// RequireDashboardKey validates that the request carries the shared
// dashboard API key. With DASHBOARD_API_KEY unset the check is
// skipped, for local development.
func RequireDashboardKey() fiber.Handler {
	warned := false

	return func(c *fiber.Ctx) error {
		expected := os.Getenv("DASHBOARD_API_KEY")
		if expected == "" {
			if !warned {
				log.Println("⚠️  DASHBOARD_API_KEY not set - API is unauthenticated")
				warned = true
			}
			return c.Next()
		}

		provided := c.Get("X-Dashboard-Key")
		if provided == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing dashboard key",
			})
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid dashboard key",
			})
		}

		return c.Next()
	}
}
