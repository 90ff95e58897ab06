package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/postpilot/postpilot/internal/pkg/env"
)

// RequireServiceKey guards the trusted-backend endpoints (token exchange,
// publish). Callers present the shared key in X-Service-Key or as a bearer
// token; tokens must never be exchanged from untrusted client code.
func RequireServiceKey() fiber.Handler {
	return func(c *fiber.Ctx) error {
		configured := strings.TrimSpace(env.GetEnv("SERVICE_API_KEY", ""))
		if configured == "" {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "config_missing",
				"message": "service key is not configured",
			})
		}

		presented := extractServiceKey(c)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(configured)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "invalid service key",
			})
		}
		return c.Next()
	}
}

func extractServiceKey(c *fiber.Ctx) string {
	if key := strings.TrimSpace(c.Get("X-Service-Key")); key != "" {
		return key
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
