package middleware

import (
	"crypto/subtle"

	"grayco-suite/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const userLocal = "user"

// WebhookTokenHeader carries the shared secret Zapier sends with each lead.
const WebhookTokenHeader = "X-Webhook-Token"

// RequireAuth ensures an operator is in the session. Returns 401 with standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals(userLocal)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		c.Locals("auth", user)
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// WebhookToken guards the lead receiver POST. An empty token leaves the endpoint open.
// Failures use the flat {status, message} shape Zapier expects.
func WebhookToken(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" || c.Method() != fiber.MethodPost {
			return c.Next()
		}
		got := c.Get(WebhookTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			log.Warn().Str("ip", c.IP()).Msg("lead webhook: bad token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Invalid webhook token"})
		}
		return c.Next()
	}
}
