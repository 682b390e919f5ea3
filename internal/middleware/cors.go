package middleware

import (
	"strings"

	"grayco-suite/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig lists the front-ends allowed to call the API with credentials.
type CORSConfig struct {
	// AllowedSuffixes are host suffixes such as ".kbsigns.com". Matching ignores case.
	AllowedSuffixes []string
	// DevPassword lets a developer's browser through from any origin via the dev-password header.
	DevPassword string
	// AllowLocalhost admits http://localhost:* and http://127.0.0.1:* (off in production).
	AllowLocalhost bool
}

// SplitSuffixes turns FRONTEND_URL_ENDS_WITH ("a.com, .b.com") into AllowedSuffixes.
func SplitSuffixes(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (cfg CORSConfig) allows(c *fiber.Ctx, origin string) bool {
	o := strings.ToLower(origin)
	if cfg.AllowLocalhost && (strings.HasPrefix(o, "http://localhost:") || strings.HasPrefix(o, "http://127.0.0.1:")) {
		return true
	}
	for _, s := range cfg.AllowedSuffixes {
		if strings.HasSuffix(o, s) {
			return true
		}
	}
	return cfg.DevPassword != "" && c.Get("dev-password") == cfg.DevPassword
}

// CORS admits requests without an Origin (Zapier, curl, same-origin) and browser requests from allowed origins.
// Preflights from allowed origins end here with 204.
func CORS(cfg CORSConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Vary(fiber.HeaderOrigin)
		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" {
			return c.Next()
		}
		if !cfg.allows(c, origin) {
			return response.Forbidden(c, "Not allowed by CORS")
		}
		c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
		c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
		if c.Method() != fiber.MethodOptions {
			return c.Next()
		}
		c.Set(fiber.HeaderAccessControlAllowHeaders, "Content-Type, dev-password, "+WebhookTokenHeader+", "+traceIDHeader)
		c.Set(fiber.HeaderAccessControlAllowMethods, "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Set(fiber.HeaderAccessControlMaxAge, "600")
		return c.SendStatus(fiber.StatusNoContent)
	}
}
