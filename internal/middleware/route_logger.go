package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RouteLogger writes one line per finished request. Health polling logs at debug;
// 4xx at warn and 5xx at error so failed sends and bad webhooks stand out.
func RouteLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		level := zerolog.InfoLevel
		switch path := c.Path(); {
		case status >= 500:
			level = zerolog.ErrorLevel
		case status >= 400:
			level = zerolog.WarnLevel
		case path == "/" || strings.HasPrefix(path, "/health"):
			level = zerolog.DebugLevel
		}

		ev := log.WithLevel(level).
			Str("trace_id", GetTraceID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("took", time.Since(start))
		if id := c.Params("id"); id != "" {
			ev = ev.Str("project_id", id)
		}
		if u, ok := GetUser(c).(map[string]interface{}); ok {
			if email, _ := u["email"].(string); email != "" {
				ev = ev.Str("operator", email)
			}
		}
		ev.Msg("request")
		return err
	}
}
