package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	traceIDHeader = "X-Trace-Id"
	traceIDLocal  = "trace_id"
)

// Tracing tags the request with a trace id, echoes it in X-Trace-Id and puts a logger carrying it
// on the user context, so zerolog.Ctx(ctx) in services logs with the same id.
// A caller-supplied X-Trace-Id or X-Request-Id (up to 64 chars) is reused.
func Tracing() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(traceIDHeader)
		if id == "" {
			id = c.Get(fiber.HeaderXRequestID)
		}
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Locals(traceIDLocal, id)
		c.Set(traceIDHeader, id)
		logger := log.With().Str("trace_id", id).Logger()
		c.SetUserContext(logger.WithContext(c.UserContext()))
		return c.Next()
	}
}

func GetTraceID(c *fiber.Ctx) string {
	id, _ := c.Locals(traceIDLocal).(string)
	return id
}
