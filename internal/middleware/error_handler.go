package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"grayco-suite/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const errorLogSize = 50

// NewErrorHandler renders the standard error envelope and, with Redis, keeps the last
// 50 server errors for /health/errors.
func NewErrorHandler(rdb *redis.Client) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("trace_id", GetTraceID(c)).Str("path", c.Path()).Msg("request failed")
			if rdb != nil {
				entry, _ := json.Marshal(map[string]interface{}{
					"time":     time.Now().UTC(),
					"trace_id": GetTraceID(c),
					"path":     c.OriginalURL(),
					"method":   c.Method(),
					"message":  err.Error(),
				})
				ctx := context.WithoutCancel(c.UserContext())
				if _, perr := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
					p.LPush(ctx, KeyErrorLog, entry)
					p.LTrim(ctx, KeyErrorLog, 0, errorLogSize-1)
					return nil
				}); perr != nil {
					log.Warn().Err(perr).Msg("error log: redis write failed")
				}
			}
		}
		return response.Error(c, message, code, nil)
	}
}
