package middleware

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis keys for traffic counters, read back by the health service.
const (
	KeyReqTotal  = "health:global:req_total"
	KeyReqErrors = "health:global:req_errors"
	KeyResTime   = "health:global:res_time_total"
	KeyResCount  = "health:global:res_count"
	KeyStartTime = "health:global:start_time"
	KeyLastReq   = "health:global:last_request"
	KeyErrorLog  = "health:global:error_log"
	// KeyAreas is a hash of request counts per API area (projects, alerts, ledger, webhook, ...).
	KeyAreas = "health:global:areas"
)

// CounterKeys is every key HealthMarker and the error handler write.
var CounterKeys = []string{KeyReqTotal, KeyReqErrors, KeyResTime, KeyResCount, KeyStartTime, KeyLastReq, KeyErrorLog, KeyAreas}

// Area names the part of the API a path belongs to: "/api/v1/projects/..." is "projects",
// the Zapier receiver is "webhook", anything else is "other".
func Area(path string) string {
	if strings.HasPrefix(path, "/api/lead_receiver") {
		return "webhook"
	}
	rest, ok := strings.CutPrefix(path, "/api/v1/")
	if !ok {
		return "other"
	}
	area, _, _ := strings.Cut(rest, "/")
	if area == "" {
		return "other"
	}
	return area
}

// HealthMarker counts requests, 5xx responses and response time in Redis, skipping the health
// endpoints themselves. All writes for a request go out in one pipeline. Nil rdb disables it.
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if rdb == nil || path == "/" || strings.HasPrefix(path, "/health") || path == "/favicon.ico" {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}
		last, _ := json.Marshal(map[string]interface{}{
			"time":   start,
			"ip":     c.IP(),
			"path":   c.OriginalURL(),
			"method": c.Method(),
			"status": status,
		})

		_, perr := rdb.Pipelined(c.UserContext(), func(p redis.Pipeliner) error {
			p.Set(c.UserContext(), KeyLastReq, last, 0)
			p.Incr(c.UserContext(), KeyReqTotal)
			p.Incr(c.UserContext(), KeyResCount)
			p.IncrByFloat(c.UserContext(), KeyResTime, float64(time.Since(start).Milliseconds()))
			p.HIncrBy(c.UserContext(), KeyAreas, Area(path), 1)
			if status >= 500 {
				p.Incr(c.UserContext(), KeyReqErrors)
			}
			return nil
		})
		if perr != nil {
			log.Debug().Err(perr).Msg("health marker: counters not written")
		}
		return err
	}
}
