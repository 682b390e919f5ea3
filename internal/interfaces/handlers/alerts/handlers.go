package alerts

import (
	"context"
	"time"

	alertsvc "grayco-suite/internal/application/alerts"
	"grayco-suite/internal/interfaces/handlers/apperr"
	"grayco-suite/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers serve the alert dashboard under /api/v1/alerts.
type Handlers struct {
	Service *alertsvc.Service
}

// Dashboard GET /alerts returns every bucket plus the pay-period deadline banner.
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	d, err := h.Service.Dashboard(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return response.Success(c, "Alerts fetched", d, fiber.Map{
		"nudges":       len(d.Nudges),
		"victory_lap":  len(d.VictoryLap),
		"urgent":       len(d.Urgent),
		"action_items": len(d.ActionItems),
		"pulse_checks": len(d.PulseChecks),
	})
}

// Bucket adapts one alert query (nudges, urgent, ...) to a handler.
func (h *Handlers) Bucket(msg string, fn func(ctx context.Context) ([]alertsvc.Alert, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := fn(c.UserContext())
		if err != nil {
			return apperr.Respond(c, err)
		}
		return response.List(c, msg, rows, nil)
	}
}

// Snooze POST /alerts/:id/snooze {hours}. Zero or missing hours snoozes for a day.
func (h *Handlers) Snooze(c *fiber.Ctx) error {
	id, ok := apperr.ProjectID(c)
	if !ok {
		return apperr.InvalidID(c)
	}
	var b struct {
		Hours float64 `json:"hours"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&b); err != nil {
			return apperr.BadRequest(c, "Invalid request body")
		}
	}
	until, err := h.Service.Snooze(c.UserContext(), id, time.Duration(b.Hours*float64(time.Hour)))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return response.Success(c, "Alerts snoozed", fiber.Map{"project_id": id, "snooze_until": until}, nil)
}
