package leads

import (
	"encoding/json"
	"errors"

	intakesvc "grayco-suite/internal/application/intake"
	"grayco-suite/internal/application/pipeline"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Path is where Zapier posts new leads.
const Path = "/api/lead_receiver"

// Handlers serve the lead webhook. Replies use the flat {status, message} shape Zapier shows in its task log.
type Handlers struct {
	Intake *intakesvc.Service
}

// Receive POST /api/lead_receiver
func (h *Handlers) Receive(c *fiber.Ctx) error {
	var data map[string]any
	if err := json.Unmarshal(c.Body(), &data); err != nil || data == nil {
		log.Warn().Err(err).Msg("lead webhook: invalid JSON")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid JSON"})
	}

	receipt, err := h.Intake.ReceiveWebhook(c.UserContext(), data)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoLeadData) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": err.Error()})
		}
		log.Error().Err(err).Msg("lead webhook: store failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error: " + err.Error()})
	}
	return c.JSON(fiber.Map{
		"status":     "success",
		"message":    receipt.Message,
		"project_id": receipt.ProjectID,
	})
}

// Info GET /api/lead_receiver describes the endpoint for whoever wires up the Zap.
func (h *Handlers) Info(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "active",
		"endpoint": Path,
		"method":   fiber.MethodPost,
		"fields":   []string{"name", "phone", "email", "notes"},
	})
}
