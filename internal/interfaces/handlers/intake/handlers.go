package intake

import (
	"errors"
	"io"
	"net/http"

	intakesvc "grayco-suite/internal/application/intake"
	"grayco-suite/internal/infrastructure/gemini"
	"grayco-suite/internal/interfaces/handlers/apperr"
	"grayco-suite/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// maxDocument caps scan-invoice uploads.
const maxDocument = 10 << 20

// Handlers serve AI-assisted intake under /api/v1/intake.
type Handlers struct {
	Service *intakesvc.Service
}

// Extract POST /intake/extract {text}. Without Gemini the raw text comes back as notes with a 503.
func (h *Handlers) Extract(c *fiber.Ctx) error {
	var b struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&b); err != nil {
		return apperr.BadRequest(c, "Invalid request body")
	}
	lead, err := h.Service.Extract(c.UserContext(), b.Text)
	if errors.Is(err, intakesvc.ErrAIUnavailable) {
		return response.Error(c, err.Error(), fiber.StatusServiceUnavailable, fiber.Map{"fallback": lead})
	}
	if err != nil {
		log.Warn().Err(err).Msg("intake: extraction failed")
		return response.Error(c, "AI extraction failed", fiber.StatusBadGateway, fiber.Map{"fallback": gemini.Lead{Notes: b.Text}})
	}
	return response.Success(c, "Lead details extracted", lead, nil)
}

// CreateLead POST /intake/leads stores a reviewed extraction.
func (h *Handlers) CreateLead(c *fiber.Ctx) error {
	var l gemini.Lead
	if err := c.BodyParser(&l); err != nil {
		return apperr.BadRequest(c, "Invalid request body")
	}
	p, err := h.Service.CreateFromExtraction(c.UserContext(), l)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return response.SuccessCreated(c, "Lead created", p, nil)
}

// ScanInvoice POST /intake/scan-invoice, multipart "file" plus optional "project_id".
// The amounts are advisory; they are kept as an estimate, never as the validated value.
func (h *Handlers) ScanInvoice(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return apperr.Respond(c, intakesvc.ErrNoDocument)
	}
	if fh.Size > maxDocument {
		return response.Error(c, "Document exceeds 10 MB", fiber.StatusRequestEntityTooLarge, nil)
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	var projectID *uuid.UUID
	if raw := c.FormValue("project_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return apperr.InvalidID(c)
		}
		projectID = &id
	}

	mime := fh.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	scan, err := h.Service.ScanInvoice(c.UserContext(), projectID, data, mime)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return response.Success(c, "Document scanned", scan, fiber.Map{"recorded": projectID != nil})
}

// ImportPhotos POST /projects/:id/photos/import {folder_link, category}
func (h *Handlers) ImportPhotos(c *fiber.Ctx) error {
	id, ok := apperr.ProjectID(c)
	if !ok {
		return apperr.InvalidID(c)
	}
	var b struct {
		FolderLink string `json:"folder_link"`
		Category   string `json:"category"`
	}
	if err := c.BodyParser(&b); err != nil {
		return apperr.BadRequest(c, "Invalid request body")
	}
	res, err := h.Service.ImportPhotos(c.UserContext(), id, b.FolderLink, b.Category)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return response.Success(c, "Photos imported", res, fiber.Map{"imported": len(res.Imported), "skipped": res.Skipped})
}
