// Package apperr maps application sentinel errors onto HTTP responses.
package apperr

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"grayco-suite/internal/application/alerts"
	"grayco-suite/internal/application/emails"
	"grayco-suite/internal/application/intake"
	"grayco-suite/internal/application/ledger"
	"grayco-suite/internal/application/outreach"
	"grayco-suite/internal/application/pipeline"
	"grayco-suite/internal/domain"
	"grayco-suite/internal/infrastructure/gemini"
	"grayco-suite/internal/pkg/calendar"
	"grayco-suite/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var byStatus = []struct {
	code int
	errs []error
}{
	{fiber.StatusNotFound, []error{pipeline.ErrProjectNotFound}},
	{fiber.StatusBadRequest, []error{
		pipeline.ErrNoLeadData, pipeline.ErrEmptyNote, pipeline.ErrMissingFile, pipeline.ErrUnknownDepositStage,
		pipeline.ErrInvalidAmount, pipeline.ErrInvalidPhotoCategory, pipeline.ErrInvalidProductionStatus,
		pipeline.ErrInvalidContactKind, pipeline.ErrInvalidSort, pipeline.ErrInvalidPhone, pipeline.ErrInvalidEmail, domain.ErrUnknownStatus,
		alerts.ErrInvalidSnooze, ledger.ErrInvalidRate, ledger.ErrInvalidPeriod,
		intake.ErrNoText, intake.ErrNoDocument, intake.ErrNoFolder,
		outreach.ErrNoRecipient, outreach.ErrNoInstallDate, outreach.ErrNoProposalFile,
	}},
	{fiber.StatusConflict, []error{
		pipeline.ErrTransitionNotAllowed, pipeline.ErrPricingLocked, pipeline.ErrSpecsMissing,
		pipeline.ErrMasterSpecLocked, pipeline.ErrDepositStageOrder, ledger.ErrNoPayments,
	}},
	{fiber.StatusRequestEntityTooLarge, []error{emails.ErrAttachmentTooLarge}},
	{fiber.StatusServiceUnavailable, []error{gemini.ErrNotConfigured, ledger.ErrNoRecipient, intake.ErrDriveUnavailable}},
}

// Status returns the HTTP status for err, or 500 when it is not a known sentinel.
func Status(err error) int {
	for _, group := range byStatus {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.code
			}
		}
	}
	return fiber.StatusInternalServerError
}

// Respond writes err in the standard envelope. Unknown errors go to the global error handler,
// which logs them and records them for /health/errors.
func Respond(c *fiber.Ctx, err error) error {
	code := Status(err)
	if code == fiber.StatusInternalServerError {
		return err
	}
	return response.Error(c, err.Error(), code, nil)
}

// ProjectID parses the :id route parameter. On false the caller should return InvalidID(c).
func ProjectID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

// InvalidID is the 400 for a malformed :id.
func InvalidID(c *fiber.Ctx) error {
	return response.Error(c, "Invalid project id", fiber.StatusBadRequest, nil)
}

// BadRequest is a 400 in the standard envelope.
func BadRequest(c *fiber.Ctx, msg string) error {
	return response.Error(c, msg, fiber.StatusBadRequest, nil)
}

// ParseDate reads YYYY-MM-DD as a Mountain Time civil date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(s), calendar.Location)
}

// OptionalDate parses s when non-empty.
func OptionalDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	d, err := ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// QueryInt reads an integer query parameter, falling back to def.
func QueryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
