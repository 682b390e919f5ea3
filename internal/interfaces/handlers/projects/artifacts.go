package projects

import (
	"context"

	"grayco-suite/internal/application/pipeline"
	"grayco-suite/internal/domain"
	"grayco-suite/internal/interfaces/handlers/apperr"
	"grayco-suite/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type fileBody struct {
	DriveFileID string `json:"drive_file_id"`
	FileName    string `json:"file_name"`
}

// File adapts a Drive-file setter (design proof, proposal, master spec, signed spec) to a handler.
func (h *Handlers) File(msg string, fn func(ctx context.Context, id uuid.UUID, f pipeline.FileRef) (*domain.Project, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return withID(c, func(id uuid.UUID) error {
			var b fileBody
			if err := c.BodyParser(&b); err != nil {
				return apperr.BadRequest(c, "Invalid request body")
			}
			p, err := fn(c.UserContext(), id, pipeline.FileRef{DriveFileID: b.DriveFileID, FileName: b.FileName})
			return done(c, msg, p, err)
		})
	}
}

// NoDesign PUT /projects/:id/no-design {on}
func (h *Handlers) NoDesign(c *fiber.Ctx) error {
	return withID(c, func(id uuid.UUID) error {
		var b struct {
			On bool `json:"on"`
		}
		if err := c.BodyParser(&b); err != nil {
			return apperr.BadRequest(c, "Invalid request body")
		}
		p, err := h.Service.SetNoDesignRequired(c.UserContext(), id, b.On)
		return done(c, "Design requirement updated", p, err)
	})
}

type amountsBody struct {
	TotalValue    float64 `json:"total_value"`
	DepositAmount float64 `json:"deposit_amount"`
}

// ConfirmAmounts POST /projects/:id/proposal/confirm {total_value, deposit_amount}
func (h *Handlers) ConfirmAmounts(c *fiber.Ctx) error {
	return withID(c, func(id uuid.UUID) error {
		var b amountsBody
		if err := c.BodyParser(&b); err != nil {
			return apperr.BadRequest(c, "Invalid request body")
		}
		p, err := h.Service.ConfirmProposalAmounts(c.UserContext(), id, b.TotalValue, b.DepositAmount)
		return done(c, "Proposal amounts confirmed", p, err)
	})
}

// DepositStage PUT /projects/:id/deposit/stage {stage, done}
func (h *Handlers) DepositStage(c *fiber.Ctx) error {
	return withID(c, func(id uuid.UUID) error {
		var b struct {
			Stage string `json:"stage"`
			Done  bool   `json:"done"`
		}
		if err := c.BodyParser(&b); err != nil {
			return apperr.BadRequest(c, "Invalid request body")
		}
		p, err := h.Service.SetDepositStage(c.UserContext(), id, b.Stage, b.Done)
		return done(c, "Deposit checklist updated", p, err)
	})
}

// ConfirmDeposit POST /projects/:id/deposit {amount, received_date}
func (h *Handlers) ConfirmDeposit(c *fiber.Ctx) error {
	return withID(c, func(id uuid.UUID) error {
		var b struct {
			Amount       float64 `json:"amount"`
			ReceivedDate string  `json:"received_date"`
		}
		if err := c.BodyParser(&b); err != nil {
			return apperr.BadRequest(c, "Invalid request body")
		}
		received, err := apperr.ParseDate(b.ReceivedDate)
		if err != nil {
			return apperr.BadRequest(c, "received_date must be YYYY-MM-DD")
		}
		p, err := h.Service.ConfirmDeposit(c.UserContext(), id, b.Amount, received)
		return done(c, "Deposit confirmed", p, err)
	})
}

// Permit PUT /projects/:id/permit
func (h *Handlers) Permit(c *fiber.Ctx) error {
	return withID(c, func(id uuid.UUID) error {
		var b struct {
			PermitNumber      string  `json:"permit_number"`
			PermitOfficePhone string  `json:"permit_office_phone"`
			SiteAddress       string  `json:"site_address"`
			DateApplied       *string `json:"date_applied"`
		}
		if err := c.BodyParser(&b); err != nil {
			return apperr.BadRequest(c, "Invalid request body")
		}
		applied, err := apperr.OptionalDate(b.DateApplied)
		if err != nil {
			return apperr.BadRequest(c, "date_applied must be YYYY-MM-DD")
		}
		p, err := h.Service.UpdatePermit(c.UserContext(), id, pipeline.PermitInput{
			PermitNumber:      b.PermitNumber,
			PermitOfficePhone: b.PermitOfficePhone,
			SiteAddress:       b.SiteAddress,
			DateApplied:       applied,
		})
		return done(c, "Permit updated", p, err)
	})
}

// Logistics GET /projects/:id/logistics
func (h *Handlers) Logistics(c *fiber.Ctx) error {
	return withID(c, func(id uuid.UUID) error {
		l, err := h.Service.GetLogistics(c.UserContext(), id)
		if err != nil {
			return apperr.Respond(c, err)
		}
		return response.Success(c, "Logistics fetched", l, nil)
	})
}

// SaveLogistics PUT /projects/:id/logistics. Omitted fields are left alone.
func (h *Handlers) SaveLogistics(c *fiber.Ctx) error {
	return withID(c, func(id uuid.UUID) error {
		var b struct {
			TargetInstallationDate   *string `json:"target_installation_date"`
			ProductionStatus         *string `json:"production_status"`
			PaintSamplesApproved     *bool   `json:"paint_samples_approved"`
			SiteMeasurementsVerified *bool   `json:"site_measurements_verified"`
		}
		if err := c.BodyParser(&b); err != nil {
			return apperr.BadRequest(c, "Invalid request body")
		}
		install, err := apperr.OptionalDate(b.TargetInstallationDate)
		if err != nil {
			return apperr.BadRequest(c, "target_installation_date must be YYYY-MM-DD")
		}
		l, err := h.Service.SaveLogistics(c.UserContext(), id, pipeline.LogisticsUpdate{
			TargetInstallationDate:   install,
			ProductionStatus:         b.ProductionStatus,
			PaintSamplesApproved:     b.PaintSamplesApproved,
			SiteMeasurementsVerified: b.SiteMeasurementsVerified,
		})
		if err != nil {
			return apperr.Respond(c, err)
		}
		return response.Success(c, "Logistics saved", l, nil)
	})
}

// Photos GET /projects/:id/photos?category=
func (h *Handlers) Photos(c *fiber.Ctx) error {
	return withID(c, func(id uuid.UUID) error {
		rows, err := h.Service.ListPhotos(c.UserContext(), id, c.Query("category"))
		if err != nil {
			return apperr.Respond(c, err)
		}
		return response.Success(c, "Photos fetched", rows, nil)
	})
}

// AddPhoto POST /projects/:id/photos
func (h *Handlers) AddPhoto(c *fiber.Ctx) error {
	return withID(c, func(id uuid.UUID) error {
		var b struct {
			DriveFileID string `json:"drive_file_id"`
			FileName    string `json:"file_name"`
			Category    string `json:"category"`
			Caption     string `json:"caption"`
		}
		if err := c.BodyParser(&b); err != nil {
			return apperr.BadRequest(c, "Invalid request body")
		}
		ph, err := h.Service.AddPhoto(c.UserContext(), id, pipeline.PhotoInput{
			DriveFileID: b.DriveFileID, FileName: b.FileName, Category: b.Category, Caption: b.Caption,
		})
		if err != nil {
			return apperr.Respond(c, err)
		}
		return response.SuccessCreated(c, "Photo added", ph, nil)
	})
}
