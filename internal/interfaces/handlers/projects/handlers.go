package projects

import (
	"context"
	"strings"

	"grayco-suite/internal/application/pipeline"
	"grayco-suite/internal/domain"
	"grayco-suite/internal/interfaces/handlers/apperr"
	"grayco-suite/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Handlers expose the pipeline service over /api/v1/projects.
type Handlers struct {
	Service *pipeline.Service
}

type projectView struct {
	*domain.Project
	Badge domain.Badge `json:"badge"`
}

func view(p *domain.Project) projectView {
	return projectView{Project: p, Badge: p.Status.Badge()}
}

func views(ps []domain.Project) []projectView {
	out := make([]projectView, 0, len(ps))
	for i := range ps {
		out = append(out, view(&ps[i]))
	}
	return out
}

// withID parses :id and hands it to fn.
func withID(c *fiber.Ctx, fn func(id uuid.UUID) error) error {
	id, ok := apperr.ProjectID(c)
	if !ok {
		return apperr.InvalidID(c)
	}
	return fn(id)
}

// done renders the updated project, or the mapped error.
func done(c *fiber.Ctx, msg string, p *domain.Project, err error) error {
	if err != nil {
		return apperr.Respond(c, err)
	}
	return response.Success(c, msg, view(p), nil)
}

// List GET /projects?sort=last_updated|newest|name_asc[&status=...]
func (h *Handlers) List(c *fiber.Ctx) error {
	if raw := c.Query("status"); raw != "" {
		var statuses []domain.Status
		for _, part := range strings.Split(raw, ",") {
			s, err := domain.Canonicalize(part)
			if err != nil {
				return apperr.Respond(c, err)
			}
			statuses = append(statuses, s)
		}
		rows, err := h.Service.ListByStatus(c.UserContext(), statuses...)
		if err != nil {
			return apperr.Respond(c, err)
		}
		return response.List(c, "Projects fetched", views(rows), nil)
	}
	rows, err := h.Service.ListPipeline(c.UserContext(), c.Query("sort"))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return response.List(c, "Projects fetched", views(rows), nil)
}

type createBody struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Notes       string `json:"notes"`
	SiteAddress string `json:"site_address"`
}

// Create POST /projects
func (h *Handlers) Create(c *fiber.Ctx) error {
	var b createBody
	if err := c.BodyParser(&b); err != nil {
		return apperr.BadRequest(c, "Invalid request body")
	}
	p, err := h.Service.CreateLead(c.UserContext(), pipeline.LeadInput{
		Name: b.Name, Phone: b.Phone, Email: b.Email, Notes: b.Notes, SiteAddress: b.SiteAddress,
		Source: domain.SourceManual,
	})
	if err != nil {
		return apperr.Respond(c, err)
	}
	return response.SuccessCreated(c, "Lead created", view(p), nil)
}

// Get GET /projects/:id with its commission and logistics.
func (h *Handlers) Get(c *fiber.Ctx) error {
	return withID(c, func(id uuid.UUID) error {
		ctx := c.UserContext()
		p, err := h.Service.Get(ctx, id)
		if err != nil {
			return apperr.Respond(c, err)
		}
		comm, err := h.Service.Commission(ctx, id)
		if err != nil {
			return apperr.Respond(c, err)
		}
		logi, err := h.Service.GetLogistics(ctx, id)
		if err != nil {
			return apperr.Respond(c, err)
		}
		return response.Success(c, "Project fetched", fiber.Map{
			"project":    view(p),
			"commission": comm,
			"logistics":  logi,
		}, nil)
	})
}

// Delete DELETE /projects/:id removes the project and every child row.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	return withID(c, func(id uuid.UUID) error {
		if err := h.Service.Delete(c.UserContext(), id); err != nil {
			log.Warn().Err(err).Str("project_id", id.String()).Msg("projects: delete failed")
			return apperr.Respond(c, err)
		}
		return response.Success(c, "Project permanently deleted", fiber.Map{"id": id}, nil)
	})
}

// History GET /projects/:id/history
func (h *Handlers) History(c *fiber.Ctx) error {
	return withID(c, func(id uuid.UUID) error {
		rows, err := h.Service.ListHistory(c.UserContext(), id)
		if err != nil {
			return apperr.Respond(c, err)
		}
		return response.Success(c, "History fetched", rows, nil)
	})
}

// Touches GET /projects/:id/touches
func (h *Handlers) Touches(c *fiber.Ctx) error {
	return withID(c, func(id uuid.UUID) error {
		rows, err := h.Service.ListTouches(c.UserContext(), id)
		if err != nil {
			return apperr.Respond(c, err)
		}
		return response.Success(c, "Touches fetched", rows, nil)
	})
}

// AddNote POST /projects/:id/notes {content}
func (h *Handlers) AddNote(c *fiber.Ctx) error {
	return withID(c, func(id uuid.UUID) error {
		var b struct {
			Content string `json:"content"`
		}
		if err := c.BodyParser(&b); err != nil {
			return apperr.BadRequest(c, "Invalid request body")
		}
		p, err := h.Service.AddNote(c.UserContext(), id, b.Content)
		return done(c, "Note added", p, err)
	})
}

// LogContact POST /projects/:id/contact-log {kind, detail}
func (h *Handlers) LogContact(c *fiber.Ctx) error {
	return withID(c, func(id uuid.UUID) error {
		var b struct {
			Kind   string `json:"kind"`
			Detail string `json:"detail"`
		}
		if err := c.BodyParser(&b); err != nil {
			return apperr.BadRequest(c, "Invalid request body")
		}
		p, err := h.Service.LogContact(c.UserContext(), id, b.Kind, b.Detail)
		return done(c, "Contact logged", p, err)
	})
}

// Contacts GET /projects/:id/contacts
func (h *Handlers) Contacts(c *fiber.Ctx) error {
	return withID(c, func(id uuid.UUID) error {
		rows, err := h.Service.ListContacts(c.UserContext(), id)
		if err != nil {
			return apperr.Respond(c, err)
		}
		return response.Success(c, "Contacts fetched", rows, nil)
	})
}

// AddContact POST /projects/:id/contacts
func (h *Handlers) AddContact(c *fiber.Ctx) error {
	return withID(c, func(id uuid.UUID) error {
		var b struct {
			Name      string `json:"name"`
			Email     string `json:"email"`
			Phone     string `json:"phone"`
			Role      string `json:"role"`
			IsPrimary bool   `json:"is_primary"`
		}
		if err := c.BodyParser(&b); err != nil {
			return apperr.BadRequest(c, "Invalid request body")
		}
		ct, err := h.Service.AddContact(c.UserContext(), id, pipeline.ContactInput{
			Name: b.Name, Email: b.Email, Phone: b.Phone, Role: b.Role, IsPrimary: b.IsPrimary,
		})
		if err != nil {
			return apperr.Respond(c, err)
		}
		return response.SuccessCreated(c, "Contact added", ct, nil)
	})
}

type actionBody struct {
	Note    string  `json:"note"`
	DueDate *string `json:"due_date"`
}

// SetAction PUT /projects/:id/action {note, due_date}
func (h *Handlers) SetAction(c *fiber.Ctx) error {
	return withID(c, func(id uuid.UUID) error {
		var b actionBody
		if err := c.BodyParser(&b); err != nil {
			return apperr.BadRequest(c, "Invalid request body")
		}
		due, err := apperr.OptionalDate(b.DueDate)
		if err != nil {
			return apperr.BadRequest(c, "due_date must be YYYY-MM-DD")
		}
		p, err := h.Service.SetAction(c.UserContext(), id, b.Note, due)
		return done(c, "Action set", p, err)
	})
}

// ClearAction DELETE /projects/:id/action
func (h *Handlers) ClearAction(c *fiber.Ctx) error {
	return withID(c, func(id uuid.UUID) error {
		p, err := h.Service.ClearAction(c.UserContext(), id)
		return done(c, "Action cleared", p, err)
	})
}

// Step adapts a one-call state change (won, archive, promote, ...) to a handler.
func (h *Handlers) Step(msg string, fn func(ctx context.Context, id uuid.UUID) (*domain.Project, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return withID(c, func(id uuid.UUID) error {
			p, err := fn(c.UserContext(), id)
			return done(c, msg, p, err)
		})
	}
}

// MarkLost POST /projects/:id/lost {reason}
func (h *Handlers) MarkLost(c *fiber.Ctx) error {
	return withID(c, func(id uuid.UUID) error {
		var b struct {
			Reason string `json:"reason"`
		}
		_ = c.BodyParser(&b)
		p, err := h.Service.MarkLost(c.UserContext(), id, b.Reason)
		return done(c, "Project marked lost", p, err)
	})
}

// Park PUT /projects/:id/parked {parked}
func (h *Handlers) Park(c *fiber.Ctx) error {
	return withID(c, func(id uuid.UUID) error {
		var b struct {
			Parked bool `json:"parked"`
		}
		if err := c.BodyParser(&b); err != nil {
			return apperr.BadRequest(c, "Invalid request body")
		}
		p, err := h.Service.SetParked(c.UserContext(), id, b.Parked)
		return done(c, "Parked flag updated", p, err)
	})
}

// Close POST /projects/:id/close {amount}: final payment received, project completed.
func (h *Handlers) Close(c *fiber.Ctx) error {
	return withID(c, func(id uuid.UUID) error {
		var b struct {
			Amount float64 `json:"amount"`
		}
		if err := c.BodyParser(&b); err != nil {
			return apperr.BadRequest(c, "Invalid request body")
		}
		p, err := h.Service.CloseProject(c.UserContext(), id, b.Amount)
		return done(c, "Project closed", p, err)
	})
}
