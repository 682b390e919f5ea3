package outreach

import (
	"context"

	outreachsvc "grayco-suite/internal/application/outreach"
	"grayco-suite/internal/interfaces/handlers/apperr"
	"grayco-suite/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Handlers send the shop's outbound emails over /api/v1/projects/:id/emails/:kind.
type Handlers struct {
	Service *outreachsvc.Service
}

type sendBody struct {
	To          string `json:"to"`
	InvoiceLink string `json:"invoice_link"`
}

type sendFunc func(ctx context.Context, s *outreachsvc.Service, id uuid.UUID, b sendBody) (*outreachsvc.Outcome, error)

var kindOrder = []string{
	outreachsvc.KindDesignRequest, outreachsvc.KindPricingRequest, outreachsvc.KindProposal,
	outreachsvc.KindDepositRequest, outreachsvc.KindDepositInvoice, outreachsvc.KindInstallPrep,
	outreachsvc.KindFinalInvoice, outreachsvc.KindNightBefore, outreachsvc.KindVictoryLap,
}

var kinds = map[string]sendFunc{
	outreachsvc.KindDesignRequest: func(ctx context.Context, s *outreachsvc.Service, id uuid.UUID, _ sendBody) (*outreachsvc.Outcome, error) {
		return s.SendDesignRequest(ctx, id)
	},
	outreachsvc.KindPricingRequest: func(ctx context.Context, s *outreachsvc.Service, id uuid.UUID, _ sendBody) (*outreachsvc.Outcome, error) {
		return s.SendPricingRequest(ctx, id)
	},
	outreachsvc.KindProposal: func(ctx context.Context, s *outreachsvc.Service, id uuid.UUID, b sendBody) (*outreachsvc.Outcome, error) {
		return s.SendProposal(ctx, id, b.To)
	},
	outreachsvc.KindDepositRequest: func(ctx context.Context, s *outreachsvc.Service, id uuid.UUID, _ sendBody) (*outreachsvc.Outcome, error) {
		return s.RequestDepositInvoice(ctx, id)
	},
	outreachsvc.KindDepositInvoice: func(ctx context.Context, s *outreachsvc.Service, id uuid.UUID, b sendBody) (*outreachsvc.Outcome, error) {
		return s.SendDepositInvoice(ctx, id, b.To, b.InvoiceLink)
	},
	outreachsvc.KindInstallPrep: func(ctx context.Context, s *outreachsvc.Service, id uuid.UUID, b sendBody) (*outreachsvc.Outcome, error) {
		return s.SendInstallPrep(ctx, id, b.To)
	},
	outreachsvc.KindFinalInvoice: func(ctx context.Context, s *outreachsvc.Service, id uuid.UUID, _ sendBody) (*outreachsvc.Outcome, error) {
		return s.RequestFinalInvoice(ctx, id)
	},
	outreachsvc.KindNightBefore: func(ctx context.Context, s *outreachsvc.Service, id uuid.UUID, b sendBody) (*outreachsvc.Outcome, error) {
		return s.SendNightBefore(ctx, id, b.To)
	},
	outreachsvc.KindVictoryLap: func(ctx context.Context, s *outreachsvc.Service, id uuid.UUID, b sendBody) (*outreachsvc.Outcome, error) {
		return s.SendVictoryLap(ctx, id, b.To)
	},
}

// Send POST /projects/:id/emails/:kind {to, invoice_link}.
// A delivery failure is still a 200: the outcome says what happened and the status did not move.
func (h *Handlers) Send(c *fiber.Ctx) error {
	id, ok := apperr.ProjectID(c)
	if !ok {
		return apperr.InvalidID(c)
	}
	fn, ok := kinds[c.Params("kind")]
	if !ok {
		return response.Error(c, "Unknown email kind", fiber.StatusNotFound, fiber.Map{"kind": c.Params("kind")})
	}
	var b sendBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&b); err != nil {
			return apperr.BadRequest(c, "Invalid request body")
		}
	}
	out, err := fn(c.UserContext(), h.Service, id, b)
	if err != nil {
		return apperr.Respond(c, err)
	}
	if !out.Result.Succeeded() {
		zerolog.Ctx(c.UserContext()).Warn().Str("project_id", id.String()).Str("kind", c.Params("kind")).Msg("outreach: email not delivered")
		return response.Success(c, out.Result.Message, out, nil)
	}
	return response.Success(c, "Email sent", out, nil)
}

// Kinds GET /emails/kinds lists what Send accepts.
func (h *Handlers) Kinds(c *fiber.Ctx) error {
	return response.Success(c, "Email kinds", kindOrder, nil)
}
