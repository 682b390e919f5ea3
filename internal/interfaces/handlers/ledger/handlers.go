package ledger

import (
	"errors"
	"time"

	ledgersvc "grayco-suite/internal/application/ledger"
	"grayco-suite/internal/interfaces/handlers/apperr"
	"grayco-suite/internal/pkg/calendar"
	"grayco-suite/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

var errBadDate = errors.New("date must be YYYY-MM-DD")

// Handlers serve the owner-only commission ledger under /api/v1/ledger.
type Handlers struct {
	Service *ledgersvc.Service
}

// Events GET /ledger/events: every paid deposit and final payment, newest first.
func (h *Handlers) Events(c *fiber.Ctx) error {
	events, err := h.Service.Events(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return response.Success(c, "Ledger fetched", events, ledgersvc.Summarize(events))
}

// Periods GET /ledger/periods groups the events by pay period.
func (h *Handlers) Periods(c *fiber.Ctx) error {
	groups, err := h.Service.Periods(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return response.List(c, "Pay periods fetched", groups, nil)
}

// report resolves ?year=&month=&period= when given, else ?date= (default today).
func (h *Handlers) report(c *fiber.Ctx) (*ledgersvc.Report, error) {
	ctx := c.UserContext()
	if c.Query("period") != "" {
		today := calendar.Today(time.Now())
		year, err := apperr.QueryInt(c, "year", today.Year())
		if err != nil {
			return nil, ledgersvc.ErrInvalidPeriod
		}
		month, err := apperr.QueryInt(c, "month", int(today.Month()))
		if err != nil || month < 1 || month > 12 {
			return nil, ledgersvc.ErrInvalidPeriod
		}
		period, err := apperr.QueryInt(c, "period", 0)
		if err != nil {
			return nil, ledgersvc.ErrInvalidPeriod
		}
		return h.Service.ReportForPeriod(ctx, year, time.Month(month), calendar.Period(period))
	}
	day := calendar.Today(time.Now())
	if raw := c.Query("date"); raw != "" {
		d, err := apperr.ParseDate(raw)
		if err != nil {
			return nil, errBadDate
		}
		day = d
	}
	return h.Service.Report(ctx, day)
}

// Report GET /ledger/report renders without sending.
func (h *Handlers) Report(c *fiber.Ctx) error {
	r, err := h.report(c)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Commission report", r, nil)
}

// SendReport POST /ledger/report/send mails the report to the pricing contact.
func (h *Handlers) SendReport(c *fiber.Ctx) error {
	r, err := h.report(c)
	if err != nil {
		return h.fail(c, err)
	}
	res, err := h.Service.SendReport(c.UserContext(), r)
	if err != nil {
		return apperr.Respond(c, err)
	}
	if !res.Succeeded() {
		return response.Error(c, res.Message, fiber.StatusBadGateway, fiber.Map{"period": r.Period.Range})
	}
	return response.Success(c, res.Message, fiber.Map{"period": r.Period, "summary": r.Summary}, nil)
}

// SetRate PUT /ledger/projects/:id/rate {rate, paid_status}
func (h *Handlers) SetRate(c *fiber.Ctx) error {
	id, ok := apperr.ProjectID(c)
	if !ok {
		return apperr.InvalidID(c)
	}
	var b struct {
		Rate       *float64 `json:"rate"`
		PaidStatus *string  `json:"paid_status"`
	}
	if err := c.BodyParser(&b); err != nil || b.Rate == nil {
		return apperr.BadRequest(c, "rate is required")
	}
	if err := h.Service.SetRate(c.UserContext(), id, *b.Rate, b.PaidStatus); err != nil {
		return apperr.Respond(c, err)
	}
	return response.Success(c, "Commission rate updated", fiber.Map{"id": id, "rate": *b.Rate}, nil)
}

func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	if errors.Is(err, errBadDate) {
		return apperr.BadRequest(c, err.Error())
	}
	return apperr.Respond(c, err)
}
