package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"grayco-suite/internal/domain"
	"grayco-suite/internal/pkg/calendar"
	"grayco-suite/internal/pkg/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Deposit invoice stages, in order.
const (
	DepositInvoiceRequested = "invoice_requested"
	DepositInvoiceSent      = "invoice_sent"
)

// SetDepositStage ticks a deposit invoice checkbox. A stage cannot be marked sent before it was requested,
// and un-requesting also clears sent.
func (s *Service) SetDepositStage(ctx context.Context, id uuid.UUID, stage string, done bool) (*domain.Project, error) {
	return s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		fields := map[string]interface{}{}
		switch stage {
		case DepositInvoiceRequested:
			fields["deposit_invoice_requested"] = done
			p.DepositInvoiceRequested = done
			if !done {
				fields["deposit_invoice_sent"] = false
				p.DepositInvoiceSent = false
			}
		case DepositInvoiceSent:
			if done && !p.DepositInvoiceRequested {
				return ErrDepositStageOrder
			}
			fields["deposit_invoice_sent"] = done
			p.DepositInvoiceSent = done
		default:
			return ErrUnknownDepositStage
		}
		if err := s.update(tx, p, fields); err != nil {
			return err
		}
		return s.appendTouch(tx, p.ID, domain.TouchChecklist, fmt.Sprintf("Deposit checklist: %s = %t", stage, done))
	})
}

// ConfirmDeposit records the deposit and locks production in one transaction.
// Both spec references must exist; the amount entered does not matter to that gate.
func (s *Service) ConfirmDeposit(ctx context.Context, id uuid.UUID, amount float64, received time.Time) (*domain.Project, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	amount = money.Round2(amount)
	day := calendar.Civil(received)
	if received.IsZero() {
		day = s.today()
	}
	return s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		if !SpecsReady(p) {
			return ErrSpecsMissing
		}
		if p.Status.Closed() {
			return ErrTransitionNotAllowed
		}
		if _, err := s.upsertCommission(tx, p.ID, func(c *domain.Commission, inserted bool) {
			c.DepositAmount = amount
			c.DepositReceivedDate = &day
			if inserted && p.EstimatedValue != nil {
				v := *p.EstimatedValue
				c.TotalValue = &v
			}
		}); err != nil {
			return err
		}
		if err := s.update(tx, p, map[string]interface{}{
			"deposit_amount":        amount,
			"deposit_received_date": day,
			"production_locked":     true,
		}); err != nil {
			return err
		}
		p.DepositAmount, p.DepositReceivedDate, p.ProductionLocked = &amount, &day, true

		msg := fmt.Sprintf("[SYSTEM] Deposit of %s received %s - Production locked", money.Format(amount), day.Format("2006-01-02"))
		if p.Status == domain.StatusActiveProduction {
			if err := s.appendHistory(tx, p.ID, domain.EntryNote, msg, nil); err != nil {
				return err
			}
		} else if err := s.setStatus(tx, p, domain.StatusActiveProduction, msg, nil); err != nil {
			return err
		}
		return s.appendTouch(tx, p.ID, domain.TouchDepositReceived, "Deposit received: "+money.Format(amount))
	})
}

// PermitInput updates the permit block; a non-nil DateApplied moves an open job to permit_pending.
type PermitInput struct {
	PermitNumber      string
	PermitOfficePhone string
	SiteAddress       string
	DateApplied       *time.Time
}

func (s *Service) UpdatePermit(ctx context.Context, id uuid.UUID, in PermitInput) (*domain.Project, error) {
	return s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		fields := map[string]interface{}{
			"permit_number":       strings.TrimSpace(in.PermitNumber),
			"permit_office_phone": strings.TrimSpace(in.PermitOfficePhone),
		}
		p.PermitNumber = strings.TrimSpace(in.PermitNumber)
		p.PermitOfficePhone = strings.TrimSpace(in.PermitOfficePhone)
		if addr := strings.TrimSpace(in.SiteAddress); addr != "" {
			fields["site_address"] = addr
			p.SiteAddress = addr
		}
		if in.DateApplied != nil {
			d := calendar.Civil(*in.DateApplied)
			fields["date_applied"] = d
			p.DateApplied = &d
		}
		if err := s.update(tx, p, fields); err != nil {
			return err
		}
		if in.DateApplied != nil && !p.Status.Closed() && p.Status != domain.StatusPermitPending {
			return s.setStatus(tx, p, domain.StatusPermitPending, "[SYSTEM] Permit applied - Project moved to permit_pending", nil)
		}
		return nil
	})
}
