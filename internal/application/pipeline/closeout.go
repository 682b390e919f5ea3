package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"grayco-suite/internal/domain"
	"grayco-suite/internal/pkg/calendar"
	"grayco-suite/internal/pkg/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CloseProject records the final payment for a production job.
// A job whose install is still ahead lands in CONFIRMED so it stays on the active dashboard.
func (s *Service) CloseProject(ctx context.Context, id uuid.UUID, amount float64) (*domain.Project, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	amount = money.Round2(amount)
	today := s.today()
	return s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		if !p.Status.InProduction() {
			return ErrTransitionNotAllowed
		}
		var logi domain.ProductionLogistics
		err := tx.Where("project_id = ? AND tenant_id = ?", p.ID, s.TenantID).First(&logi).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		next := domain.StatusCompleted
		if err == nil && logi.TargetInstallationDate != nil && calendar.Civil(*logi.TargetInstallationDate).After(today) {
			next = domain.StatusConfirmed
		}

		if _, err := s.upsertCommission(tx, p.ID, func(c *domain.Commission, inserted bool) {
			c.TotalAmountReceived = amount
			c.FinalPaymentDate = &today
			if inserted {
				v := amount
				c.TotalValue = &v
			}
		}); err != nil {
			return err
		}
		msg := fmt.Sprintf("[SYSTEM] Project closed out - Final payment %s recorded", money.Format(amount))
		if err := s.setStatus(tx, p, next, msg, map[string]interface{}{"paid_status": "paid"}); err != nil {
			return err
		}
		p.PaidStatus = "paid"
		return s.appendTouch(tx, p.ID, domain.TouchProjectClosed, "Project closed: "+money.Format(amount))
	})
}

// MarkWon is the manual escape hatch to Closed - Won.
func (s *Service) MarkWon(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		if !CanMarkWon(p.Status) {
			return ErrTransitionNotAllowed
		}
		return s.setStatus(tx, p, domain.StatusClosedWon, "[SYSTEM] Project marked as won", nil)
	})
}

// MarkLost is the manual escape hatch to Closed - Lost.
func (s *Service) MarkLost(ctx context.Context, id uuid.UUID, reason string) (*domain.Project, error) {
	reason = strings.TrimSpace(reason)
	return s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		if !CanMarkLost(p.Status) {
			return ErrTransitionNotAllowed
		}
		msg := "[SYSTEM] Project marked as lost"
		if reason != "" {
			msg += ": " + reason
		}
		p.LossReason = reason
		return s.setStatus(tx, p, domain.StatusClosedLost, msg, map[string]interface{}{"loss_reason": reason})
	})
}

// Archive is a soft status change; nothing is deleted.
func (s *Service) Archive(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		if p.Status == domain.StatusArchived {
			return ErrTransitionNotAllowed
		}
		return s.setStatus(tx, p, domain.StatusArchived, fmt.Sprintf("[SYSTEM] Project archived from %s", p.Status), nil)
	})
}

// Restore brings an archived project back to Block A whatever it was before.
func (s *Service) Restore(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		if p.Status != domain.StatusArchived {
			return ErrTransitionNotAllowed
		}
		return s.setStatus(tx, p, domain.StatusBlockA, "[SYSTEM] Project restored to Block A", nil)
	})
}

// SetAction flags the project as needing operator attention.
func (s *Service) SetAction(ctx context.Context, id uuid.UUID, note string, due *time.Time) (*domain.Project, error) {
	note = strings.TrimSpace(note)
	return s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		fields := map[string]interface{}{
			"pending_action":  true,
			"action_note":     note,
			"action_due_date": nil,
		}
		p.PendingAction, p.ActionNote, p.ActionDueDate = true, note, nil
		if due != nil {
			d := calendar.Civil(*due)
			fields["action_due_date"] = d
			p.ActionDueDate = &d
		}
		return s.update(tx, p, fields)
	})
}

func (s *Service) ClearAction(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		return s.clearAction(tx, p)
	})
}

func (s *Service) clearAction(tx *gorm.DB, p *domain.Project) error {
	p.PendingAction, p.ActionNote, p.ActionDueDate = false, "", nil
	return s.update(tx, p, map[string]interface{}{
		"pending_action":  false,
		"action_note":     "",
		"action_due_date": nil,
	})
}

// CompleteNightBefore clears the pending action after the install confirmation went out.
func (s *Service) CompleteNightBefore(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		if err := s.clearAction(tx, p); err != nil {
			return err
		}
		return s.appendHistory(tx, p.ID, domain.EntryAutoComplete, "[SYSTEM] Night-before confirmation sent - Action cleared", nil)
	})
}

// Promote puts a project on the active pipeline board.
func (s *Service) Promote(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return s.setFlag(ctx, id, "is_active_v3", true, func(p *domain.Project) { p.IsActiveV3 = true })
}

func (s *Service) Demote(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return s.setFlag(ctx, id, "is_active_v3", false, func(p *domain.Project) { p.IsActiveV3 = false })
}

func (s *Service) SetParked(ctx context.Context, id uuid.UUID, parked bool) (*domain.Project, error) {
	return s.setFlag(ctx, id, "is_parked", parked, func(p *domain.Project) { p.IsParked = parked })
}

func (s *Service) setFlag(ctx context.Context, id uuid.UUID, column string, v bool, apply func(*domain.Project)) (*domain.Project, error) {
	return s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		apply(p)
		return s.update(tx, p, map[string]interface{}{column: v})
	})
}
