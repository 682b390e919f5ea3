package ledger

import (
	"context"
	"errors"
	"time"

	"grayco-suite/internal/application/emails"
	"grayco-suite/internal/application/pipeline"
	"grayco-suite/internal/domain"
	"grayco-suite/internal/pkg/calendar"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	ErrNoPayments    = errors.New("No payments in this period to report")
	ErrInvalidRate   = errors.New("Commission rate must be between 0 and 100")
	ErrNoRecipient   = errors.New("Commission report recipient is not configured")
	ErrInvalidPeriod = errors.New("Period must be 1 or 2")
)

// Service reads paid commissions and produces period reports.
type Service struct {
	DB        *gorm.DB
	TenantID  uuid.UUID
	Now       func() time.Time
	Sender    emails.Sender
	Recipient string
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Rows loads every active project that has a commission record.
func (s *Service) Rows(ctx context.Context) ([]Row, error) {
	db := s.DB.WithContext(ctx)
	var comms []domain.Commission
	if err := db.Where("tenant_id = ?", s.TenantID).Find(&comms).Error; err != nil {
		return nil, err
	}
	if len(comms) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(comms))
	for _, c := range comms {
		ids = append(ids, c.ProjectID)
	}
	var projects []domain.Project
	if err := db.Where("tenant_id = ? AND is_active_v3 = ? AND id IN ?", s.TenantID, true, ids).
		Find(&projects).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]domain.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}
	rows := make([]Row, 0, len(projects))
	for _, c := range comms {
		p, ok := byID[c.ProjectID]
		if !ok {
			continue
		}
		rows = append(rows, Row{
			ProjectID:      p.ID,
			ClientName:     p.ClientName,
			Status:         p.Status,
			EstimatedValue: p.EstimatedValue,
			CommissionRate: p.CommissionRate,
			Commission:     c,
		})
	}
	return rows, nil
}

// Events returns every payment event, newest first.
func (s *Service) Events(ctx context.Context) ([]Event, error) {
	rows, err := s.Rows(ctx)
	if err != nil {
		return nil, err
	}
	return BuildEvents(rows), nil
}

// Periods returns the ledger grouped by pay period.
func (s *Service) Periods(ctx context.Context) ([]Group, error) {
	events, err := s.Events(ctx)
	if err != nil {
		return nil, err
	}
	return GroupByPeriod(events), nil
}

// Report renders the report due on today: the just-closed period on deadline days, else the one in progress.
func (s *Service) Report(ctx context.Context, today time.Time) (*Report, error) {
	return s.reportFor(ctx, calendar.ReportPeriodFor(today))
}

// ReportForPeriod renders the report for an explicit period.
func (s *Service) ReportForPeriod(ctx context.Context, year int, month time.Month, period calendar.Period) (*Report, error) {
	if period != calendar.Period1 && period != calendar.Period2 {
		return nil, ErrInvalidPeriod
	}
	return s.reportFor(ctx, calendar.PeriodRange(year, month, period))
}

func (s *Service) reportFor(ctx context.Context, period calendar.ReportPeriod) (*Report, error) {
	events, err := s.Events(ctx)
	if err != nil {
		return nil, err
	}
	return RenderReport(period, InPeriod(events, period), s.now()), nil
}

// SendReport mails a report. An empty period is refused before anything is sent.
func (s *Service) SendReport(ctx context.Context, r *Report) (emails.Result, error) {
	if len(r.Events) == 0 {
		return emails.Result{}, ErrNoPayments
	}
	if s.Recipient == "" {
		return emails.Result{}, ErrNoRecipient
	}
	res := emails.Send(ctx, s.Sender, emails.Message{To: s.Recipient, Subject: r.Subject, Body: r.Body})
	if !res.Succeeded() {
		zerolog.Ctx(ctx).Warn().Str("period", r.Period.Range).Str("detail", res.Message).Msg("ledger: commission report not sent")
	} else {
		zerolog.Ctx(ctx).Info().Str("period", r.Period.Range).Int("payments", r.Summary.Count).Msg("ledger: commission report sent")
	}
	return res, nil
}

// SetRate updates a project's commission rate and, when paidStatus is non-nil, its paid status.
func (s *Service) SetRate(ctx context.Context, id uuid.UUID, rate float64, paidStatus *string) error {
	if rate < 0 || rate > 100 {
		return ErrInvalidRate
	}
	updates := map[string]any{"commission_rate": rate, "updated_at": s.now()}
	if paidStatus != nil {
		updates["paid_status"] = *paidStatus
	}
	res := s.DB.WithContext(ctx).Model(&domain.Project{}).
		Where("id = ? AND tenant_id = ?", id, s.TenantID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pipeline.ErrProjectNotFound
	}
	return nil
}
