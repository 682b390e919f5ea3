package alerts

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"grayco-suite/internal/application/pipeline"
	"grayco-suite/internal/domain"
	"grayco-suite/internal/pkg/calendar"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// DefaultSnooze is used when Snooze is called without a duration.
const DefaultSnooze = 24 * time.Hour

// SnoozeKeyPrefix namespaces the Redis snooze mirror.
const SnoozeKeyPrefix = "snooze:"

var ErrInvalidSnooze = errors.New("Snooze hours must be greater than zero")

// Alert is one row on the dashboard.
type Alert struct {
	ProjectID    uuid.UUID     `json:"project_id"`
	ClientName   string        `json:"client_name"`
	Status       domain.Status `json:"status"`
	Kind         string        `json:"kind"`
	Message      string        `json:"message"`
	BusinessDays int           `json:"business_days,omitempty"`
	Email        string        `json:"email,omitempty"`
	Note         string        `json:"note,omitempty"`
	Date         *time.Time    `json:"date,omitempty"`
}

// Dashboard is every alert bucket at once.
type Dashboard struct {
	Nudges      []Alert `json:"nudges"`
	VictoryLap  []Alert `json:"victory_lap"`
	Urgent      []Alert `json:"urgent"`
	ActionItems []Alert `json:"action_items"`
	PulseChecks []Alert `json:"pulse_checks"`
	Deadline    string  `json:"deadline,omitempty"`
}

// Service reads alert buckets for a tenant. Redis is optional and only mirrors snoozes.
type Service struct {
	DB       *gorm.DB
	Redis    *redis.Client
	TenantID uuid.UUID
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) activeProjects(ctx context.Context) ([]domain.Project, error) {
	var rows []domain.Project
	err := s.DB.WithContext(ctx).
		Where("tenant_id = ? AND is_active_v3 = ?", s.TenantID, true).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return pipeline.DropFlagged(ctx, rows), nil
}

func snoozeKey(id uuid.UUID) string {
	return SnoozeKeyPrefix + id.String()
}

// mirroredSnooze reports whether Redis holds a live snooze for id. Redis errors are logged and ignored.
func (s *Service) mirroredSnooze(ctx context.Context, id uuid.UUID) bool {
	if s.Redis == nil {
		return false
	}
	n, err := s.Redis.Exists(ctx, snoozeKey(id)).Result()
	if err != nil {
		log.Warn().Err(err).Str("project_id", id.String()).Msg("alerts: snooze mirror lookup failed")
		return false
	}
	return n > 0
}

// Nudges returns stale-stage reminders, oldest status change first.
func (s *Service) Nudges(ctx context.Context) ([]Alert, error) {
	rows, err := s.activeProjects(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].StatusUpdatedAt, rows[j].StatusUpdatedAt
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.Before(*b)
	})
	out := []Alert{}
	for _, p := range rows {
		n, ok := Evaluate(Input{Status: p.Status, StatusUpdatedAt: p.StatusUpdatedAt, SnoozeUntil: p.SnoozeUntil}, now)
		if !ok || s.mirroredSnooze(ctx, p.ID) {
			continue
		}
		out = append(out, Alert{
			ProjectID:    p.ID,
			ClientName:   p.ClientName,
			Status:       p.Status,
			Kind:         n.Kind,
			Message:      n.Message,
			BusinessDays: n.Days,
		})
	}
	return out, nil
}

// VictoryLap lists jobs installed yesterday that are still open, by client name.
func (s *Service) VictoryLap(ctx context.Context) ([]Alert, error) {
	yesterday := calendar.Today(s.now()).AddDate(0, 0, -1)
	var logistics []domain.ProductionLogistics
	if err := s.DB.WithContext(ctx).
		Where("tenant_id = ? AND target_installation_date IS NOT NULL", s.TenantID).
		Find(&logistics).Error; err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0)
	installed := map[uuid.UUID]time.Time{}
	for _, l := range logistics {
		if calendar.SameDay(*l.TargetInstallationDate, yesterday) {
			ids = append(ids, l.ProjectID)
			installed[l.ProjectID] = calendar.Civil(*l.TargetInstallationDate)
		}
	}
	out := []Alert{}
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.Project
	if err := s.DB.WithContext(ctx).
		Where("tenant_id = ? AND is_active_v3 = ? AND id IN ?", s.TenantID, true, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range pipeline.DropFlagged(ctx, rows) {
		if p.Status.Closed() {
			continue
		}
		email, err := s.primaryEmail(ctx, &p)
		if err != nil {
			return nil, err
		}
		d := installed[p.ID]
		out = append(out, Alert{
			ProjectID:  p.ID,
			ClientName: p.ClientName,
			Status:     p.Status,
			Kind:       KindVictoryLap,
			Message:    "Victory Lap: " + p.DisplayName() + " was installed yesterday. Send thank you / Request review!",
			Email:      email,
			Date:       &d,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].ClientName) < strings.ToLower(out[j].ClientName)
	})
	return out, nil
}

func (s *Service) primaryEmail(ctx context.Context, p *domain.Project) (string, error) {
	var c domain.Contact
	err := s.DB.WithContext(ctx).
		Where("project_id = ? AND tenant_id = ? AND is_primary = ?", p.ID, s.TenantID, true).
		First(&c).Error
	if err == nil && c.Email != "" {
		return c.Email, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	return p.PrimaryContactEmail, nil
}

// Urgent lists CONFIRMED jobs with a deposit on file, oldest deposit first. Elapsed time does not matter.
func (s *Service) Urgent(ctx context.Context) ([]Alert, error) {
	rows, err := s.activeProjects(ctx)
	if err != nil {
		return nil, err
	}
	out := []Alert{}
	for _, p := range rows {
		if p.Status != domain.StatusConfirmed || p.DepositReceivedDate == nil {
			continue
		}
		d := calendar.Civil(*p.DepositReceivedDate)
		out = append(out, Alert{
			ProjectID:  p.ID,
			ClientName: p.ClientName,
			Status:     p.Status,
			Kind:       KindUrgent,
			Message:    "Confirmed - not yet submitted for pay period",
			Note:       p.ActionNote,
			Date:       &d,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(*out[j].Date) })
	return out, nil
}

// ActionItems lists pending actions by due date, undated items last.
func (s *Service) ActionItems(ctx context.Context) ([]Alert, error) {
	rows, err := s.activeProjects(ctx)
	if err != nil {
		return nil, err
	}
	kept := make([]domain.Project, 0, len(rows))
	for _, p := range rows {
		if !p.PendingAction || p.Status.Is(domain.StatusArchived, domain.StatusClosedWon, domain.StatusClosedLost) {
			continue
		}
		kept = append(kept, p)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if !sameDate(a.ActionDueDate, b.ActionDueDate) {
			if a.ActionDueDate == nil || b.ActionDueDate == nil {
				return b.ActionDueDate == nil
			}
			return calendar.Civil(*a.ActionDueDate).Before(calendar.Civil(*b.ActionDueDate))
		}
		// Then least recently touched first, never-touched leading.
		if a.LastTouched == nil || b.LastTouched == nil {
			return a.LastTouched == nil && b.LastTouched != nil
		}
		return a.LastTouched.Before(*b.LastTouched)
	})
	out := make([]Alert, 0, len(kept))
	for _, p := range kept {
		var due *time.Time
		if p.ActionDueDate != nil {
			d := calendar.Civil(*p.ActionDueDate)
			due = &d
		}
		out = append(out, Alert{
			ProjectID:  p.ID,
			ClientName: p.ClientName,
			Status:     p.Status,
			Kind:       KindActionItem,
			Message:    p.ActionNote,
			Note:       p.ActionNote,
			Date:       due,
		})
	}
	return out, nil
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return calendar.SameDay(*a, *b)
}

// PulseChecks lists production jobs due a 10-day or 14-day check-in since their deposit.
func (s *Service) PulseChecks(ctx context.Context) ([]Alert, error) {
	rows, err := s.activeProjects(ctx)
	if err != nil {
		return nil, err
	}
	today := calendar.Today(s.now())
	out := []Alert{}
	for _, p := range rows {
		if !p.Status.InProduction() || p.DepositReceivedDate == nil {
			continue
		}
		n, ok := Pulse(*p.DepositReceivedDate, today)
		if !ok {
			continue
		}
		d := calendar.Civil(*p.DepositReceivedDate)
		out = append(out, Alert{
			ProjectID:  p.ID,
			ClientName: p.ClientName,
			Status:     p.Status,
			Kind:       n.Kind,
			Message:    n.Message,
			Date:       &d,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(*out[j].Date) })
	return out, nil
}

// Snooze hides a project's nudges for d (DefaultSnooze when zero). Status and due dates are untouched.
func (s *Service) Snooze(ctx context.Context, id uuid.UUID, d time.Duration) (time.Time, error) {
	if d < 0 {
		return time.Time{}, ErrInvalidSnooze
	}
	if d == 0 {
		d = DefaultSnooze
	}
	until := s.now().Add(d)
	res := s.DB.WithContext(ctx).Model(&domain.Project{}).
		Where("id = ? AND tenant_id = ?", id, s.TenantID).
		Update("snooze_until", until)
	if res.Error != nil {
		return time.Time{}, res.Error
	}
	if res.RowsAffected == 0 {
		return time.Time{}, pipeline.ErrProjectNotFound
	}
	if s.Redis != nil {
		if err := s.Redis.Set(ctx, snoozeKey(id), until.Format(time.RFC3339), d).Err(); err != nil {
			log.Warn().Err(err).Str("project_id", id.String()).Msg("alerts: snooze mirror write failed")
		}
	}
	return until, nil
}

// Dashboard gathers every bucket concurrently.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { d.Nudges, err = s.Nudges(gctx); return })
	g.Go(func() (err error) { d.VictoryLap, err = s.VictoryLap(gctx); return })
	g.Go(func() (err error) { d.Urgent, err = s.Urgent(gctx); return })
	g.Go(func() (err error) { d.ActionItems, err = s.ActionItems(gctx); return })
	g.Go(func() (err error) { d.PulseChecks, err = s.PulseChecks(gctx); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if msg, ok := calendar.DeadlineReminder(calendar.Today(s.now())); ok {
		d.Deadline = msg
	}
	return &d, nil
}
