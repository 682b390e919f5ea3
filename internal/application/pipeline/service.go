package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"grayco-suite/internal/domain"
	"grayco-suite/internal/pkg/calendar"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service owns every write to a project's pipeline state. All queries are scoped to TenantID.
type Service struct {
	DB       *gorm.DB
	TenantID uuid.UUID
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) today() time.Time {
	return calendar.Today(s.now())
}

// load fetches a tenant-scoped project inside tx.
func (s *Service) load(tx *gorm.DB, id uuid.UUID) (*domain.Project, error) {
	var p domain.Project
	if err := tx.Where("id = ? AND tenant_id = ?", id, s.TenantID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

// update writes the given columns to the project row and mirrors them onto p.
func (s *Service) update(tx *gorm.DB, p *domain.Project, fields map[string]interface{}) error {
	now := s.now()
	fields["updated_at"] = now
	if err := tx.Model(&domain.Project{}).
		Where("id = ? AND tenant_id = ?", p.ID, s.TenantID).
		Updates(fields).Error; err != nil {
		return err
	}
	p.UpdatedAt = now
	return nil
}

// setStatus moves p to next, stamps status_updated_at and records a STATUS_CHANGE entry.
func (s *Service) setStatus(tx *gorm.DB, p *domain.Project, next domain.Status, message string, extra map[string]interface{}) error {
	now := s.now()
	fields := map[string]interface{}{
		"status":            next,
		"status_updated_at": now,
	}
	for k, v := range extra {
		fields[k] = v
	}
	prev := p.Status
	if err := s.update(tx, p, fields); err != nil {
		return err
	}
	p.Status = next
	p.StatusUpdatedAt = &now
	if message == "" {
		return nil
	}
	return s.appendHistory(tx, p.ID, domain.EntryStatusChange, message, map[string]interface{}{
		"from": string(prev),
		"to":   string(next),
	})
}

func (s *Service) appendHistory(tx *gorm.DB, projectID uuid.UUID, entryType, content string, meta map[string]interface{}) error {
	h := domain.ProjectHistory{
		TenantID:  s.TenantID,
		ProjectID: projectID,
		EntryType: entryType,
		Content:   content,
		CreatedAt: s.now(),
	}
	if len(meta) > 0 {
		b, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		h.Metadata = datatypes.JSON(b)
	}
	return tx.Create(&h).Error
}

func (s *Service) appendTouch(tx *gorm.DB, projectID uuid.UUID, touchType, description string) error {
	now := s.now()
	t := domain.ProjectTouch{
		TenantID:    s.TenantID,
		ProjectID:   projectID,
		TouchType:   touchType,
		Description: description,
		CreatedAt:   now,
	}
	if err := tx.Create(&t).Error; err != nil {
		return err
	}
	return tx.Model(&domain.Project{}).
		Where("id = ? AND tenant_id = ?", projectID, s.TenantID).
		Updates(map[string]interface{}{"last_touched": now}).Error
}

// upsertCommission finds the project's commission row (or starts a new one), applies mutate and saves it.
// inserted reports whether the row was new so callers can seed insert-only fields.
func (s *Service) upsertCommission(tx *gorm.DB, projectID uuid.UUID, mutate func(c *domain.Commission, inserted bool)) (*domain.Commission, error) {
	var c domain.Commission
	err := tx.Where("project_id = ? AND tenant_id = ?", projectID, s.TenantID).First(&c).Error
	switch {
	case err == nil:
		mutate(&c, false)
		c.UpdatedAt = s.now()
		if err := tx.Save(&c).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		c = domain.Commission{TenantID: s.TenantID, ProjectID: projectID, CreatedAt: s.now(), UpdatedAt: s.now()}
		mutate(&c, true)
		if err := tx.Create(&c).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return &c, nil
}

// mutate runs fn against a freshly loaded project inside one transaction.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(tx *gorm.DB, p *domain.Project) error) (*domain.Project, error) {
	var out *domain.Project
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if err := fn(tx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one project.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return s.load(s.DB.WithContext(ctx), id)
}

// Commission returns the project's commission row, or nil when none has been recorded yet.
func (s *Service) Commission(ctx context.Context, id uuid.UUID) (*domain.Commission, error) {
	var c domain.Commission
	err := s.DB.WithContext(ctx).Where("project_id = ? AND tenant_id = ?", id, s.TenantID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListHistory returns the audit log newest first.
func (s *Service) ListHistory(ctx context.Context, id uuid.UUID) ([]domain.ProjectHistory, error) {
	var out []domain.ProjectHistory
	err := s.DB.WithContext(ctx).
		Where("project_id = ? AND tenant_id = ?", id, s.TenantID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// ListTouches returns the touch timeline newest first.
func (s *Service) ListTouches(ctx context.Context, id uuid.UUID) ([]domain.ProjectTouch, error) {
	var out []domain.ProjectTouch
	err := s.DB.WithContext(ctx).
		Where("project_id = ? AND tenant_id = ?", id, s.TenantID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// DropFlagged leaves out rows whose stored status is outside the enumeration, logging each one,
// so one bad row never fails a whole list.
func DropFlagged(ctx context.Context, rows []domain.Project) []domain.Project {
	known, flagged := domain.SplitUnknownStatus(rows)
	for _, p := range flagged {
		zerolog.Ctx(ctx).Warn().Str("project_id", p.ID.String()).Str("status", string(p.Status)).
			Msg("pipeline: unrecognized status, row left out")
	}
	return known
}

// Pipeline sort orders.
const (
	SortNameAsc     = "name_asc"
	SortNewest      = "newest"
	SortLastUpdated = "last_updated"
)

// ListPipeline returns promoted projects that are still in play (not archived, won or lost).
func (s *Service) ListPipeline(ctx context.Context, order string) ([]domain.Project, error) {
	if order == "" {
		order = SortLastUpdated
	}
	if order != SortNameAsc && order != SortNewest && order != SortLastUpdated {
		return nil, ErrInvalidSort
	}
	var rows []domain.Project
	if err := s.DB.WithContext(ctx).
		Where("tenant_id = ? AND is_active_v3 = ?", s.TenantID, true).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	rows = DropFlagged(ctx, rows)
	out := rows[:0]
	for _, p := range rows {
		if p.Status.Is(domain.StatusArchived, domain.StatusClosedWon, domain.StatusClosedLost) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		switch order {
		case SortNameAsc:
			return strings.ToLower(out[i].ClientName) < strings.ToLower(out[j].ClientName)
		case SortNewest:
			return out[i].CreatedAt.After(out[j].CreatedAt)
		default:
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
	})
	return out, nil
}

// ListByStatus returns tenant projects currently in any of the given statuses.
func (s *Service) ListByStatus(ctx context.Context, statuses ...domain.Status) ([]domain.Project, error) {
	var rows []domain.Project
	if err := s.DB.WithContext(ctx).Where("tenant_id = ?", s.TenantID).Find(&rows).Error; err != nil {
		return nil, err
	}
	rows = DropFlagged(ctx, rows)
	out := rows[:0]
	for _, p := range rows {
		if p.Status.Is(statuses...) {
			out = append(out, p)
		}
	}
	return out, nil
}
