package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"grayco-suite/internal/domain"
	"grayco-suite/internal/pkg/calendar"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LogisticsUpdate carries the fields an operator may change. Nil leaves the stored value alone.
type LogisticsUpdate struct {
	TargetInstallationDate   *time.Time
	ProductionStatus         *string
	PaintSamplesApproved     *bool
	SiteMeasurementsVerified *bool
}

// GetLogistics returns the project's logistics row, or the defaults when none is saved yet.
func (s *Service) GetLogistics(ctx context.Context, id uuid.UUID) (*domain.ProductionLogistics, error) {
	db := s.DB.WithContext(ctx)
	if _, err := s.load(db, id); err != nil {
		return nil, err
	}
	var l domain.ProductionLogistics
	err := db.Where("project_id = ? AND tenant_id = ?", id, s.TenantID).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.ProductionLogistics{TenantID: s.TenantID, ProjectID: id, ProductionStatus: domain.ProductionWaiting}, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// SaveLogistics upserts the logistics row.
func (s *Service) SaveLogistics(ctx context.Context, id uuid.UUID, in LogisticsUpdate) (*domain.ProductionLogistics, error) {
	if in.ProductionStatus != nil && !domain.IsValidProductionStatus(*in.ProductionStatus) {
		return nil, ErrInvalidProductionStatus
	}
	var out *domain.ProductionLogistics
	_, err := s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		var l domain.ProductionLogistics
		err := tx.Where("project_id = ? AND tenant_id = ?", p.ID, s.TenantID).First(&l).Error
		inserted := false
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			inserted = true
			l = domain.ProductionLogistics{
				TenantID:         s.TenantID,
				ProjectID:        p.ID,
				ProductionStatus: domain.ProductionWaiting,
				CreatedAt:        s.now(),
			}
		case err != nil:
			return err
		}
		if in.TargetInstallationDate != nil {
			d := calendar.Civil(*in.TargetInstallationDate)
			l.TargetInstallationDate = &d
		}
		if in.ProductionStatus != nil {
			l.ProductionStatus = *in.ProductionStatus
		}
		if in.PaintSamplesApproved != nil {
			l.PaintSamplesApproved = *in.PaintSamplesApproved
		}
		if in.SiteMeasurementsVerified != nil {
			l.SiteMeasurementsVerified = *in.SiteMeasurementsVerified
		}
		l.UpdatedAt = s.now()
		if inserted {
			err = tx.Create(&l).Error
		} else {
			err = tx.Save(&l).Error
		}
		if err != nil {
			return err
		}
		desc := fmt.Sprintf("Logistics: %s", l.ProductionStatus)
		if l.TargetInstallationDate != nil {
			desc += ", install " + l.TargetInstallationDate.Format("2006-01-02")
		}
		if err := s.appendTouch(tx, p.ID, domain.TouchLogistics, desc); err != nil {
			return err
		}
		out = &l
		return nil
	})
	return out, err
}
