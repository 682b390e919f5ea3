package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Production statuses tracked on ProductionLogistics.
const (
	ProductionWaiting         = "waiting"
	ProductionInProduction    = "in_production"
	ProductionReadyForInstall = "ready_for_install"
	ProductionDelayed         = "delayed"
)

// IsValidProductionStatus reports whether s is one of the logistics production statuses.
func IsValidProductionStatus(s string) bool {
	switch s {
	case ProductionWaiting, ProductionInProduction, ProductionReadyForInstall, ProductionDelayed:
		return true
	}
	return false
}

// ProductionLogistics holds install planning for a project, one row per project.
type ProductionLogistics struct {
	ID                       uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID                 uuid.UUID  `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	ProjectID                uuid.UUID  `gorm:"column:project_id;type:uuid;not null;uniqueIndex" json:"project_id"`
	TargetInstallationDate   *time.Time `gorm:"column:target_installation_date;type:date" json:"target_installation_date"`
	ProductionStatus         string     `gorm:"column:production_status;not null;default:waiting" json:"production_status"`
	PaintSamplesApproved     bool       `gorm:"column:paint_samples_approved;not null;default:false" json:"paint_samples_approved"`
	SiteMeasurementsVerified bool       `gorm:"column:site_measurements_verified;not null;default:false" json:"site_measurements_verified"`
	CreatedAt                time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt                time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (ProductionLogistics) TableName() string {
	return "production_logistics"
}

func (l *ProductionLogistics) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// PreInstallComplete is true once both pre-install checks are signed off.
func (l *ProductionLogistics) PreInstallComplete() bool {
	return l.PaintSamplesApproved && l.SiteMeasurementsVerified
}
