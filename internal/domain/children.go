package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contact is an additional person attached to a project.
type Contact struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null;index" json:"project_id"`
	Name      string    `gorm:"column:name" json:"name"`
	Email     string    `gorm:"column:email" json:"email"`
	Phone     string    `gorm:"column:phone" json:"phone"`
	Role      string    `gorm:"column:role" json:"role"`
	IsPrimary bool      `gorm:"column:is_primary;not null;default:false" json:"is_primary"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Contact) TableName() string { return "contacts" }

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Photo categories.
const (
	PhotoSite      = "site"
	PhotoLogo      = "logo"
	PhotoReference = "reference"
	PhotoMarkup    = "markup"
)

func IsValidPhotoCategory(c string) bool {
	switch c {
	case PhotoSite, PhotoLogo, PhotoReference, PhotoMarkup:
		return true
	}
	return false
}

type ProjectPhoto struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID    uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	ProjectID   uuid.UUID `gorm:"column:project_id;type:uuid;not null;index" json:"project_id"`
	DriveFileID string    `gorm:"column:drive_file_id" json:"drive_file_id"`
	FileName    string    `gorm:"column:file_name" json:"file_name"`
	Category    string    `gorm:"column:category;not null" json:"category"`
	Caption     string    `gorm:"column:caption" json:"caption"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (ProjectPhoto) TableName() string { return "project_photos" }

func (p *ProjectPhoto) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProjectProposal is one uploaded proposal document; at most one is primary.
type ProjectProposal struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID       uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	ProjectID      uuid.UUID `gorm:"column:project_id;type:uuid;not null;index" json:"project_id"`
	DriveFileID    string    `gorm:"column:drive_file_id" json:"drive_file_id"`
	FileName       string    `gorm:"column:file_name" json:"file_name"`
	IsPrimary      bool      `gorm:"column:is_primary;not null;default:false" json:"is_primary"`
	ScannedTotal   *float64  `gorm:"column:scanned_total;type:decimal" json:"scanned_total"`
	ScannedDeposit *float64  `gorm:"column:scanned_deposit;type:decimal" json:"scanned_deposit"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}

func (ProjectProposal) TableName() string { return "project_proposals" }

func (p *ProjectProposal) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProjectFile kinds.
const (
	FileDesignProof = "design_proof"
	FileMasterSpec  = "master_spec"
	FileSignedSpec  = "signed_spec"
)

// ProjectFile records every artifact reference ever attached to a project.
type ProjectFile struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID    uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	ProjectID   uuid.UUID `gorm:"column:project_id;type:uuid;not null;index" json:"project_id"`
	Kind        string    `gorm:"column:kind;not null" json:"kind"`
	DriveFileID string    `gorm:"column:drive_file_id" json:"drive_file_id"`
	FileName    string    `gorm:"column:file_name" json:"file_name"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (ProjectFile) TableName() string { return "project_files" }

func (f *ProjectFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// Estimate is an advisory amount pair read off a document by the extraction service.
// It never feeds the ledger directly.
type Estimate struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID      uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	ProjectID     uuid.UUID `gorm:"column:project_id;type:uuid;not null;index" json:"project_id"`
	TotalValue    float64   `gorm:"column:total_value;type:decimal" json:"total_value"`
	DepositAmount float64   `gorm:"column:deposit_amount;type:decimal" json:"deposit_amount"`
	Notes         string    `gorm:"column:notes" json:"notes"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Estimate) TableName() string { return "estimates" }

func (e *Estimate) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// ProjectEstimate is an operator-confirmed amount pair; the latest one is authoritative.
type ProjectEstimate struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID      uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	ProjectID     uuid.UUID `gorm:"column:project_id;type:uuid;not null;index" json:"project_id"`
	TotalValue    float64   `gorm:"column:total_value;type:decimal" json:"total_value"`
	DepositAmount float64   `gorm:"column:deposit_amount;type:decimal" json:"deposit_amount"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
}

func (ProjectEstimate) TableName() string { return "project_estimates" }

func (e *ProjectEstimate) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Location is an install site for a project.
type Location struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null;index" json:"project_id"`
	Address   string    `gorm:"column:address" json:"address"`
	IsPrimary bool      `gorm:"column:is_primary;not null;default:false" json:"is_primary"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Location) TableName() string { return "locations" }

func (l *Location) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// ProcessedEmail logs every outbound email attempt made for a project, successful or not.
type ProcessedEmail struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;not null;index" json:"project_id"`
	Kind      string    `gorm:"column:kind;not null" json:"kind"`
	Recipient string    `gorm:"column:recipient" json:"recipient"`
	Subject   string    `gorm:"column:subject" json:"subject"`
	Sent      bool      `gorm:"column:sent;not null;default:false" json:"sent"`
	Detail    string    `gorm:"column:detail" json:"detail"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (ProcessedEmail) TableName() string { return "processed_emails" }

func (e *ProcessedEmail) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
