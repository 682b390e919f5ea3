package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultCommissionRate is applied when a project has no explicit rate.
const DefaultCommissionRate = 10.0

// Value sources for Project.ValueSource.
const (
	ValueSourceEstimated = "estimated"
	ValueSourceValidated = "validated"
)

// Lead sources for Project.Source.
const (
	SourceManual = "manual"
	SourceZapier = "zapier"
	SourceAI     = "ai"
)

type Project struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`

	ClientName          string `gorm:"column:client_name;not null" json:"client_name"`
	PrimaryContactName  string `gorm:"column:primary_contact_name" json:"primary_contact_name"`
	PrimaryContactEmail string `gorm:"column:primary_contact_email" json:"primary_contact_email"`
	PrimaryContactPhone string `gorm:"column:primary_contact_phone" json:"primary_contact_phone"`
	SiteAddress         string `gorm:"column:site_address" json:"site_address"`
	Notes               string `gorm:"column:notes" json:"notes"`
	Source              string `gorm:"column:source" json:"source"`

	Status        Status     `gorm:"column:status;type:varchar(64);not null;index" json:"status"`
	IsActiveV3    bool       `gorm:"column:is_active_v3;not null;default:false" json:"is_active_v3"`
	IsParked      bool       `gorm:"column:is_parked;not null;default:false" json:"is_parked"`
	PendingAction bool       `gorm:"column:pending_action;not null;default:false" json:"pending_action"`
	ActionNote    string     `gorm:"column:action_note" json:"action_note"`
	ActionDueDate *time.Time `gorm:"column:action_due_date;type:date" json:"action_due_date"`

	EstimatedValue *float64 `gorm:"column:estimated_value;type:decimal" json:"estimated_value"`
	ValueSource    string   `gorm:"column:value_source;default:estimated" json:"value_source"`
	CommissionRate *float64 `gorm:"column:commission_rate;type:decimal" json:"commission_rate"`
	PaidStatus     string   `gorm:"column:paid_status" json:"paid_status"`
	ScannedTotal   *float64 `gorm:"column:scanned_total;type:decimal" json:"scanned_total"`
	ScannedDeposit *float64 `gorm:"column:scanned_deposit;type:decimal" json:"scanned_deposit"`

	GoogleDriveLink    string     `gorm:"column:google_drive_link" json:"google_drive_link"`
	DriveFolderID      string     `gorm:"column:drive_folder_id" json:"drive_folder_id"`
	DesignProofDriveID string     `gorm:"column:design_proof_drive_id" json:"design_proof_drive_id"`
	DesignProofName    string     `gorm:"column:design_proof_name" json:"design_proof_name"`
	NoDesignRequired   bool       `gorm:"column:no_design_required;not null;default:false" json:"no_design_required"`
	ProposalDriveID    string     `gorm:"column:proposal_drive_id" json:"proposal_drive_id"`
	ProposalName       string     `gorm:"column:proposal_name" json:"proposal_name"`
	MasterSpecFileID   string     `gorm:"column:master_spec_file_id" json:"master_spec_file_id"`
	MasterSpecFileName string     `gorm:"column:master_spec_file_name" json:"master_spec_file_name"`
	MasterSpecLockedAt *time.Time `gorm:"column:master_spec_locked_at" json:"master_spec_locked_at"`
	SignedSpecFileID   string     `gorm:"column:signed_spec_file_id" json:"signed_spec_file_id"`
	SignedSpecFileName string     `gorm:"column:signed_spec_file_name" json:"signed_spec_file_name"`
	ProductionLocked   bool       `gorm:"column:production_locked;not null;default:false" json:"production_locked"`

	DepositInvoiceRequested bool       `gorm:"column:deposit_invoice_requested;not null;default:false" json:"deposit_invoice_requested"`
	DepositInvoiceSent      bool       `gorm:"column:deposit_invoice_sent;not null;default:false" json:"deposit_invoice_sent"`
	DepositReceivedDate     *time.Time `gorm:"column:deposit_received_date;type:date" json:"deposit_received_date"`
	DepositAmount           *float64   `gorm:"column:deposit_amount;type:decimal" json:"deposit_amount"`

	DateApplied       *time.Time `gorm:"column:date_applied;type:date" json:"date_applied"`
	PermitNumber      string     `gorm:"column:permit_number" json:"permit_number"`
	PermitOfficePhone string     `gorm:"column:permit_office_phone" json:"permit_office_phone"`

	LossReason string `gorm:"column:loss_reason" json:"loss_reason"`

	CreatedAt       time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at" json:"updated_at"`
	StatusUpdatedAt *time.Time `gorm:"column:status_updated_at" json:"status_updated_at"`
	LastTouched     *time.Time `gorm:"column:last_touched" json:"last_touched"`
	SnoozeUntil     *time.Time `gorm:"column:snooze_until" json:"snooze_until"`
}

func (Project) TableName() string {
	return "projects"
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// HasDesignProof reports whether a design proof file has been attached.
func (p *Project) HasDesignProof() bool {
	return strings.TrimSpace(p.DesignProofDriveID) != ""
}

func (p *Project) HasMasterSpec() bool {
	return strings.TrimSpace(p.MasterSpecFileID) != ""
}

func (p *Project) HasSignedSpec() bool {
	return strings.TrimSpace(p.SignedSpecFileID) != ""
}

// Rate returns the commission percentage, falling back to DefaultCommissionRate.
func (p *Project) Rate() float64 {
	if p.CommissionRate == nil {
		return DefaultCommissionRate
	}
	return *p.CommissionRate
}

// DisplayName is what emails and alerts call the project.
func (p *Project) DisplayName() string {
	if p.ClientName != "" {
		return p.ClientName
	}
	return "Unknown"
}
