package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Commission is the financial source of truth for a project, one row per project.
type Commission struct {
	ID                  uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID            uuid.UUID  `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	ProjectID           uuid.UUID  `gorm:"column:project_id;type:uuid;not null;uniqueIndex" json:"project_id"`
	TotalValue          *float64   `gorm:"column:total_value;type:decimal" json:"total_value"`
	DepositAmount       float64    `gorm:"column:deposit_amount;type:decimal;not null;default:0" json:"deposit_amount"`
	DepositReceivedDate *time.Time `gorm:"column:deposit_received_date;type:date" json:"deposit_received_date"`
	FinalPaymentDate    *time.Time `gorm:"column:final_payment_date;type:date" json:"final_payment_date"`
	TotalAmountReceived float64    `gorm:"column:total_amount_received;type:decimal;not null;default:0" json:"total_amount_received"`
	CommissionNotes     string     `gorm:"column:commission_notes" json:"commission_notes"`
	CreatedAt           time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Commission) TableName() string {
	return "commissions"
}

func (c *Commission) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
