package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// History entry types.
const (
	EntryNote         = "note"
	EntryPhone        = "phone"
	EntryEmail        = "email"
	EntryStatusChange = "STATUS_CHANGE"
	EntryEmailSent    = "EMAIL_SENT"
	EntryEmailFailed  = "EMAIL_FAILED"
	EntryAutoComplete = "AUTO_COMPLETE"
)

// ProjectHistory is an append-only audit entry. Rows are only removed by a project delete.
type ProjectHistory struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID      `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	ProjectID uuid.UUID      `gorm:"column:project_id;type:uuid;not null;index" json:"project_id"`
	EntryType string         `gorm:"column:entry_type;not null" json:"entry_type"`
	Content   string         `gorm:"column:content" json:"content"`
	Metadata  datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (ProjectHistory) TableName() string {
	return "project_history"
}

func (h *ProjectHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// Touch types.
const (
	TouchCall            = "call"
	TouchTextSent        = "text_sent"
	TouchEmailSent       = "email_sent"
	TouchDepositReceived = "deposit_received"
	TouchProjectClosed   = "project_closed"
	TouchLogistics       = "logistics_update"
	TouchChecklist       = "checklist_update"
)

// ProjectTouch records an outbound contact or operator action, newest first in the timeline.
type ProjectTouch struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TenantID    uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	ProjectID   uuid.UUID `gorm:"column:project_id;type:uuid;not null;index" json:"project_id"`
	TouchType   string    `gorm:"column:touch_type;not null" json:"touch_type"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (ProjectTouch) TableName() string {
	return "project_touches"
}

func (t *ProjectTouch) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
