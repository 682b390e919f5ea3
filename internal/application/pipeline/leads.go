package pipeline

import (
	"context"
	"strings"

	"grayco-suite/internal/domain"
	"grayco-suite/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeadInput is a new lead from any intake channel.
type LeadInput struct {
	Name        string
	Phone       string
	Email       string
	Notes       string
	SiteAddress string
	Source      string
}

// CreateLead stores a new project in New, promoted to the active pipeline.
func (s *Service) CreateLead(ctx context.Context, in LeadInput) (*domain.Project, error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	email := strings.TrimSpace(in.Email)
	if name == "" && phone == "" && email == "" {
		return nil, ErrNoLeadData
	}
	client := name
	if client == "" {
		client = "Unknown"
	}
	source := in.Source
	if source == "" {
		source = domain.SourceManual
	}
	now := s.now()
	p := &domain.Project{
		TenantID:            s.TenantID,
		ClientName:          client,
		PrimaryContactName:  name,
		PrimaryContactPhone: phone,
		PrimaryContactEmail: email,
		SiteAddress:         strings.TrimSpace(in.SiteAddress),
		Notes:               strings.TrimSpace(in.Notes),
		Source:              source,
		Status:              domain.StatusNew,
		IsActiveV3:          true,
		ValueSource:         domain.ValueSourceEstimated,
		CreatedAt:           now,
		UpdatedAt:           now,
		StatusUpdatedAt:     &now,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		if phone != "" {
			if err := s.appendHistory(tx, p.ID, domain.EntryPhone, phone, nil); err != nil {
				return err
			}
		}
		if email != "" {
			if err := s.appendHistory(tx, p.ID, domain.EntryEmail, email, nil); err != nil {
				return err
			}
		}
		if phone != "" || email != "" {
			c := domain.Contact{TenantID: s.TenantID, ProjectID: p.ID, Name: name, Phone: phone, Email: email, IsPrimary: true, CreatedAt: now}
			if err := tx.Create(&c).Error; err != nil {
				return err
			}
		}
		if p.SiteAddress != "" {
			loc := domain.Location{TenantID: s.TenantID, ProjectID: p.ID, Address: p.SiteAddress, IsPrimary: true, CreatedAt: now, UpdatedAt: now}
			if err := tx.Create(&loc).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// AddNote appends a note; a note on a New lead counts as first contact and moves it to Block A.
func (s *Service) AddNote(ctx context.Context, id uuid.UUID, content string) (*domain.Project, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyNote
	}
	return s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		if err := s.appendHistory(tx, p.ID, domain.EntryNote, content, nil); err != nil {
			return err
		}
		return s.advance(tx, p, Outcome(true), OutboundContact)
	})
}

var contactKinds = map[string]string{
	domain.TouchCall:      "Call logged",
	domain.TouchTextSent:  "Text sent",
	domain.TouchEmailSent: "Email sent",
}

// LogContact records an outbound call, text or email and applies the first-contact rule.
func (s *Service) LogContact(ctx context.Context, id uuid.UUID, kind, detail string) (*domain.Project, error) {
	label, ok := contactKinds[kind]
	if !ok {
		return nil, ErrInvalidContactKind
	}
	desc := label
	if d := strings.TrimSpace(detail); d != "" {
		desc = label + ": " + d
	}
	return s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		if err := s.appendTouch(tx, p.ID, kind, desc); err != nil {
			return err
		}
		return s.advance(tx, p, Outcome(true), OutboundContact)
	})
}

// AdvanceIf is the explicit second phase of a send: it moves the project only when res succeeded
// and the rule allows the current status. The bool reports whether the status changed.
func (s *Service) AdvanceIf(ctx context.Context, id uuid.UUID, res Result, rule Rule) (*domain.Project, bool, error) {
	var moved bool
	p, err := s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		before := p.Status
		if err := s.advance(tx, p, res, rule); err != nil {
			return err
		}
		moved = p.Status != before
		return nil
	})
	return p, moved, err
}

func (s *Service) advance(tx *gorm.DB, p *domain.Project, res Result, rule Rule) error {
	next, ok := rule.Next(p.Status, res)
	if ok {
		return s.setStatus(tx, p, next, rule.Advanced, nil)
	}
	if res != nil && res.Succeeded() && rule.Unchanged != "" {
		return s.appendHistory(tx, p.ID, domain.EntryEmailSent, rule.Unchanged, map[string]interface{}{"status": string(p.Status)})
	}
	return nil
}

// RecordAttempt logs an outbound email attempt against the project regardless of outcome.
// A failed send still counts as a contact attempt in the history.
func (s *Service) RecordAttempt(ctx context.Context, id uuid.UUID, kind, recipient, subject string, sent bool, detail string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e := domain.ProcessedEmail{
			TenantID:  s.TenantID,
			ProjectID: id,
			Kind:      kind,
			Recipient: recipient,
			Subject:   subject,
			Sent:      sent,
			Detail:    detail,
			CreatedAt: s.now(),
		}
		if err := tx.Create(&e).Error; err != nil {
			return err
		}
		if sent {
			return s.appendTouch(tx, id, domain.TouchEmailSent, subject+" ("+recipient+")")
		}
		return s.appendHistory(tx, id, domain.EntryEmailFailed, "Email failed: "+subject+": "+detail, nil)
	})
}

// ContactInput adds a secondary contact to a project.
type ContactInput struct {
	Name      string
	Email     string
	Phone     string
	Role      string
	IsPrimary bool
}

func (s *Service) AddContact(ctx context.Context, id uuid.UUID, in ContactInput) (*domain.Contact, error) {
	if phone := strings.TrimSpace(in.Phone); phone != "" && !validation.IsPlausiblePhone(phone) {
		return nil, ErrInvalidPhone
	}
	if email := strings.TrimSpace(in.Email); email != "" && !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	var out *domain.Contact
	_, err := s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		c := domain.Contact{
			TenantID:  s.TenantID,
			ProjectID: p.ID,
			Name:      strings.TrimSpace(in.Name),
			Email:     strings.TrimSpace(in.Email),
			Phone:     strings.TrimSpace(in.Phone),
			Role:      strings.TrimSpace(in.Role),
			IsPrimary: in.IsPrimary,
			CreatedAt: s.now(),
		}
		if in.IsPrimary {
			if err := tx.Model(&domain.Contact{}).
				Where("project_id = ? AND tenant_id = ?", p.ID, s.TenantID).
				Update("is_primary", false).Error; err != nil {
				return err
			}
			if err := s.update(tx, p, map[string]interface{}{
				"primary_contact_name":  c.Name,
				"primary_contact_email": c.Email,
				"primary_contact_phone": c.Phone,
			}); err != nil {
				return err
			}
		}
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		out = &c
		return nil
	})
	return out, err
}

// ListContacts returns the project's contacts, primary first.
func (s *Service) ListContacts(ctx context.Context, id uuid.UUID) ([]domain.Contact, error) {
	var out []domain.Contact
	err := s.DB.WithContext(ctx).
		Where("project_id = ? AND tenant_id = ?", id, s.TenantID).
		Order("is_primary DESC, created_at ASC").
		Find(&out).Error
	return out, err
}
