package pipeline

import (
	"context"
	"fmt"
	"strings"

	"grayco-suite/internal/domain"
	"grayco-suite/internal/pkg/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FileRef is an opaque Drive file reference.
type FileRef struct {
	DriveFileID string
	FileName    string
}

func (f FileRef) valid() bool {
	return strings.TrimSpace(f.DriveFileID) != ""
}

func (s *Service) recordFile(tx *gorm.DB, projectID uuid.UUID, kind string, f FileRef) error {
	row := domain.ProjectFile{
		TenantID:    s.TenantID,
		ProjectID:   projectID,
		Kind:        kind,
		DriveFileID: f.DriveFileID,
		FileName:    f.FileName,
		CreatedAt:   s.now(),
	}
	return tx.Create(&row).Error
}

// SetDesignProof attaches the design proof, which unlocks pricing.
func (s *Service) SetDesignProof(ctx context.Context, id uuid.UUID, f FileRef) (*domain.Project, error) {
	if !f.valid() {
		return nil, ErrMissingFile
	}
	return s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		if err := s.update(tx, p, map[string]interface{}{
			"design_proof_drive_id": f.DriveFileID,
			"design_proof_name":     f.FileName,
		}); err != nil {
			return err
		}
		p.DesignProofDriveID, p.DesignProofName = f.DriveFileID, f.FileName
		if err := s.recordFile(tx, p.ID, domain.FileDesignProof, f); err != nil {
			return err
		}
		return s.appendHistory(tx, p.ID, domain.EntryNote, "[SYSTEM] Design proof uploaded: "+f.FileName, nil)
	})
}

// SetNoDesignRequired toggles the repair/service bypass for the pricing lock.
func (s *Service) SetNoDesignRequired(ctx context.Context, id uuid.UUID, on bool) (*domain.Project, error) {
	return s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		if err := s.update(tx, p, map[string]interface{}{"no_design_required": on}); err != nil {
			return err
		}
		p.NoDesignRequired = on
		return nil
	})
}

// SetProposal records the proposal document and makes it the primary proposal.
func (s *Service) SetProposal(ctx context.Context, id uuid.UUID, f FileRef) (*domain.Project, error) {
	if !f.valid() {
		return nil, ErrMissingFile
	}
	return s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		if err := tx.Model(&domain.ProjectProposal{}).
			Where("project_id = ? AND tenant_id = ?", p.ID, s.TenantID).
			Update("is_primary", false).Error; err != nil {
			return err
		}
		prop := domain.ProjectProposal{
			TenantID:    s.TenantID,
			ProjectID:   p.ID,
			DriveFileID: f.DriveFileID,
			FileName:    f.FileName,
			IsPrimary:   true,
			CreatedAt:   s.now(),
		}
		if err := tx.Create(&prop).Error; err != nil {
			return err
		}
		p.ProposalDriveID, p.ProposalName = f.DriveFileID, f.FileName
		return s.update(tx, p, map[string]interface{}{
			"proposal_drive_id": f.DriveFileID,
			"proposal_name":     f.FileName,
		})
	})
}

// MarkProposalAlreadySent is the legacy override for proposals sent outside the system.
func (s *Service) MarkProposalAlreadySent(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		if p.Status.Closed() {
			return ErrTransitionNotAllowed
		}
		if err := s.appendHistory(tx, p.ID, domain.EntryNote, "[SYSTEM] Proposal marked as already sent (legacy)", nil); err != nil {
			return err
		}
		if p.Status == domain.StatusAwaitingDeposit {
			return nil
		}
		return s.setStatus(tx, p, domain.StatusAwaitingDeposit, "[SYSTEM] Legacy proposal override - Awaiting deposit", nil)
	})
}

// RecordEstimate stores advisory amounts read off a document. Nothing financial changes.
func (s *Service) RecordEstimate(ctx context.Context, id uuid.UUID, total, deposit float64, notes string) (*domain.Estimate, error) {
	if total < 0 || deposit < 0 {
		return nil, ErrInvalidAmount
	}
	var out *domain.Estimate
	_, err := s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		e := domain.Estimate{
			TenantID:      s.TenantID,
			ProjectID:     p.ID,
			TotalValue:    total,
			DepositAmount: deposit,
			Notes:         notes,
			CreatedAt:     s.now(),
		}
		if err := tx.Create(&e).Error; err != nil {
			return err
		}
		if err := s.update(tx, p, map[string]interface{}{
			"scanned_total":   total,
			"scanned_deposit": deposit,
		}); err != nil {
			return err
		}
		p.ScannedTotal, p.ScannedDeposit = &total, &deposit
		out = &e
		return nil
	})
	return out, err
}

// ConfirmProposalAmounts is the human confirmation step that lets scanned amounts reach the ledger.
func (s *Service) ConfirmProposalAmounts(ctx context.Context, id uuid.UUID, total, deposit float64) (*domain.Project, error) {
	if total < 0 || deposit < 0 {
		return nil, ErrInvalidAmount
	}
	total, deposit = money.Round2(total), money.Round2(deposit)
	return s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		if err := s.update(tx, p, map[string]interface{}{
			"estimated_value": total,
			"value_source":    domain.ValueSourceValidated,
		}); err != nil {
			return err
		}
		p.EstimatedValue = &total
		p.ValueSource = domain.ValueSourceValidated
		if _, err := s.upsertCommission(tx, p.ID, func(c *domain.Commission, _ bool) {
			c.TotalValue = &total
			c.DepositAmount = deposit
		}); err != nil {
			return err
		}
		est := domain.ProjectEstimate{TenantID: s.TenantID, ProjectID: p.ID, TotalValue: total, DepositAmount: deposit, CreatedAt: s.now()}
		if err := tx.Create(&est).Error; err != nil {
			return err
		}
		msg := fmt.Sprintf("[SYSTEM] Proposal amounts confirmed: total %s, deposit %s", money.Format(total), money.Format(deposit))
		return s.appendHistory(tx, p.ID, domain.EntryNote, msg, nil)
	})
}

// SetMasterSpec designates the Golden Proof. It can only be set once.
func (s *Service) SetMasterSpec(ctx context.Context, id uuid.UUID, f FileRef) (*domain.Project, error) {
	if !f.valid() {
		return nil, ErrMissingFile
	}
	return s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		if p.HasMasterSpec() {
			return ErrMasterSpecLocked
		}
		now := s.now()
		if err := s.update(tx, p, map[string]interface{}{
			"master_spec_file_id":   f.DriveFileID,
			"master_spec_file_name": f.FileName,
			"master_spec_locked_at": now,
		}); err != nil {
			return err
		}
		p.MasterSpecFileID, p.MasterSpecFileName, p.MasterSpecLockedAt = f.DriveFileID, f.FileName, &now
		if err := s.recordFile(tx, p.ID, domain.FileMasterSpec, f); err != nil {
			return err
		}
		return s.appendHistory(tx, p.ID, domain.EntryNote, "[SYSTEM] Master spec locked: "+f.FileName, nil)
	})
}

// SetSignedSpec records the customer-signed spec.
func (s *Service) SetSignedSpec(ctx context.Context, id uuid.UUID, f FileRef) (*domain.Project, error) {
	if !f.valid() {
		return nil, ErrMissingFile
	}
	return s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		if err := s.update(tx, p, map[string]interface{}{
			"signed_spec_file_id":   f.DriveFileID,
			"signed_spec_file_name": f.FileName,
		}); err != nil {
			return err
		}
		p.SignedSpecFileID, p.SignedSpecFileName = f.DriveFileID, f.FileName
		if err := s.recordFile(tx, p.ID, domain.FileSignedSpec, f); err != nil {
			return err
		}
		return s.appendHistory(tx, p.ID, domain.EntryNote, "[SYSTEM] Signed spec uploaded: "+f.FileName, nil)
	})
}

// PhotoInput attaches a Drive image to a project.
type PhotoInput struct {
	DriveFileID string
	FileName    string
	Category    string
	Caption     string
}

func (s *Service) AddPhoto(ctx context.Context, id uuid.UUID, in PhotoInput) (*domain.ProjectPhoto, error) {
	if !domain.IsValidPhotoCategory(in.Category) {
		return nil, ErrInvalidPhotoCategory
	}
	if strings.TrimSpace(in.DriveFileID) == "" {
		return nil, ErrMissingFile
	}
	var out *domain.ProjectPhoto
	_, err := s.mutate(ctx, id, func(tx *gorm.DB, p *domain.Project) error {
		ph := domain.ProjectPhoto{
			TenantID:    s.TenantID,
			ProjectID:   p.ID,
			DriveFileID: in.DriveFileID,
			FileName:    in.FileName,
			Category:    in.Category,
			Caption:     strings.TrimSpace(in.Caption),
			CreatedAt:   s.now(),
		}
		if err := tx.Create(&ph).Error; err != nil {
			return err
		}
		out = &ph
		return nil
	})
	return out, err
}

// ListPhotos returns photos newest first, optionally filtered by category.
func (s *Service) ListPhotos(ctx context.Context, id uuid.UUID, category string) ([]domain.ProjectPhoto, error) {
	q := s.DB.WithContext(ctx).Where("project_id = ? AND tenant_id = ?", id, s.TenantID)
	if category != "" {
		if !domain.IsValidPhotoCategory(category) {
			return nil, ErrInvalidPhotoCategory
		}
		q = q.Where("category = ?", category)
	}
	var out []domain.ProjectPhoto
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}
