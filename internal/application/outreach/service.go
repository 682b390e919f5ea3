package outreach

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"grayco-suite/internal/application/emails"
	"grayco-suite/internal/application/pipeline"
	"grayco-suite/internal/domain"
	"grayco-suite/internal/pkg/calendar"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Email kinds recorded against the project.
const (
	KindDesignRequest  = "design_request"
	KindPricingRequest = "pricing_request"
	KindProposal       = "proposal"
	KindDepositRequest = "deposit_invoice_request"
	KindDepositInvoice = "deposit_invoice"
	KindInstallPrep    = "install_prep"
	KindFinalInvoice   = "final_invoice_request"
	KindNightBefore    = "night_before"
	KindVictoryLap     = "victory_lap"
)

const maxSitePhotos = 3

var (
	ErrNoRecipient    = errors.New("No recipient email address on file")
	ErrNoInstallDate  = errors.New("No target installation date set")
	ErrNoProposalFile = errors.New("No proposal file attached")
)

// Files fetches Drive artifacts for attachments. *drive.Client satisfies it.
type Files interface {
	Download(ctx context.Context, id string) (emails.Attachment, error)
	SharePublic(ctx context.Context, id string) error
}

// Service sends the shop's outbound emails in two phases: build and send, then let the
// pipeline decide whether the status moves.
type Service struct {
	Pipeline      *pipeline.Service
	Sender        emails.Sender
	Files         Files
	DesignerEmail string
	PricingEmail  string
	ReplyTo       string
	ReviewLink    string
}

// Outcome is what one outreach call did.
type Outcome struct {
	Result   emails.Result   `json:"result"`
	Project  *domain.Project `json:"project"`
	Advanced bool            `json:"advanced"`
	Attached []string        `json:"attached,omitempty"`
}

// fetch shares and downloads a Drive file. tooLarge is set when the file exists but cannot ride along.
func (s *Service) fetch(ctx context.Context, id string) (att *emails.Attachment, tooLarge bool) {
	if s.Files == nil || id == "" {
		return nil, false
	}
	if err := s.Files.SharePublic(ctx, id); err != nil {
		log.Warn().Err(err).Str("file_id", id).Msg("outreach: could not share file")
	}
	a, err := s.Files.Download(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("file_id", id).Msg("outreach: attachment skipped")
		return nil, errors.Is(err, emails.ErrAttachmentTooLarge)
	}
	return &a, false
}

func fileLink(id string) string {
	if id == "" {
		return ""
	}
	return "https://drive.google.com/file/d/" + id + "/view"
}

func names(atts []emails.Attachment) []string {
	out := make([]string, 0, len(atts))
	for _, a := range atts {
		out = append(out, a.FileName)
	}
	return out
}

// deliver sends msg, logs the attempt whatever happened, then applies rule when one is given.
func (s *Service) deliver(ctx context.Context, p *domain.Project, kind string, msg emails.Message, rule *pipeline.Rule) (*Outcome, error) {
	res := emails.Send(ctx, s.Sender, msg)
	out := &Outcome{Result: res, Project: p, Attached: names(msg.Attachments)}
	if err := s.Pipeline.RecordAttempt(ctx, p.ID, kind, msg.To, msg.Subject, res.Succeeded(), res.Message); err != nil {
		return out, fmt.Errorf("record %s attempt: %w", kind, err)
	}
	if !res.Succeeded() {
		log.Warn().Str("project_id", p.ID.String()).Str("kind", kind).Str("detail", res.Message).Msg("outreach: send failed")
		return out, nil
	}
	if rule == nil {
		return out, nil
	}
	updated, moved, err := s.Pipeline.AdvanceIf(ctx, p.ID, res, *rule)
	if err != nil {
		return out, err
	}
	out.Project, out.Advanced = updated, moved
	return out, nil
}

func (s *Service) customerEmail(ctx context.Context, p *domain.Project, override string) (string, error) {
	if to := strings.TrimSpace(override); to != "" {
		return to, nil
	}
	contacts, err := s.Pipeline.ListContacts(ctx, p.ID)
	if err != nil {
		return "", err
	}
	for _, c := range contacts {
		if c.IsPrimary && c.Email != "" {
			return c.Email, nil
		}
	}
	if p.PrimaryContactEmail != "" {
		return p.PrimaryContactEmail, nil
	}
	return "", ErrNoRecipient
}

// SendDesignRequest mails the designer with up to three site photos attached.
func (s *Service) SendDesignRequest(ctx context.Context, id uuid.UUID) (*Outcome, error) {
	p, err := s.Pipeline.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.DesignerEmail == "" {
		return nil, ErrNoRecipient
	}
	photos, err := s.Pipeline.ListPhotos(ctx, id, domain.PhotoSite)
	if err != nil {
		return nil, err
	}
	var atts []emails.Attachment
	for _, ph := range photos {
		if len(atts) == maxSitePhotos {
			break
		}
		if a, _ := s.fetch(ctx, ph.DriveFileID); a != nil {
			atts = append(atts, *a)
		}
	}
	msg := emails.DesignRequest(s.DesignerEmail, p.DisplayName(), p.Notes, p.GoogleDriveLink, atts)
	rule := pipeline.DesignRequestSent
	return s.deliver(ctx, p, KindDesignRequest, msg, &rule)
}

// SendPricingRequest mails pricing with the design proof. It refuses before sending while pricing is locked.
func (s *Service) SendPricingRequest(ctx context.Context, id uuid.UUID) (*Outcome, error) {
	p, err := s.Pipeline.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !pipeline.PricingUnlocked(p) {
		return nil, pipeline.ErrPricingLocked
	}
	if s.PricingEmail == "" {
		return nil, ErrNoRecipient
	}
	proof, tooLarge := s.fetch(ctx, p.DesignProofDriveID)
	msg := emails.PricingRequest(s.PricingEmail, p.DisplayName(), p.GoogleDriveLink, proof, tooLarge)
	rule := pipeline.PricingRequestSent
	return s.deliver(ctx, p, KindPricingRequest, msg, &rule)
}

// SendProposal mails the customer their proposal.
func (s *Service) SendProposal(ctx context.Context, id uuid.UUID, to string) (*Outcome, error) {
	p, err := s.Pipeline.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.ProposalDriveID == "" {
		return nil, ErrNoProposalFile
	}
	to, err = s.customerEmail(ctx, p, to)
	if err != nil {
		return nil, err
	}
	att, tooLarge := s.fetch(ctx, p.ProposalDriveID)
	msg := emails.CustomerProposal(to, s.ReplyTo, p.DisplayName(), fileLink(p.ProposalDriveID), p.GoogleDriveLink, att, tooLarge)
	rule := pipeline.ProposalSent
	return s.deliver(ctx, p, KindProposal, msg, &rule)
}

// RequestDepositInvoice asks pricing for a deposit invoice and ticks the first checklist stage.
func (s *Service) RequestDepositInvoice(ctx context.Context, id uuid.UUID) (*Outcome, error) {
	p, err := s.Pipeline.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.PricingEmail == "" {
		return nil, ErrNoRecipient
	}
	out, err := s.deliver(ctx, p, KindDepositRequest, emails.DepositInvoiceRequest(s.PricingEmail, p.DisplayName(), p.GoogleDriveLink), nil)
	if err != nil || !out.Result.Succeeded() {
		return out, err
	}
	out.Project, err = s.Pipeline.SetDepositStage(ctx, id, pipeline.DepositInvoiceRequested, true)
	return out, err
}

// SendDepositInvoice mails the customer the deposit invoice and ticks the checklist through "sent".
func (s *Service) SendDepositInvoice(ctx context.Context, id uuid.UUID, to, invoiceLink string) (*Outcome, error) {
	p, err := s.Pipeline.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	to, err = s.customerEmail(ctx, p, to)
	if err != nil {
		return nil, err
	}
	out, err := s.deliver(ctx, p, KindDepositInvoice, emails.DepositInvoice(to, s.ReplyTo, p.DisplayName(), invoiceLink, p.GoogleDriveLink), nil)
	if err != nil || !out.Result.Succeeded() {
		return out, err
	}
	if !p.DepositInvoiceRequested {
		if _, err := s.Pipeline.SetDepositStage(ctx, id, pipeline.DepositInvoiceRequested, true); err != nil {
			return out, err
		}
	}
	out.Project, err = s.Pipeline.SetDepositStage(ctx, id, pipeline.DepositInvoiceSent, true)
	return out, err
}

func (s *Service) installDate(ctx context.Context, id uuid.UUID) (string, error) {
	l, err := s.Pipeline.GetLogistics(ctx, id)
	if err != nil {
		return "", err
	}
	if l.TargetInstallationDate == nil {
		return "", ErrNoInstallDate
	}
	return calendar.Civil(*l.TargetInstallationDate).Format("Monday, January 2, 2006"), nil
}

// BalanceDue is the project value less everything received so far, never negative.
func (s *Service) BalanceDue(ctx context.Context, p *domain.Project) (float64, error) {
	c, err := s.Pipeline.Commission(ctx, p.ID)
	if err != nil {
		return 0, err
	}
	var total, paid float64
	if p.EstimatedValue != nil {
		total = *p.EstimatedValue
	}
	if c != nil {
		if c.TotalValue != nil {
			total = *c.TotalValue
		}
		paid = max(c.DepositAmount, c.TotalAmountReceived)
	}
	return max(0, total-paid), nil
}

// SendInstallPrep mails the customer the three-day briefing.
func (s *Service) SendInstallPrep(ctx context.Context, id uuid.UUID, to string) (*Outcome, error) {
	p, err := s.Pipeline.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	date, err := s.installDate(ctx, id)
	if err != nil {
		return nil, err
	}
	to, err = s.customerEmail(ctx, p, to)
	if err != nil {
		return nil, err
	}
	balance, err := s.BalanceDue(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.deliver(ctx, p, KindInstallPrep, emails.InstallPrep(to, s.ReplyTo, p.DisplayName(), date, balance), nil)
}

// RequestFinalInvoice asks pricing for the final invoice covering the remaining balance.
func (s *Service) RequestFinalInvoice(ctx context.Context, id uuid.UUID) (*Outcome, error) {
	p, err := s.Pipeline.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.PricingEmail == "" {
		return nil, ErrNoRecipient
	}
	balance, err := s.BalanceDue(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.deliver(ctx, p, KindFinalInvoice, emails.FinalInvoiceRequest(s.PricingEmail, s.ReplyTo, p.DisplayName(), balance, p.GoogleDriveLink), nil)
}

// SendNightBefore confirms tomorrow's install. A successful send clears the pending action.
func (s *Service) SendNightBefore(ctx context.Context, id uuid.UUID, to string) (*Outcome, error) {
	p, err := s.Pipeline.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	date, err := s.installDate(ctx, id)
	if err != nil {
		return nil, err
	}
	to, err = s.customerEmail(ctx, p, to)
	if err != nil {
		return nil, err
	}
	out, err := s.deliver(ctx, p, KindNightBefore, emails.NightBefore(to, s.ReplyTo, p.DisplayName(), date), nil)
	if err != nil || !out.Result.Succeeded() {
		return out, err
	}
	out.Project, err = s.Pipeline.CompleteNightBefore(ctx, id)
	return out, err
}

// SendVictoryLap thanks the customer for yesterday's install and closes the job out as Completed.
func (s *Service) SendVictoryLap(ctx context.Context, id uuid.UUID, to string) (*Outcome, error) {
	p, err := s.Pipeline.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	to, err = s.customerEmail(ctx, p, to)
	if err != nil {
		return nil, err
	}
	rule := pipeline.VictoryLapSent
	return s.deliver(ctx, p, KindVictoryLap, emails.VictoryLap(to, p.DisplayName(), s.ReviewLink), &rule)
}
