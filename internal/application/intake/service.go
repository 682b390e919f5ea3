package intake

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"grayco-suite/internal/application/pipeline"
	"grayco-suite/internal/domain"
	"grayco-suite/internal/infrastructure/gemini"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoText        = errors.New("No text provided")
	ErrNoDocument    = errors.New("No image or PDF provided")
	ErrAIUnavailable = gemini.ErrNotConfigured
)

// Extractor reads structured fields out of text and documents. *gemini.Client satisfies it.
type Extractor interface {
	ExtractLead(ctx context.Context, raw string) (gemini.Lead, error)
	ScanInvoice(ctx context.Context, data []byte, mimeType string) (gemini.Scan, error)
}

// Service turns outside input (Zapier posts, pasted messages, scanned invoices) into pipeline records.
type Service struct {
	Pipeline    *pipeline.Service
	AI          Extractor
	Folders     Folders
	Categorizer Categorizer
}

// Receipt is what the webhook reports back.
type Receipt struct {
	ProjectID uuid.UUID `json:"project_id"`
	Message   string    `json:"message"`
}

// field returns the first non-empty value among keys. Numbers (Zapier sends phones as numbers) are formatted.
func field(data map[string]any, keys ...string) string {
	for _, k := range keys {
		var s string
		switch v := data[k].(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case nil:
		default:
			s = fmt.Sprint(v)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// FromWebhook maps a Zapier payload onto a lead.
func FromWebhook(data map[string]any) pipeline.LeadInput {
	return pipeline.LeadInput{
		Name:   field(data, "name", "client_name"),
		Phone:  field(data, "phone", "phone_number"),
		Email:  field(data, "email"),
		Notes:  field(data, "notes", "message", "details"),
		Source: domain.SourceZapier,
	}
}

// ReceiveWebhook stores a lead posted by Zapier.
func (s *Service) ReceiveWebhook(ctx context.Context, data map[string]any) (*Receipt, error) {
	in := FromWebhook(data)
	p, err := s.Pipeline.CreateLead(ctx, in)
	if err != nil {
		return nil, err
	}
	label := in.Name
	if label == "" {
		label = in.Email
	}
	if label == "" {
		label = in.Phone
	}
	log.Info().Str("project_id", p.ID.String()).Str("source", in.Source).Msg("intake: lead received")
	return &Receipt{ProjectID: p.ID, Message: "Lead created: " + label}, nil
}

// Extract prefills lead fields from free text. Nothing is stored.
func (s *Service) Extract(ctx context.Context, raw string) (gemini.Lead, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return gemini.Lead{}, ErrNoText
	}
	if s.AI == nil {
		return gemini.Lead{Notes: raw}, ErrAIUnavailable
	}
	return s.AI.ExtractLead(ctx, raw)
}

// CreateFromExtraction stores an operator-reviewed extraction as a new lead.
func (s *Service) CreateFromExtraction(ctx context.Context, l gemini.Lead) (*domain.Project, error) {
	return s.Pipeline.CreateLead(ctx, pipeline.LeadInput{
		Name:        l.Name,
		Phone:       l.Phone,
		Email:       l.Email,
		SiteAddress: l.SiteAddress,
		Notes:       l.Notes,
		Source:      domain.SourceAI,
	})
}

// ScanInvoice reads amounts off a document. With a project id the result is kept as an advisory
// estimate; the ledger only sees it after ConfirmProposalAmounts.
func (s *Service) ScanInvoice(ctx context.Context, projectID *uuid.UUID, data []byte, mimeType string) (gemini.Scan, error) {
	if len(data) == 0 {
		return gemini.Scan{}, ErrNoDocument
	}
	if s.AI == nil {
		return gemini.Scan{}, ErrAIUnavailable
	}
	scan, err := s.AI.ScanInvoice(ctx, data, mimeType)
	if err != nil {
		return gemini.Scan{}, err
	}
	if projectID != nil {
		if _, err := s.Pipeline.RecordEstimate(ctx, *projectID, scan.TotalValue, scan.DepositAmount, scan.Notes); err != nil {
			return scan, err
		}
	}
	return scan, nil
}
