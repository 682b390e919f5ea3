package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

var ErrNotConfigured = errors.New("Google API key not configured")

// Models is the slice of the genai client used here. *genai.Models satisfies it.
type Models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client extracts structured data from free text and documents.
type Client struct {
	models      Models
	TextModel   string
	VisionModel string
}

// New builds a Gemini client. An empty key yields ErrNotConfigured.
func New(ctx context.Context, apiKey, textModel, visionModel string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return NewWithModels(c.Models, textModel, visionModel), nil
}

// NewWithModels wires an existing model backend.
func NewWithModels(m Models, textModel, visionModel string) *Client {
	if textModel == "" {
		textModel = "gemini-2.0-flash"
	}
	if visionModel == "" {
		visionModel = "gemini-2.5-flash"
	}
	return &Client{models: m, TextModel: textModel, VisionModel: visionModel}
}

func (c *Client) generate(ctx context.Context, model string, parts ...*genai.Part) (string, error) {
	if c == nil || c.models == nil {
		return "", ErrNotConfigured
	}
	resp, err := c.models.GenerateContent(ctx, model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Lead is contact data pulled out of a pasted message.
type Lead struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	SiteAddress string `json:"site_address"`
	Notes       string `json:"notes"`
}

const leadPrompt = `Extract contact information from the following text. Return ONLY a valid JSON object with these exact keys:
- "name": the person's or company's name (string)
- "phone": phone number if found - prioritize extracting this for click-to-dial (string)
- "email": email address if found - prioritize extracting this for contact (string)
- "site_address": physical address or location for the sign installation if mentioned (string)
- "notes": any other relevant information like project details or requirements NOT including address/phone/email (string)

IMPORTANT: If you are unsure about a field, leave it blank rather than guessing. However, prioritize extracting phone and email even if partial.

If a field is not found, use an empty string.

Text to analyze:
%s

Return ONLY the JSON object, no markdown formatting or explanation.`

// ExtractLead asks the text model for contact fields. On failure the raw text comes back as notes
// alongside the error so the caller can still prefill a form.
func (c *Client) ExtractLead(ctx context.Context, raw string) (Lead, error) {
	fallback := Lead{Notes: raw}
	out, err := c.generate(ctx, c.textModel(), genai.NewPartFromText(fmt.Sprintf(leadPrompt, raw)))
	if err != nil {
		return fallback, fmt.Errorf("AI extraction error: %w", err)
	}
	lead, err := ParseLead(out)
	if err != nil {
		log.Warn().Err(err).Msg("gemini: unparseable lead response")
		return fallback, err
	}
	return lead, nil
}

func (c *Client) textModel() string {
	if c == nil {
		return ""
	}
	return c.TextModel
}

func (c *Client) visionModel() string {
	if c == nil {
		return ""
	}
	return c.VisionModel
}

// Scan is the amount pair read off an invoice or quote. It is advisory until an operator confirms it.
type Scan struct {
	TotalValue    float64 `json:"total_value"`
	DepositAmount float64 `json:"deposit_amount"`
	Notes         string  `json:"notes"`
}

const scanPrompt = `Analyze this invoice/quote document and extract the financial amounts.

Look for:
1. TOTAL PROJECT AMOUNT / Grand Total / Total Due / Total Price - the full project cost
2. DEPOSIT AMOUNT / Advance Payment / Half Down / Down Payment / Deposit Due

Return ONLY a JSON object with these exact keys:
- "total_value": the total project amount as a number (no currency symbols)
- "deposit_amount": the deposit/advance payment amount as a number
- "notes": brief description of what you found

If deposit amount is not specified, calculate 50% of total_value.
If you cannot find amounts, return 0 for both.

Return ONLY the JSON object, no markdown.`

// ScanInvoice reads total and deposit from a PDF or image.
func (c *Client) ScanInvoice(ctx context.Context, data []byte, mimeType string) (Scan, error) {
	if len(data) == 0 {
		return Scan{}, errors.New("No image or PDF provided")
	}
	out, err := c.generate(ctx, c.visionModel(), genai.NewPartFromText(scanPrompt), genai.NewPartFromBytes(data, mimeType))
	if err != nil {
		return Scan{}, fmt.Errorf("Invoice scan error: %w", err)
	}
	return ParseScan(out)
}

const categoryPrompt = `Analyze this image and determine its category for a sign shop project.

Filename hint: %s

Categories:
- "logo": Business logos, brand assets, company emblems, text-based designs, vector graphics
- "site": Photos of buildings, walls, storefronts, construction sites, physical sign locations, facades
- "reference": Inspiration photos, example signs, design ideas, competitor signs, reference imagery

Return ONLY a JSON object: {"category": "logo" or "site" or "reference"}`

// SuggestCategory classifies an imported photo. Anything unrecognized is a site photo.
func (c *Client) SuggestCategory(ctx context.Context, image []byte, mimeType, fileName string) (string, error) {
	out, err := c.generate(ctx, c.visionModel(),
		genai.NewPartFromText(fmt.Sprintf(categoryPrompt, fileName)),
		genai.NewPartFromBytes(image, mimeType))
	if err != nil {
		return "site", err
	}
	var v struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(StripFence(out)), &v); err != nil {
		return "site", fmt.Errorf("Failed to parse AI response: %w", err)
	}
	switch v.Category {
	case "logo", "site", "reference":
		return v.Category, nil
	}
	return "site", nil
}

// StripFence removes a surrounding markdown code fence, if any.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return ""
	}
	lines = lines[1:]
	if strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ParseLead decodes a lead response.
func ParseLead(s string) (Lead, error) {
	var l Lead
	if err := json.Unmarshal([]byte(StripFence(s)), &l); err != nil {
		return Lead{}, fmt.Errorf("Failed to parse AI response: %w", err)
	}
	l.Name = strings.TrimSpace(l.Name)
	l.Phone = strings.TrimSpace(l.Phone)
	l.Email = strings.TrimSpace(l.Email)
	l.SiteAddress = strings.TrimSpace(l.SiteAddress)
	l.Notes = strings.TrimSpace(l.Notes)
	return l, nil
}

// ParseScan decodes an invoice response. A missing deposit defaults to half the total.
func ParseScan(s string) (Scan, error) {
	var raw struct {
		TotalValue    any    `json:"total_value"`
		DepositAmount any    `json:"deposit_amount"`
		Notes         string `json:"notes"`
	}
	if err := json.Unmarshal([]byte(StripFence(s)), &raw); err != nil {
		return Scan{}, fmt.Errorf("Failed to parse AI response: %w", err)
	}
	out := Scan{TotalValue: number(raw.TotalValue), DepositAmount: number(raw.DepositAmount), Notes: raw.Notes}
	if out.DepositAmount == 0 && out.TotalValue > 0 {
		out.DepositAmount = out.TotalValue * 0.5
	}
	return out, nil
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(n)), 64)
		if err == nil {
			return f
		}
	}
	return 0
}
