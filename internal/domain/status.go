package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// Status is the closed set of pipeline states a project can be in.
// Values are the exact strings persisted in projects.status.
type Status string

const (
	StatusMigrated         Status = "MIGRATED"
	StatusNew              Status = "New"
	StatusBlockA           Status = "Block A"
	StatusDesign           Status = "Design"
	StatusQuoting          Status = "Quoting"
	StatusAwaitingDeposit  Status = "Awaiting Deposit"
	StatusConfirmed        Status = "CONFIRMED"
	StatusActiveProduction Status = "ACTIVE PRODUCTION"
	StatusPermitPending    Status = "permit_pending"
	StatusCompleted        Status = "Completed"
	StatusClosedWon        Status = "Closed - Won"
	StatusClosedLost       Status = "Closed - Lost"
	StatusArchived         Status = "Archived"
)

// ErrUnknownStatus is returned when a stored or submitted status string is not in the enumeration.
var ErrUnknownStatus = errors.New("unknown project status")

// AllStatuses lists every status in pipeline order.
var AllStatuses = []Status{
	StatusMigrated, StatusNew, StatusBlockA, StatusDesign, StatusQuoting, StatusAwaitingDeposit,
	StatusConfirmed, StatusActiveProduction, StatusPermitPending, StatusCompleted,
	StatusClosedWon, StatusClosedLost, StatusArchived,
}

// statusAliases maps folded keys (see foldStatus) to canonical statuses.
var statusAliases = map[string]Status{
	"migrated":                        StatusMigrated,
	"new":                             StatusNew,
	"lead":                            StatusNew,
	"new_lead":                        StatusNew,
	"block_a":                         StatusBlockA,
	"pending":                         StatusBlockA,
	"shoebox":                         StatusBlockA,
	"design":                          StatusDesign,
	"quoting":                         StatusQuoting,
	"pricing":                         StatusQuoting,
	"proposal":                        StatusQuoting,
	"awaiting_deposit":                StatusAwaitingDeposit,
	"approved":                        StatusAwaitingDeposit,
	"proposal_sent_awaiting_customer": StatusAwaitingDeposit,
	"confirmed":                       StatusConfirmed,
	"active_production":               StatusActiveProduction,
	"in_production":                   StatusActiveProduction,
	"production":                      StatusActiveProduction,
	"ready_for_install":               StatusActiveProduction,
	"installed":                       StatusActiveProduction,
	"permit_pending":                  StatusPermitPending,
	"completed":                       StatusCompleted,
	"invoiced":                        StatusCompleted,
	"closed_won":                      StatusClosedWon,
	"won":                             StatusClosedWon,
	"closed_lost":                     StatusClosedLost,
	"lost":                            StatusClosedLost,
	"archived":                        StatusArchived,

	// Stage names used on the project page.
	"block_b": StatusDesign,
	"block_c": StatusQuoting,
	"block_d": StatusAwaitingDeposit,
	"block_e": StatusActiveProduction,
	"block_f": StatusActiveProduction,
	"block_g": StatusCompleted,

	// Older spellings still present in migrated rows.
	"info_gathering": StatusBlockA,
	"on_hold":        StatusBlockA,
	"proposal_sent":  StatusAwaitingDeposit,
	"awaiting":       StatusAwaitingDeposit,
	"cancelled":      StatusClosedLost,
	"canceled":       StatusClosedLost,
}

// foldStatus lower-cases and collapses spaces, hyphens and underscores into single underscores,
// so "Closed - Won", "closed_-_won" and "CLOSED-WON" all fold to "closed_won".
func foldStatus(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	var b strings.Builder
	sep := false
	for _, r := range raw {
		if r == ' ' || r == '-' || r == '_' {
			sep = true
			continue
		}
		if sep && b.Len() > 0 {
			b.WriteByte('_')
		}
		sep = false
		b.WriteRune(r)
	}
	return b.String()
}

// Canonicalize is the single entry point for turning any stored or submitted status text into a Status.
func Canonicalize(raw string) (Status, error) {
	if s, ok := statusAliases[foldStatus(raw)]; ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// Valid reports whether s is one of the canonical values.
func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Is compares against a canonical status.
func (s Status) Is(others ...Status) bool {
	for _, o := range others {
		if s == o {
			return true
		}
	}
	return false
}

// Closed covers the states a project never leaves through normal pipeline work.
func (s Status) Closed() bool {
	return s.Is(StatusCompleted, StatusClosedWon, StatusClosedLost, StatusArchived)
}

// InProduction covers the states where the deposit is in and the sign is being built or permitted.
func (s Status) InProduction() bool {
	return s.Is(StatusActiveProduction, StatusPermitPending)
}

// Scan canonicalizes on read so legacy spellings never leak past the data layer.
// Text outside the enumeration is kept verbatim and flagged (Valid reports false) instead of
// failing the whole query; Value refuses to write it back.
func (s *Status) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*s = ""
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("status: unsupported type %T", value)
	}
	if strings.TrimSpace(raw) == "" {
		*s = ""
		return nil
	}
	c, err := Canonicalize(raw)
	if err != nil {
		*s = Status(raw)
		return nil
	}
	*s = c
	return nil
}

// SplitUnknownStatus separates rows whose stored status is outside the enumeration.
func SplitUnknownStatus(rows []Project) (known, flagged []Project) {
	known = rows[:0:0]
	for _, p := range rows {
		if p.Status.Valid() {
			known = append(known, p)
		} else {
			flagged = append(flagged, p)
		}
	}
	return known, flagged
}

// Value refuses to write anything outside the enumeration.
func (s Status) Value() (driver.Value, error) {
	if s == "" {
		return nil, nil
	}
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, string(s))
	}
	return string(s), nil
}

// Badge is the dashboard label and colour for a status.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var badges = map[Status]Badge{
	StatusMigrated:         {Label: "Migrated", Color: "#888888"},
	StatusNew:              {Label: "New Lead", Color: "#00A8E8"},
	StatusBlockA:           {Label: "Intake", Color: "#00A8E8"},
	StatusDesign:           {Label: "Design", Color: "#9B59B6"},
	StatusQuoting:          {Label: "Quoting", Color: "#FFB800"},
	StatusAwaitingDeposit:  {Label: "Awaiting Deposit", Color: "#FF8C00"},
	StatusConfirmed:        {Label: "Confirmed", Color: "#39FF14"},
	StatusActiveProduction: {Label: "Active Production", Color: "#39FF14"},
	StatusPermitPending:    {Label: "Permit Pending", Color: "#FFB800"},
	StatusCompleted:        {Label: "Completed", Color: "#4CAF50"},
	StatusClosedWon:        {Label: "Won", Color: "#4CAF50"},
	StatusClosedLost:       {Label: "Lost", Color: "#FF4444"},
	StatusArchived:         {Label: "Archived", Color: "#555555"},
}

func (s Status) Badge() Badge {
	if b, ok := badges[s]; ok {
		return b
	}
	return Badge{Label: string(s), Color: "#888888"}
}
