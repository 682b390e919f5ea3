package pipeline

import (
	"grayco-suite/internal/domain"
)

// CanMarkWon reports whether the "project won" escape hatch is available.
func CanMarkWon(s domain.Status) bool {
	return !s.Is(domain.StatusClosedWon, domain.StatusClosedLost, domain.StatusCompleted, domain.StatusArchived, domain.StatusNew)
}

// CanMarkLost reports whether the "project lost" escape hatch is available.
func CanMarkLost(s domain.Status) bool {
	return !s.Is(domain.StatusClosedWon, domain.StatusClosedLost, domain.StatusCompleted, domain.StatusArchived, domain.StatusNew)
}

// PricingUnlocked is true once a design proof exists or the job needs no design (repairs, service calls).
func PricingUnlocked(p *domain.Project) bool {
	return p.HasDesignProof() || p.NoDesignRequired
}

// SpecsReady is the deposit-confirm gate: both the golden proof and the customer-signed spec must exist.
func SpecsReady(p *domain.Project) bool {
	return p.HasMasterSpec() && p.HasSignedSpec()
}

// Result is the outcome of a send attempt. emails.Result satisfies it.
type Result interface {
	Succeeded() bool
}

// Rule is the second phase of a send: which statuses advance, where to, and what the log says.
type Rule struct {
	Name string
	// From lists the statuses that advance. Empty means any status that is not closed.
	From []domain.Status
	To   domain.Status
	// Advanced is recorded as a STATUS_CHANGE entry when the status moves.
	Advanced string
	// Unchanged is recorded as an EMAIL_SENT entry when the send succeeded but the status stays put.
	Unchanged string
}

// Next returns the status the project should move to, or false when it stays.
func (r Rule) Next(current domain.Status, res Result) (domain.Status, bool) {
	if res == nil || !res.Succeeded() {
		return current, false
	}
	if current == r.To {
		return current, false
	}
	if len(r.From) == 0 {
		if current.Closed() {
			return current, false
		}
		return r.To, true
	}
	if current.Is(r.From...) {
		return r.To, true
	}
	return current, false
}

var (
	DesignRequestSent = Rule{
		Name:      "design_request",
		From:      []domain.Status{domain.StatusMigrated, domain.StatusNew, domain.StatusBlockA},
		To:        domain.StatusDesign,
		Advanced:  "[SYSTEM] Email sent to Matt - Project moved to Design",
		Unchanged: "[SYSTEM] Design request email sent to Matt",
	}
	PricingRequestSent = Rule{
		Name:      "pricing_request",
		From:      []domain.Status{domain.StatusMigrated, domain.StatusNew, domain.StatusBlockA, domain.StatusDesign},
		To:        domain.StatusQuoting,
		Advanced:  "[SYSTEM] Email sent to Bruno - Project moved to Quoting",
		Unchanged: "[SYSTEM] Pricing request email sent to Bruno",
	}
	ProposalSent = Rule{
		Name:      "proposal",
		From:      []domain.Status{domain.StatusMigrated, domain.StatusNew, domain.StatusBlockA, domain.StatusDesign, domain.StatusQuoting},
		To:        domain.StatusAwaitingDeposit,
		Advanced:  "[SYSTEM] Proposal sent to customer - Awaiting deposit",
		Unchanged: "[SYSTEM] Proposal email sent to customer",
	}
	VictoryLapSent = Rule{
		Name:      "victory_lap",
		To:        domain.StatusCompleted,
		Advanced:  "[SYSTEM] Victory lap sent - Project completed",
		Unchanged: "[SYSTEM] Victory lap email sent",
	}
	// OutboundContact moves a fresh lead into intake the first time anyone reaches out.
	OutboundContact = Rule{
		Name:     "outbound_contact",
		From:     []domain.Status{domain.StatusNew},
		To:       domain.StatusBlockA,
		Advanced: "[SYSTEM] First contact made - Project moved to Block A",
	}
)

// Outcome is a Result for actions that are not sends, such as a note or a logged call.
type Outcome bool

func (o Outcome) Succeeded() bool { return bool(o) }
