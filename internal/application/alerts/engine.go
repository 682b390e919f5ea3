package alerts

import (
	"fmt"
	"math"
	"time"

	"grayco-suite/internal/domain"
	"grayco-suite/internal/pkg/calendar"
)

// Nudge kinds.
const (
	KindDesignerNudge = "designer_nudge"
	KindPricingNudge  = "pricing_nudge"
	KindCustomerNudge = "customer_nudge"
	KindVictoryLap    = "victory_lap"
	KindUrgent        = "urgent"
	KindActionItem    = "action_item"
	KindPermitPulse   = "permit_pulse"
	KindHuddle        = "two_week_huddle"
)

// Business-day thresholds; a nudge fires once elapsed days exceed them.
const (
	DesignThreshold  = 3
	QuotingThreshold = 1
	DepositThreshold = 3
)

// Input is the slice of project state the nudge rules read.
type Input struct {
	Status          domain.Status
	StatusUpdatedAt *time.Time
	SnoozeUntil     *time.Time
}

// Nudge is a fired stale-stage reminder.
type Nudge struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Days    int    `json:"days"`
}

// Evaluate applies the stale-stage rules to one project at instant now.
func Evaluate(in Input, now time.Time) (Nudge, bool) {
	if in.SnoozeUntil != nil && in.SnoozeUntil.After(now) {
		return Nudge{}, false
	}
	if in.StatusUpdatedAt == nil {
		return Nudge{}, false
	}
	days := calendar.BusinessDaysBetween(calendar.Today(*in.StatusUpdatedAt), calendar.Today(now))
	switch in.Status {
	case domain.StatusDesign:
		if days > DesignThreshold {
			return Nudge{KindDesignerNudge, fmt.Sprintf("Matt hasn't responded in %d business days", days), days}, true
		}
	case domain.StatusQuoting:
		if days > QuotingThreshold {
			return Nudge{KindPricingNudge, fmt.Sprintf("Bruno hasn't responded in %d business days", days), days}, true
		}
	case domain.StatusAwaitingDeposit:
		if days > DepositThreshold {
			return Nudge{KindCustomerNudge, fmt.Sprintf("Customer hasn't paid deposit in %d business days", days), days}, true
		}
	}
	return Nudge{}, false
}

// Pulse returns the production check-in due for a job whose deposit landed on deposit.
// Ten calendar days asks for a permit update; fourteen calls the site-readiness huddle.
func Pulse(deposit, today time.Time) (Nudge, bool) {
	days := int(math.Round(calendar.Civil(today).Sub(calendar.Civil(deposit)).Hours() / 24))
	switch {
	case days >= 14:
		return Nudge{KindHuddle, "2-Week Huddle: Coordinate with Bruno and customer on site readiness", days}, true
	case days >= 10:
		return Nudge{KindPermitPulse, "10-Day Pulse: Check in with Kristen on permit status", days}, true
	}
	return Nudge{}, false
}
