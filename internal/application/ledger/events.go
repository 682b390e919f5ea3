package ledger

import (
	"sort"
	"time"

	"grayco-suite/internal/domain"
	"grayco-suite/internal/pkg/calendar"
	"grayco-suite/internal/pkg/money"

	"github.com/google/uuid"
)

// Payment kinds.
const (
	KindDeposit = "deposit"
	KindFinal   = "final"
)

// Row is a project joined with its commission record.
type Row struct {
	ProjectID      uuid.UUID
	ClientName     string
	Status         domain.Status
	EstimatedValue *float64
	CommissionRate *float64
	Commission     domain.Commission
}

// Event is one payment the shop earns commission on.
type Event struct {
	ProjectID    uuid.UUID     `json:"project_id"`
	ClientName   string        `json:"client_name"`
	Status       domain.Status `json:"status"`
	Kind         string        `json:"payment_type"`
	Date         time.Time     `json:"payment_date"`
	Amount       float64       `json:"payment_amount"`
	Rate         float64       `json:"commission_rate"`
	Commission   float64       `json:"commission"`
	ProjectValue float64       `json:"project_value"`
	Notes        string        `json:"commission_notes,omitempty"`
}

// KindLabel is how reports name the payment.
func (e Event) KindLabel() string {
	if e.Kind == KindFinal {
		return "Final Payment"
	}
	return "Deposit"
}

func (r Row) rate() float64 {
	if r.CommissionRate == nil {
		return domain.DefaultCommissionRate
	}
	return *r.CommissionRate
}

func (r Row) projectValue() float64 {
	switch {
	case r.Commission.TotalValue != nil:
		return *r.Commission.TotalValue
	case r.EstimatedValue != nil:
		return *r.EstimatedValue
	}
	return 0
}

func (r Row) event(kind string, date time.Time, amount float64) Event {
	rate := r.rate()
	return Event{
		ProjectID:    r.ProjectID,
		ClientName:   r.ClientName,
		Status:       r.Status,
		Kind:         kind,
		Date:         calendar.Civil(date),
		Amount:       amount,
		Rate:         rate,
		Commission:   amount * rate / 100,
		ProjectValue: r.projectValue(),
		Notes:        r.Commission.CommissionNotes,
	}
}

// BuildEvents turns commission rows into payment events, newest first.
// A deposit counts once its date is recorded. The final payment counts once its date is recorded and
// the total received is positive and covers the deposit; its amount is the remainder after the deposit.
func BuildEvents(rows []Row) []Event {
	out := make([]Event, 0, len(rows))
	for _, r := range rows {
		c := r.Commission
		if c.DepositReceivedDate != nil {
			out = append(out, r.event(KindDeposit, *c.DepositReceivedDate, c.DepositAmount))
		}
		if c.FinalPaymentDate != nil && c.TotalAmountReceived >= c.DepositAmount && c.TotalAmountReceived > 0 {
			out = append(out, r.event(KindFinal, *c.FinalPaymentDate, max(0, c.TotalAmountReceived-c.DepositAmount)))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// Summary totals a set of events.
type Summary struct {
	TotalPayments   float64 `json:"total_payments"`
	TotalCommission float64 `json:"total_commission"`
	Count           int     `json:"count"`
}

func Summarize(events []Event) Summary {
	var s Summary
	for _, e := range events {
		s.TotalPayments += e.Amount
		s.TotalCommission += e.Commission
	}
	s.TotalPayments = money.Round2(s.TotalPayments)
	s.TotalCommission = money.Round2(s.TotalCommission)
	s.Count = len(events)
	return s
}

// Group is every event inside one pay period.
type Group struct {
	calendar.PayPeriod
	MonthName string  `json:"month_name"`
	Events    []Event `json:"events"`
	Summary   Summary `json:"summary"`
}

// GroupByPeriod buckets events by (year, month, period), newest period first.
func GroupByPeriod(events []Event) []Group {
	type key struct {
		year   int
		month  time.Month
		period calendar.Period
	}
	idx := map[key]int{}
	var groups []Group
	for _, e := range events {
		pp := calendar.PayPeriodOf(e.Date)
		k := key{pp.Year, pp.Month, pp.Period}
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, Group{PayPeriod: pp, MonthName: calendar.MonthLabel(pp.Year, pp.Month)})
		}
		groups[i].Events = append(groups[i].Events, e)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Month != b.Month {
			return a.Month > b.Month
		}
		return a.Period > b.Period
	})
	for i := range groups {
		groups[i].Summary = Summarize(groups[i].Events)
	}
	return groups
}

// InPeriod keeps the events whose payment date falls inside r.
func InPeriod(events []Event, r calendar.ReportPeriod) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if r.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}
