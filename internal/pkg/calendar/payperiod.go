package calendar

import (
	"fmt"
	"time"
)

// Period identifies one of the two semi-monthly commission windows.
type Period int

const (
	Period1 Period = 1 // 1st through 15th, paid on the 20th
	Period2 Period = 2 // 16th through end of month, paid on the 5th of next month
)

// PayPeriod describes the commission window a date belongs to.
type PayPeriod struct {
	Year          int        `json:"year"`
	Month         time.Month `json:"month"`
	Period        Period     `json:"period"`
	Label         string     `json:"label"`
	PaidOn        time.Time  `json:"paid_on"`
	PaidOnLabel   string     `json:"paid_on_label"`
	SubmissionDue string     `json:"submission_due"`
}

// PayPeriodOf buckets a civil date into its pay period.
func PayPeriodOf(d time.Time) PayPeriod {
	d = Civil(d)
	if d.Day() <= 15 {
		return PayPeriod{
			Year:          d.Year(),
			Month:         d.Month(),
			Period:        Period1,
			Label:         "1st - 15th",
			PaidOn:        time.Date(d.Year(), d.Month(), 20, 0, 0, 0, 0, Location),
			PaidOnLabel:   "Paid on the 20th",
			SubmissionDue: "Submission Due: 16th",
		}
	}
	return PayPeriod{
		Year:          d.Year(),
		Month:         d.Month(),
		Period:        Period2,
		Label:         "16th - End of Month",
		PaidOn:        time.Date(d.Year(), d.Month()+1, 5, 0, 0, 0, 0, Location),
		PaidOnLabel:   "Paid on the 5th",
		SubmissionDue: "Submission Due: 1st",
	}
}

// ReportPeriod is a concrete, closed date range for a commission report.
type ReportPeriod struct {
	Year   int        `json:"year"`
	Month  time.Month `json:"month"`
	Period Period     `json:"period"`
	Start  time.Time  `json:"start"`
	End    time.Time  `json:"end"`
	Range  string     `json:"range"`
	// Closed is true on the submission deadline days, when the period has just ended.
	Closed bool `json:"closed"`
}

// Contains reports whether the civil date d lies inside the period (inclusive on both ends).
func (r ReportPeriod) Contains(d time.Time) bool {
	d = Civil(d)
	return !d.Before(r.Start) && !d.After(r.End)
}

// PeriodRange builds the report period for a given year, month and window.
func PeriodRange(year int, month time.Month, p Period) ReportPeriod {
	startDay, endDay := 1, 15
	if p == Period2 {
		startDay, endDay = 16, DaysInMonth(year, month)
	}
	return ReportPeriod{
		Year:   year,
		Month:  month,
		Period: p,
		Start:  time.Date(year, month, startDay, 0, 0, 0, 0, Location),
		End:    time.Date(year, month, endDay, 0, 0, 0, 0, Location),
		Range:  fmt.Sprintf("%s %s - %s", MonthLabel(year, month), Ordinal(startDay), Ordinal(endDay)),
	}
}

// ReportPeriodFor picks the period a report generated on today should cover.
// On the 16th it is the just-closed Period 1; on the 1st it is the previous month's Period 2;
// on any other day it is the period in progress.
func ReportPeriodFor(today time.Time) ReportPeriod {
	today = Civil(today)
	switch today.Day() {
	case 16:
		r := PeriodRange(today.Year(), today.Month(), Period1)
		r.Closed = true
		return r
	case 1:
		prev := today.AddDate(0, 0, -1)
		r := PeriodRange(prev.Year(), prev.Month(), Period2)
		r.Closed = true
		return r
	}
	pp := PayPeriodOf(today)
	return PeriodRange(today.Year(), today.Month(), pp.Period)
}

// DeadlineReminder returns the submission reminder shown on deadline days.
func DeadlineReminder(today time.Time) (string, bool) {
	r := ReportPeriodFor(today)
	if !r.Closed {
		return "", false
	}
	return fmt.Sprintf("Period %d Complete (%s). Review and send commission report to Bruno today.",
		r.Period, MonthLabel(r.Year, r.Month)), true
}
