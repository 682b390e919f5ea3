package ledger

import (
	"fmt"
	"strings"
	"time"

	"grayco-suite/internal/pkg/calendar"
	"grayco-suite/internal/pkg/money"
)

// Report is a rendered commission report for one pay period.
type Report struct {
	Period  calendar.ReportPeriod `json:"period"`
	Events  []Event               `json:"events"`
	Summary Summary               `json:"summary"`
	Subject string                `json:"subject"`
	Body    string                `json:"body"`
}

// RenderReport builds the plain-text report mailed to the pricing contact.
func RenderReport(period calendar.ReportPeriod, events []Event, generatedAt time.Time) *Report {
	sum := Summarize(events)
	lines := make([]string, 0, len(events))
	for _, e := range events {
		line := fmt.Sprintf("- %s (%s on %s): %s -> Commission (%.0f%%): %s",
			e.ClientName, e.KindLabel(), e.Date.Format("2006-01-02"),
			money.Format(e.Amount), e.Rate, money.Format(e.Commission))
		if e.Notes != "" {
			line += "\n  Note: " + e.Notes
		}
		lines = append(lines, line)
	}
	body := fmt.Sprintf(`Commission Report
Period: %s

SUMMARY
-------
Total Payments Received: %s
Total Commission Earned: %s
Number of Payments: %d

DETAILS
-------
%s

---
Generated by Grayco Lite V3 on %s (MT)
`, period.Range, money.Format(sum.TotalPayments), money.Format(sum.TotalCommission), sum.Count,
		strings.Join(lines, "\n"), generatedAt.In(calendar.Location).Format("January 02, 2006 at 03:04 PM"))

	return &Report{
		Period:  period,
		Events:  events,
		Summary: sum,
		Subject: "Commission Report - " + period.Range,
		Body:    body,
	}
}
