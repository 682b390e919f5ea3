package ledger

import (
	"context"
	"testing"
	"time"

	"grayco-suite/internal/application/emails"
	"grayco-suite/internal/application/pipeline"
	"grayco-suite/internal/domain"
	"grayco-suite/internal/pkg/calendar"

	"github.com/glebarez/sqlite"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testTenant = uuid.MustParse("357145e4-b5a1-43e3-a9ba-f8e834b38034")

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, calendar.Location)
}

func ptr[T any](v T) *T { return &v }

func TestBuildEvents(t *testing.T) {
	acme := Row{
		ClientName: "Acme",
		Commission: domain.Commission{
			TotalValue:          ptr(5000.0),
			DepositAmount:       1000,
			DepositReceivedDate: ptr(day(2026, time.March, 3)),
			FinalPaymentDate:    ptr(day(2026, time.March, 20)),
			TotalAmountReceived: 5000,
			CommissionNotes:     "split with Bruno",
		},
	}
	unpaidFinal := Row{
		ClientName:     "Beta",
		CommissionRate: ptr(12.5),
		EstimatedValue: ptr(800.0),
		Commission: domain.Commission{
			DepositAmount:       400,
			DepositReceivedDate: ptr(day(2026, time.February, 17)),
			FinalPaymentDate:    ptr(day(2026, time.March, 1)),
		},
	}
	shortFinal := Row{
		ClientName: "Gamma",
		Commission: domain.Commission{
			DepositAmount:       500,
			FinalPaymentDate:    ptr(day(2026, time.March, 2)),
			TotalAmountReceived: 300,
		},
	}

	got := BuildEvents([]Row{unpaidFinal, shortFinal, acme})
	want := []Event{
		{ClientName: "Acme", Kind: KindFinal, Date: day(2026, time.March, 20), Amount: 4000, Rate: 10, Commission: 400, ProjectValue: 5000, Notes: "split with Bruno"},
		{ClientName: "Acme", Kind: KindDeposit, Date: day(2026, time.March, 3), Amount: 1000, Rate: 10, Commission: 100, ProjectValue: 5000, Notes: "split with Bruno"},
		{ClientName: "Beta", Kind: KindDeposit, Date: day(2026, time.February, 17), Amount: 400, Rate: 12.5, Commission: 50, ProjectValue: 800},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildEvents() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildEvents_ZeroDepositStillCounts(t *testing.T) {
	got := BuildEvents([]Row{{ClientName: "Free", Commission: domain.Commission{DepositReceivedDate: ptr(day(2026, time.March, 3))}}})
	require.Len(t, got, 1)
	assert.Zero(t, got[0].Amount)
	assert.Zero(t, got[0].ProjectValue)
}

func TestGroupByPeriod(t *testing.T) {
	events := []Event{
		{ClientName: "A", Date: day(2026, time.March, 20), Amount: 100, Commission: 10},
		{ClientName: "B", Date: day(2026, time.March, 15), Amount: 200, Commission: 20},
		{ClientName: "C", Date: day(2026, time.March, 1), Amount: 300, Commission: 30},
		{ClientName: "D", Date: day(2025, time.December, 31), Amount: 50, Commission: 5},
	}
	groups := GroupByPeriod(events)
	require.Len(t, groups, 3)

	assert.Equal(t, calendar.Period2, groups[0].Period)
	assert.Equal(t, time.March, groups[0].Month)
	assert.Equal(t, "March 2026", groups[0].MonthName)

	assert.Equal(t, calendar.Period1, groups[1].Period)
	assert.Equal(t, Summary{TotalPayments: 500, TotalCommission: 50, Count: 2}, groups[1].Summary)

	assert.Equal(t, 2025, groups[2].Year)
	assert.Equal(t, "Paid on the 5th", groups[2].PaidOnLabel)
}

func TestRenderReport(t *testing.T) {
	period := calendar.PeriodRange(2026, time.March, calendar.Period1)
	events := []Event{
		{ClientName: "Acme", Kind: KindDeposit, Date: day(2026, time.March, 3), Amount: 1000, Rate: 10, Commission: 100, Notes: "rush job"},
		{ClientName: "Beta", Kind: KindFinal, Date: day(2026, time.March, 9), Amount: 12000, Rate: 12.5, Commission: 1500},
	}
	generated := time.Date(2026, time.March, 16, 21, 30, 0, 0, time.UTC)

	r := RenderReport(period, events, generated)
	assert.Equal(t, "Commission Report - March 2026 1st - 15th", r.Subject)
	want := `Commission Report
Period: March 2026 1st - 15th

SUMMARY
-------
Total Payments Received: $13,000.00
Total Commission Earned: $1,600.00
Number of Payments: 2

DETAILS
-------
- Acme (Deposit on 2026-03-03): $1,000.00 -> Commission (10%): $100.00
  Note: rush job
- Beta (Final Payment on 2026-03-09): $12,000.00 -> Commission (12%): $1,500.00

---
Generated by Grayco Lite V3 on March 16, 2026 at 03:30 PM (MT)
`
	if diff := cmp.Diff(want, r.Body); diff != "" {
		t.Errorf("RenderReport() body mismatch (-want +got):\n%s", diff)
	}
}

func setupLedgerTest(t *testing.T, now time.Time) (*Service, *gorm.DB, *emails.Recorder) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(domain.Models()...))
	t.Cleanup(func() { _ = sqlDB.Close() })
	rec := &emails.Recorder{}
	return &Service{
		DB:        db,
		TenantID:  testTenant,
		Now:       func() time.Time { return now },
		Sender:    rec,
		Recipient: "bruno@test",
	}, db, rec
}

func seedPaid(t *testing.T, db *gorm.DB, name string, active bool, c domain.Commission) *domain.Project {
	t.Helper()
	p := &domain.Project{TenantID: testTenant, ClientName: name, Status: domain.StatusActiveProduction, IsActiveV3: active}
	require.NoError(t, db.Create(p).Error)
	c.TenantID = testTenant
	c.ProjectID = p.ID
	require.NoError(t, db.Create(&c).Error)
	return p
}

func TestService_ReportOnDeadlineDay(t *testing.T) {
	svc, db, rec := setupLedgerTest(t, time.Date(2026, time.March, 16, 9, 0, 0, 0, calendar.Location))
	ctx := context.Background()
	seedPaid(t, db, "In Period", true, domain.Commission{DepositAmount: 2000, DepositReceivedDate: ptr(day(2026, time.March, 15))})
	seedPaid(t, db, "Next Period", true, domain.Commission{DepositAmount: 700, DepositReceivedDate: ptr(day(2026, time.March, 16))})
	seedPaid(t, db, "Shoebox", false, domain.Commission{DepositAmount: 900, DepositReceivedDate: ptr(day(2026, time.March, 4))})

	r, err := svc.Report(ctx, day(2026, time.March, 16))
	require.NoError(t, err)
	assert.True(t, r.Period.Closed)
	require.Len(t, r.Events, 1)
	assert.Equal(t, "In Period", r.Events[0].ClientName)
	assert.Equal(t, 200.0, r.Summary.TotalCommission)

	res, err := svc.SendReport(ctx, r)
	require.NoError(t, err)
	assert.True(t, res.Succeeded())
	require.Len(t, rec.Sent, 1)
	assert.Equal(t, "bruno@test", rec.Sent[0].To)
	assert.Equal(t, "Commission Report - March 2026 1st - 15th", rec.Sent[0].Subject)
}

func TestService_ReportOnFirstCoversPreviousMonthEnd(t *testing.T) {
	svc, db, _ := setupLedgerTest(t, time.Date(2026, time.March, 1, 9, 0, 0, 0, calendar.Location))
	seedPaid(t, db, "Leap", true, domain.Commission{
		DepositAmount:       100,
		FinalPaymentDate:    ptr(day(2026, time.February, 28)),
		TotalAmountReceived: 1100,
	})

	r, err := svc.Report(context.Background(), day(2026, time.March, 1))
	require.NoError(t, err)
	assert.Equal(t, "February 2026 16th - 28th", r.Period.Range)
	require.Len(t, r.Events, 1)
	assert.Equal(t, 1000.0, r.Events[0].Amount)
}

func TestService_SendReportRefusesEmptyPeriod(t *testing.T) {
	svc, _, rec := setupLedgerTest(t, time.Date(2026, time.March, 10, 9, 0, 0, 0, calendar.Location))
	r, err := svc.ReportForPeriod(context.Background(), 2026, time.March, calendar.Period1)
	require.NoError(t, err)
	_, err = svc.SendReport(context.Background(), r)
	assert.ErrorIs(t, err, ErrNoPayments)
	assert.Empty(t, rec.Sent)

	_, err = svc.ReportForPeriod(context.Background(), 2026, time.March, 3)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestService_SetRate(t *testing.T) {
	svc, db, _ := setupLedgerTest(t, time.Date(2026, time.March, 10, 9, 0, 0, 0, calendar.Location))
	ctx := context.Background()
	p := seedPaid(t, db, "Acme", true, domain.Commission{DepositAmount: 1000, DepositReceivedDate: ptr(day(2026, time.March, 3))})

	require.NoError(t, svc.SetRate(ctx, p.ID, 15, nil))
	events, err := svc.Events(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 150.0, events[0].Commission)

	require.NoError(t, svc.SetRate(ctx, p.ID, 15, ptr("paid")))
	var stored domain.Project
	require.NoError(t, db.First(&stored, "id = ?", p.ID).Error)
	assert.Equal(t, "paid", stored.PaidStatus)

	assert.ErrorIs(t, svc.SetRate(ctx, p.ID, 101, nil), ErrInvalidRate)
	assert.ErrorIs(t, svc.SetRate(ctx, uuid.New(), 10, nil), pipeline.ErrProjectNotFound)
}
