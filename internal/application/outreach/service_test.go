package outreach

import (
	"context"
	"testing"
	"time"

	"grayco-suite/internal/application/emails"
	"grayco-suite/internal/application/intake"
	"grayco-suite/internal/application/pipeline"
	"grayco-suite/internal/domain"
	"grayco-suite/internal/pkg/calendar"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testTenant = uuid.MustParse("357145e4-b5a1-43e3-a9ba-f8e834b38034")

var fixedNow = time.Date(2026, time.March, 6, 10, 0, 0, 0, calendar.Location)

type fakeFiles struct {
	files  map[string]emails.Attachment
	large  map[string]bool
	shared []string
}

func (f *fakeFiles) Download(_ context.Context, id string) (emails.Attachment, error) {
	if f.large[id] {
		return emails.Attachment{}, emails.ErrAttachmentTooLarge
	}
	a, ok := f.files[id]
	if !ok {
		return emails.Attachment{}, assert.AnError
	}
	return a, nil
}

func (f *fakeFiles) SharePublic(_ context.Context, id string) error {
	f.shared = append(f.shared, id)
	return nil
}

func setupOutreachTest(t *testing.T) (*Service, *gorm.DB, *emails.Recorder, *fakeFiles) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(domain.Models()...))
	t.Cleanup(func() { _ = sqlDB.Close() })

	rec := &emails.Recorder{}
	files := &fakeFiles{files: map[string]emails.Attachment{}, large: map[string]bool{}}
	svc := &Service{
		Pipeline:      &pipeline.Service{DB: db, TenantID: testTenant, Now: func() time.Time { return fixedNow }},
		Sender:        rec,
		Files:         files,
		DesignerEmail: "matt@test",
		PricingEmail:  "bruno@test",
		ReplyTo:       "kam@test",
	}
	return svc, db, rec, files
}

func seed(t *testing.T, db *gorm.DB, status domain.Status, mutate func(p *domain.Project)) *domain.Project {
	t.Helper()
	p := &domain.Project{TenantID: testTenant, ClientName: "Acme Dental", Status: status, IsActiveV3: true, CreatedAt: fixedNow, UpdatedAt: fixedNow}
	if mutate != nil {
		mutate(p)
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func attempts(t *testing.T, db *gorm.DB, id uuid.UUID) []domain.ProcessedEmail {
	t.Helper()
	var out []domain.ProcessedEmail
	require.NoError(t, db.Where("project_id = ?", id).Order("created_at ASC").Find(&out).Error)
	return out
}

func TestSendDesignRequest_AttachesSitePhotosAndAdvances(t *testing.T) {
	svc, db, rec, files := setupOutreachTest(t)
	ctx := context.Background()
	p := seed(t, db, domain.StatusBlockA, nil)
	for i, id := range []string{"s1", "s2", "s3", "s4"} {
		files.files[id] = emails.Attachment{FileName: id + ".jpg", Data: []byte{byte(i + 1)}}
		_, err := svc.Pipeline.AddPhoto(ctx, p.ID, pipeline.PhotoInput{DriveFileID: id, FileName: id + ".jpg", Category: domain.PhotoSite})
		require.NoError(t, err)
	}

	out, err := svc.SendDesignRequest(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, out.Result.Succeeded())
	assert.True(t, out.Advanced)
	assert.Equal(t, domain.StatusDesign, out.Project.Status)
	assert.Len(t, out.Attached, 3)

	require.Len(t, rec.Sent, 1)
	assert.Equal(t, "matt@test", rec.Sent[0].To)
	assert.Equal(t, "Design Request: Acme Dental", rec.Sent[0].Subject)

	logged := attempts(t, db, p.ID)
	require.Len(t, logged, 1)
	assert.True(t, logged[0].Sent)
	assert.Equal(t, KindDesignRequest, logged[0].Kind)
}

func TestSendDesignRequest_LaterStatusDoesNotRegress(t *testing.T) {
	svc, db, _, _ := setupOutreachTest(t)
	p := seed(t, db, domain.StatusQuoting, nil)
	out, err := svc.SendDesignRequest(context.Background(), p.ID)
	require.NoError(t, err)
	assert.False(t, out.Advanced)
	assert.Equal(t, domain.StatusQuoting, out.Project.Status)
}

func TestSendPricingRequest_LockedRefusesBeforeSending(t *testing.T) {
	svc, db, rec, _ := setupOutreachTest(t)
	p := seed(t, db, domain.StatusDesign, nil)

	_, err := svc.SendPricingRequest(context.Background(), p.ID)
	assert.ErrorIs(t, err, pipeline.ErrPricingLocked)
	assert.Empty(t, rec.Sent)
	assert.Empty(t, attempts(t, db, p.ID))
}

func TestSendPricingRequest_OversizedProofFallsBackToLink(t *testing.T) {
	svc, db, rec, files := setupOutreachTest(t)
	p := seed(t, db, domain.StatusDesign, func(p *domain.Project) { p.DesignProofDriveID = "proof" })
	files.large["proof"] = true

	out, err := svc.SendPricingRequest(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQuoting, out.Project.Status)
	assert.Contains(t, rec.Sent[0].Body, "too large to attach")
	assert.Equal(t, []string{"proof"}, files.shared)
}

func TestFailedSend_LogsAttemptButDoesNotAdvance(t *testing.T) {
	svc, db, rec, _ := setupOutreachTest(t)
	rec.Result = emails.Failed("SMTP configuration incomplete. Check secrets.")
	p := seed(t, db, domain.StatusQuoting, func(p *domain.Project) {
		p.ProposalDriveID = "prop"
		p.PrimaryContactEmail = "owner@acme.test"
	})

	out, err := svc.SendProposal(context.Background(), p.ID, "")
	require.NoError(t, err)
	assert.False(t, out.Result.Succeeded())
	assert.False(t, out.Advanced)

	stored, err := svc.Pipeline.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQuoting, stored.Status)

	logged := attempts(t, db, p.ID)
	require.Len(t, logged, 1)
	assert.False(t, logged[0].Sent)
	assert.Equal(t, "owner@acme.test", logged[0].Recipient)

	hist, err := svc.Pipeline.ListHistory(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotEmpty(t, hist)
	assert.Equal(t, domain.EntryEmailFailed, hist[0].EntryType)
}

func TestSendProposal_RequiresFileAndRecipient(t *testing.T) {
	svc, db, _, _ := setupOutreachTest(t)
	ctx := context.Background()
	noFile := seed(t, db, domain.StatusQuoting, nil)
	_, err := svc.SendProposal(ctx, noFile.ID, "x@test")
	assert.ErrorIs(t, err, ErrNoProposalFile)

	noEmail := seed(t, db, domain.StatusQuoting, func(p *domain.Project) { p.ProposalDriveID = "prop" })
	_, err = svc.SendProposal(ctx, noEmail.ID, "")
	assert.ErrorIs(t, err, ErrNoRecipient)
}

func TestDepositInvoiceFlow_TicksChecklist(t *testing.T) {
	svc, db, rec, _ := setupOutreachTest(t)
	ctx := context.Background()
	p := seed(t, db, domain.StatusAwaitingDeposit, func(p *domain.Project) { p.PrimaryContactEmail = "owner@acme.test" })

	out, err := svc.SendDepositInvoice(ctx, p.ID, "", "https://invoice")
	require.NoError(t, err)
	assert.True(t, out.Project.DepositInvoiceRequested)
	assert.True(t, out.Project.DepositInvoiceSent)
	assert.Equal(t, "Deposit Invoice - Acme Dental Sign Project", rec.Sent[0].Subject)
	assert.Equal(t, "kam@test", rec.Sent[0].ReplyTo)
}

func TestBalanceDueAndFinalInvoice(t *testing.T) {
	svc, db, rec, _ := setupOutreachTest(t)
	ctx := context.Background()
	p := seed(t, db, domain.StatusActiveProduction, func(p *domain.Project) { v := 9000.0; p.EstimatedValue = &v })
	total := 10000.0
	require.NoError(t, db.Create(&domain.Commission{TenantID: testTenant, ProjectID: p.ID, TotalValue: &total, DepositAmount: 5000}).Error)

	bal, err := svc.BalanceDue(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, bal)

	_, err = svc.RequestFinalInvoice(ctx, p.ID)
	require.NoError(t, err)
	assert.Contains(t, rec.Sent[0].Body, "REMAINING BALANCE: $5,000.00")
}

func TestSendNightBefore_ClearsAction(t *testing.T) {
	svc, db, rec, _ := setupOutreachTest(t)
	ctx := context.Background()
	due := fixedNow
	p := seed(t, db, domain.StatusConfirmed, func(p *domain.Project) {
		p.PendingAction = true
		p.ActionNote = "Send night-before confirmation"
		p.ActionDueDate = &due
		p.PrimaryContactEmail = "owner@acme.test"
	})

	_, err := svc.SendNightBefore(ctx, p.ID, "")
	assert.ErrorIs(t, err, ErrNoInstallDate)
	assert.Empty(t, rec.Sent)

	install := calendar.Today(fixedNow).AddDate(0, 0, 1)
	_, err = svc.Pipeline.SaveLogistics(ctx, p.ID, pipeline.LogisticsUpdate{TargetInstallationDate: &install})
	require.NoError(t, err)

	out, err := svc.SendNightBefore(ctx, p.ID, "")
	require.NoError(t, err)
	assert.False(t, out.Project.PendingAction)
	assert.Contains(t, rec.Sent[0].Body, "scheduled for tomorrow, Saturday, March 7, 2026.")

	hist, err := svc.Pipeline.ListHistory(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EntryAutoComplete, hist[0].EntryType)
}

func TestSendVictoryLap_CompletesProject(t *testing.T) {
	svc, db, rec, _ := setupOutreachTest(t)
	ctx := context.Background()
	p := seed(t, db, domain.StatusConfirmed, nil)
	_, err := svc.Pipeline.AddContact(ctx, p.ID, pipeline.ContactInput{Name: "Dr. Lee", Email: "lee@acme.test", IsPrimary: true})
	require.NoError(t, err)

	out, err := svc.SendVictoryLap(ctx, p.ID, "")
	require.NoError(t, err)
	assert.True(t, out.Advanced)
	assert.Equal(t, domain.StatusCompleted, out.Project.Status)
	assert.Equal(t, "lee@acme.test", rec.Sent[0].To)
	assert.Contains(t, rec.Sent[0].Body, "Hi Acme,")
}

func TestWebhookLeadThroughDesignThenPricingLocked(t *testing.T) {
	svc, _, rec, _ := setupOutreachTest(t)
	ctx := context.Background()
	in := &intake.Service{Pipeline: svc.Pipeline}

	receipt, err := in.ReceiveWebhook(ctx, map[string]any{"name": "Acme Co", "phone": "555-1234"})
	require.NoError(t, err)
	assert.Equal(t, "Lead created: Acme Co", receipt.Message)
	p, err := svc.Pipeline.Get(ctx, receipt.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, p.Status)

	p, err = svc.Pipeline.AddNote(ctx, receipt.ProjectID, "Wants a channel letter sign")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBlockA, p.Status)

	out, err := svc.SendDesignRequest(ctx, receipt.ProjectID)
	require.NoError(t, err)
	assert.True(t, out.Advanced)
	assert.Equal(t, domain.StatusDesign, out.Project.Status)

	_, err = svc.SendPricingRequest(ctx, receipt.ProjectID)
	assert.ErrorIs(t, err, pipeline.ErrPricingLocked)

	p, err = svc.Pipeline.Get(ctx, receipt.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDesign, p.Status)
	require.Len(t, rec.Sent, 1)
	assert.Equal(t, "matt@test", rec.Sent[0].To)
}
