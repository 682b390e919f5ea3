package pipeline

import (
	"context"
	"testing"
	"time"

	"grayco-suite/internal/domain"
	"grayco-suite/internal/pkg/calendar"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testTenant = uuid.MustParse("357145e4-b5a1-43e3-a9ba-f8e834b38034")

// Friday 6 March 2026, mid-morning in Denver.
var fixedNow = time.Date(2026, time.March, 6, 10, 0, 0, 0, calendar.Location)

func setupPipelineTest(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(domain.Models()...))
	svc := &Service{DB: db, TenantID: testTenant, Now: func() time.Time { return fixedNow }}
	return svc, db
}

func seedProject(t *testing.T, db *gorm.DB, status domain.Status, mutate func(p *domain.Project)) *domain.Project {
	t.Helper()
	p := &domain.Project{
		TenantID:   testTenant,
		ClientName: "Seed Co",
		Status:     status,
		IsActiveV3: true,
		CreatedAt:  fixedNow,
		UpdatedAt:  fixedNow,
	}
	if mutate != nil {
		mutate(p)
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func historyTypes(t *testing.T, svc *Service, id uuid.UUID) []string {
	t.Helper()
	rows, err := svc.ListHistory(context.Background(), id)
	require.NoError(t, err)
	out := make([]string, 0, len(rows))
	for _, h := range rows {
		out = append(out, h.EntryType)
	}
	return out
}

func TestCreateLead_DefaultsAndHistory(t *testing.T) {
	svc, db := setupPipelineTest(t)
	p, err := svc.CreateLead(context.Background(), LeadInput{Name: " Acme Co ", Phone: "555-1234", SiteAddress: "1 Main St"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Co", p.ClientName)
	assert.Equal(t, "Acme Co", p.PrimaryContactName)
	assert.Equal(t, domain.StatusNew, p.Status)
	assert.True(t, p.IsActiveV3)
	assert.Equal(t, domain.SourceManual, p.Source)

	got, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, got.Status)
	assert.Equal(t, "555-1234", got.PrimaryContactPhone)

	assert.Equal(t, []string{domain.EntryPhone}, historyTypes(t, svc, p.ID))

	var contacts, locations int64
	db.Model(&domain.Contact{}).Where("project_id = ?", p.ID).Count(&contacts)
	db.Model(&domain.Location{}).Where("project_id = ?", p.ID).Count(&locations)
	assert.Equal(t, int64(1), contacts)
	assert.Equal(t, int64(1), locations)
}

func TestCreateLead_UnknownName(t *testing.T) {
	svc, _ := setupPipelineTest(t)
	p, err := svc.CreateLead(context.Background(), LeadInput{Email: "owner@acme.test", Source: domain.SourceZapier})
	require.NoError(t, err)
	assert.Equal(t, "Unknown", p.ClientName)
	assert.Empty(t, p.PrimaryContactName)
	assert.Equal(t, domain.SourceZapier, p.Source)

	got, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PrimaryContactName)
}

func TestCreateLead_NoData(t *testing.T) {
	svc, _ := setupPipelineTest(t)
	_, err := svc.CreateLead(context.Background(), LeadInput{Notes: "just a note"})
	assert.ErrorIs(t, err, ErrNoLeadData)
}

func TestAddNote_MovesNewToBlockA(t *testing.T) {
	svc, db := setupPipelineTest(t)
	p := seedProject(t, db, domain.StatusNew, nil)

	got, err := svc.AddNote(context.Background(), p.ID, "Called, left voicemail")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBlockA, got.Status)

	stored, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBlockA, stored.Status)
	require.NotNil(t, stored.StatusUpdatedAt)
	assert.ElementsMatch(t, []string{domain.EntryNote, domain.EntryStatusChange}, historyTypes(t, svc, p.ID))
}

func TestAddNote_LaterStatusUnchanged(t *testing.T) {
	svc, db := setupPipelineTest(t)
	p := seedProject(t, db, domain.StatusDesign, nil)
	got, err := svc.AddNote(context.Background(), p.ID, "Matt is on it")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDesign, got.Status)
	assert.Equal(t, []string{domain.EntryNote}, historyTypes(t, svc, p.ID))
}

func TestAddNote_Empty(t *testing.T) {
	svc, db := setupPipelineTest(t)
	p := seedProject(t, db, domain.StatusNew, nil)
	_, err := svc.AddNote(context.Background(), p.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyNote)
}

func TestLogContact(t *testing.T) {
	svc, db := setupPipelineTest(t)
	p := seedProject(t, db, domain.StatusNew, nil)

	_, err := svc.LogContact(context.Background(), p.ID, "fax", "")
	assert.ErrorIs(t, err, ErrInvalidContactKind)

	got, err := svc.LogContact(context.Background(), p.ID, domain.TouchTextSent, "sent intro")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBlockA, got.Status)

	touches, err := svc.ListTouches(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, touches, 1)
	assert.Equal(t, "Text sent: sent intro", touches[0].Description)

	stored, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastTouched)
}

func TestAdvanceIf_FailedSendNeverMoves(t *testing.T) {
	svc, db := setupPipelineTest(t)
	p := seedProject(t, db, domain.StatusBlockA, nil)
	got, moved, err := svc.AdvanceIf(context.Background(), p.ID, Outcome(false), DesignRequestSent)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, domain.StatusBlockA, got.Status)
	assert.Empty(t, historyTypes(t, svc, p.ID))
}

func TestAdvanceIf_LaterStatusDoesNotRegress(t *testing.T) {
	svc, db := setupPipelineTest(t)
	p := seedProject(t, db, domain.StatusQuoting, nil)
	got, moved, err := svc.AdvanceIf(context.Background(), p.ID, Outcome(true), DesignRequestSent)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, domain.StatusQuoting, got.Status)
	assert.Equal(t, []string{domain.EntryEmailSent}, historyTypes(t, svc, p.ID))
}

func TestAdvanceIf_NotFound(t *testing.T) {
	svc, _ := setupPipelineTest(t)
	_, _, err := svc.AdvanceIf(context.Background(), uuid.New(), Outcome(true), DesignRequestSent)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestTenantScoping(t *testing.T) {
	svc, db := setupPipelineTest(t)
	other := seedProject(t, db, domain.StatusNew, func(p *domain.Project) { p.TenantID = uuid.New() })
	_, err := svc.Get(context.Background(), other.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestListPipeline_ExcludesClosedAndSorts(t *testing.T) {
	svc, db := setupPipelineTest(t)
	seedProject(t, db, domain.StatusDesign, func(p *domain.Project) { p.ClientName = "bravo"; p.CreatedAt = fixedNow.Add(-time.Hour) })
	seedProject(t, db, domain.StatusNew, func(p *domain.Project) { p.ClientName = "Alpha" })
	seedProject(t, db, domain.StatusArchived, func(p *domain.Project) { p.ClientName = "Archived Co" })
	seedProject(t, db, domain.StatusClosedLost, func(p *domain.Project) { p.ClientName = "Lost Co" })
	seedProject(t, db, domain.StatusQuoting, func(p *domain.Project) { p.ClientName = "Shoebox"; p.IsActiveV3 = false })

	rows, err := svc.ListPipeline(context.Background(), SortNameAsc)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alpha", rows[0].ClientName)
	assert.Equal(t, "bravo", rows[1].ClientName)

	rows, err = svc.ListPipeline(context.Background(), SortNewest)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", rows[0].ClientName)

	_, err = svc.ListPipeline(context.Background(), "oldest")
	assert.ErrorIs(t, err, ErrInvalidSort)
}

func TestAddContact_PrimaryReplacesProjectContact(t *testing.T) {
	svc, db := setupPipelineTest(t)
	p := seedProject(t, db, domain.StatusBlockA, nil)
	_, err := svc.AddContact(context.Background(), p.ID, ContactInput{Name: "Dana", Email: "dana@acme.test", IsPrimary: true})
	require.NoError(t, err)
	_, err = svc.AddContact(context.Background(), p.ID, ContactInput{Name: "Lee", Role: "Facilities"})
	require.NoError(t, err)

	contacts, err := svc.ListContacts(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Dana", contacts[0].Name)

	stored, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "dana@acme.test", stored.PrimaryContactEmail)
}

func TestAddContact_RejectsBadPhoneAndEmail(t *testing.T) {
	svc, db := setupPipelineTest(t)
	p := seedProject(t, db, domain.StatusBlockA, nil)

	_, err := svc.AddContact(context.Background(), p.ID, ContactInput{Name: "Lee", Phone: "12-34"})
	assert.ErrorIs(t, err, ErrInvalidPhone)
	_, err = svc.AddContact(context.Background(), p.ID, ContactInput{Name: "Lee", Email: "lee at acme"})
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = svc.AddContact(context.Background(), p.ID, ContactInput{Name: "Lee", Phone: "(303) 555-0100"})
	require.NoError(t, err)
}

func TestRecordAttempt_FailureStillLogged(t *testing.T) {
	svc, db := setupPipelineTest(t)
	p := seedProject(t, db, domain.StatusBlockA, nil)
	require.NoError(t, svc.RecordAttempt(context.Background(), p.ID, "design_request", "matt@kbsigns.test", "Design Request: Seed Co", false, "dial tcp: refused"))

	var logged domain.ProcessedEmail
	require.NoError(t, db.Where("project_id = ?", p.ID).First(&logged).Error)
	assert.False(t, logged.Sent)
	assert.Equal(t, []string{domain.EntryEmailFailed}, historyTypes(t, svc, p.ID))

	stored, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBlockA, stored.Status)
}

func TestListPipeline_UnrecognizedStatusIsLeftOut(t *testing.T) {
	svc, db := setupPipelineTest(t)
	seedProject(t, db, domain.StatusDesign, func(p *domain.Project) { p.ClientName = "Keeper" })
	odd := seedProject(t, db, domain.StatusNew, func(p *domain.Project) { p.ClientName = "Odd" })
	cancelled := seedProject(t, db, domain.StatusNew, func(p *domain.Project) { p.ClientName = "Cancelled" })
	require.NoError(t, db.Exec("UPDATE projects SET status = ? WHERE id = ?", "qoting", odd.ID).Error)
	require.NoError(t, db.Exec("UPDATE projects SET status = ? WHERE id = ?", "cancelled", cancelled.ID).Error)

	rows, err := svc.ListPipeline(context.Background(), SortNameAsc)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Keeper", rows[0].ClientName)

	lost, err := svc.ListByStatus(context.Background(), domain.StatusClosedLost)
	require.NoError(t, err)
	require.Len(t, lost, 1)
	assert.Equal(t, "Cancelled", lost[0].ClientName)

	got, err := svc.Get(context.Background(), odd.ID)
	require.NoError(t, err)
	assert.False(t, got.Status.Valid())
}
