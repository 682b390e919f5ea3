package router

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	alertsvc "grayco-suite/internal/application/alerts"
	authsvc "grayco-suite/internal/application/auth"
	"grayco-suite/internal/application/emails"
	healthsvc "grayco-suite/internal/application/health"
	intakesvc "grayco-suite/internal/application/intake"
	ledgersvc "grayco-suite/internal/application/ledger"
	outreachsvc "grayco-suite/internal/application/outreach"
	"grayco-suite/internal/application/pipeline"
	"grayco-suite/internal/config"
	"grayco-suite/internal/constants"
	"grayco-suite/internal/infrastructure/database"
	"grayco-suite/internal/infrastructure/drive"
	"grayco-suite/internal/infrastructure/gemini"
	"grayco-suite/internal/infrastructure/mailer"
	alerthandler "grayco-suite/internal/interfaces/handlers/alerts"
	authhandler "grayco-suite/internal/interfaces/handlers/auth"
	healthhandler "grayco-suite/internal/interfaces/handlers/health"
	intakehandler "grayco-suite/internal/interfaces/handlers/intake"
	"grayco-suite/internal/interfaces/handlers/leads"
	ledgerhandler "grayco-suite/internal/interfaces/handlers/ledger"
	outreachhandler "grayco-suite/internal/interfaces/handlers/outreach"
	projecthandler "grayco-suite/internal/interfaces/handlers/projects"
	"grayco-suite/internal/middleware"
	roles "grayco-suite/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// bodyLimit leaves room for a 10 MB scanned document plus multipart overhead.
const bodyLimit = 12 << 20

// Deps are the opened connections and clients the routes run on. DB, Drive and AI may be nil.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Sender emails.Sender
	Drive  *drive.Client
	AI     *gemini.Client
}

// CreateApp opens every dependency named in cfg and builds the app.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil, nil, errors.New("REDIS_URL is required for sessions")
	}
	rdb, err := middleware.NewRedis(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}

	ctx := context.Background()
	d := Deps{Config: cfg, Redis: rdb, Sender: mailer.New(cfg)}

	if cfg.DatabaseURL != "" {
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		d.DB = db
		if err := SeedOperator(ctx, db, cfg); err != nil {
			log.Error().Err(err).Str("email", cfg.OperatorEmail).Msg("router: operator seed failed")
		}
	}
	if cfg.GoogleCredentials != "" {
		dc, err := drive.New(ctx, cfg.GoogleCredentials)
		if err != nil {
			log.Warn().Err(err).Msg("router: Google Drive disabled")
		} else {
			d.Drive = dc
		}
	}
	if cfg.GoogleAPIKey != "" {
		ai, err := gemini.New(ctx, cfg.GoogleAPIKey, cfg.GeminiModel, cfg.GeminiVisionModel)
		if err != nil {
			log.Warn().Err(err).Msg("router: Gemini disabled")
		} else {
			d.AI = ai
		}
	}
	return New(d), d.DB, rdb, nil
}

// SeedOperator upserts the configured owner account. A missing email or hash is a no-op.
func SeedOperator(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	if cfg.OperatorEmail == "" || cfg.OperatorPasswordHash == "" {
		return nil
	}
	svc := &authsvc.Service{DB: db, TenantID: cfg.TenantID}
	_, err := svc.AddOperator(ctx, authsvc.OperatorInput{
		Fullname:     cfg.OperatorName,
		Email:        cfg.OperatorEmail,
		PasswordHash: cfg.OperatorPasswordHash,
		Role:         roles.Owner,
	}, true)
	return err
}

func probes(d Deps) map[string]healthsvc.Probe {
	cfg := d.Config
	out := map[string]healthsvc.Probe{"smtp": nil, "drive": nil, "gemini": nil}
	if cfg.SMTPServer != "" && cfg.SMTPPort > 0 {
		out["smtp"] = healthsvc.TCPProbe(net.JoinHostPort(cfg.SMTPServer, strconv.Itoa(cfg.SMTPPort)), 3*time.Second)
	}
	if d.Drive != nil {
		out["drive"] = healthsvc.TCPProbe("www.googleapis.com:443", 3*time.Second)
	}
	if d.AI != nil {
		out["gemini"] = healthsvc.TCPProbe("generativelanguage.googleapis.com:443", 3*time.Second)
	}
	return out
}

// New mounts middleware and routes on a fresh app. Project routes are only mounted with a DB.
func New(d Deps) *fiber.App {
	cfg := d.Config
	rdb := d.Redis

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.NewErrorHandler(rdb),
		EnableTrustedProxyCheck: true,
		BodyLimit:               bodyLimit,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffixes: middleware.SplitSuffixes(cfg.FrontendURLEndsWith),
		DevPassword:     cfg.DevPassword,
		AllowLocalhost:  cfg.Env != "production",
	}))
	app.Use(middleware.Session(rdb, cfg.SessionSecret))
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		Probes:         probes(d),
		HealthAdminKey: cfg.HealthAdminKey,
	}
	if d.DB != nil {
		hh.DB = &database.Pinger{DB: d.DB}
	}
	app.Get("/", hh.JSON)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}

	if d.DB == nil {
		ah := &authhandler.Handlers{Rdb: rdb, Config: sessionCfg}
		mountAuth(app, ah)
		return app
	}

	accounts := &authsvc.Service{DB: d.DB, TenantID: cfg.TenantID}
	mountAuth(app, &authhandler.Handlers{Operators: accounts, Rdb: rdb, Config: sessionCfg})

	ps := &pipeline.Service{DB: d.DB, TenantID: cfg.TenantID}

	intake := &intakesvc.Service{Pipeline: ps}
	outreach := &outreachsvc.Service{
		Pipeline:      ps,
		Sender:        d.Sender,
		DesignerEmail: cfg.DesignerEmail,
		PricingEmail:  cfg.PricingEmail,
		ReplyTo:       cfg.ReplyTo,
		ReviewLink:    cfg.ReviewLink,
	}
	// Interfaces stay nil (not typed-nil) when a client is absent.
	if d.Drive != nil {
		intake.Folders, outreach.Files = d.Drive, d.Drive
	}
	if d.AI != nil {
		intake.AI, intake.Categorizer = d.AI, d.AI
	}

	// Zapier cannot hold a session; the webhook sits outside RequireAuth behind its own token.
	lh := &leads.Handlers{Intake: intake}
	lg := app.Group(leads.Path, middleware.WebhookToken(cfg.LeadWebhookToken))
	lg.Post("", lh.Receive)
	lg.Get("", lh.Info)

	view := middleware.AuthorizePermission(constants.ViewPipeline)
	edit := middleware.AuthorizePermission(constants.EditPipeline)

	ph := &projecthandler.Handlers{Service: ps}
	ih := &intakehandler.Handlers{Service: intake}
	oh := &outreachhandler.Handlers{Service: outreach}
	pg := app.Group("/api/v1/projects", middleware.RequireAuth())
	pg.Get("", view, ph.List)
	pg.Post("", edit, ph.Create)
	pg.Get("/:id", view, ph.Get)
	pg.Delete("/:id", middleware.AuthorizePermission(constants.DeleteProject), ph.Delete)
	pg.Get("/:id/history", view, ph.History)
	pg.Get("/:id/touches", view, ph.Touches)
	pg.Post("/:id/notes", edit, ph.AddNote)
	pg.Post("/:id/contact-log", edit, ph.LogContact)
	pg.Get("/:id/contacts", view, ph.Contacts)
	pg.Post("/:id/contacts", edit, ph.AddContact)
	pg.Put("/:id/action", edit, ph.SetAction)
	pg.Delete("/:id/action", edit, ph.ClearAction)
	pg.Post("/:id/won", edit, ph.Step("Project marked won", ps.MarkWon))
	pg.Post("/:id/lost", edit, ph.MarkLost)
	pg.Post("/:id/archive", edit, ph.Step("Project archived", ps.Archive))
	pg.Post("/:id/restore", edit, ph.Step("Project restored", ps.Restore))
	pg.Post("/:id/promote", edit, ph.Step("Project promoted", ps.Promote))
	pg.Post("/:id/demote", edit, ph.Step("Project demoted", ps.Demote))
	pg.Put("/:id/parked", edit, ph.Park)
	pg.Post("/:id/night-before/complete", edit, ph.Step("Night-before check completed", ps.CompleteNightBefore))
	pg.Post("/:id/close", edit, ph.Close)
	pg.Put("/:id/design-proof", edit, ph.File("Design proof saved", ps.SetDesignProof))
	pg.Put("/:id/no-design", edit, ph.NoDesign)
	pg.Put("/:id/proposal", edit, ph.File("Proposal saved", ps.SetProposal))
	pg.Post("/:id/proposal/already-sent", edit, ph.Step("Proposal marked as sent", ps.MarkProposalAlreadySent))
	pg.Post("/:id/proposal/confirm", edit, ph.ConfirmAmounts)
	pg.Put("/:id/master-spec", edit, ph.File("Master spec locked", ps.SetMasterSpec))
	pg.Put("/:id/signed-spec", edit, ph.File("Signed spec saved", ps.SetSignedSpec))
	pg.Put("/:id/deposit/stage", edit, ph.DepositStage)
	pg.Post("/:id/deposit", edit, ph.ConfirmDeposit)
	pg.Put("/:id/permit", edit, ph.Permit)
	pg.Get("/:id/logistics", view, ph.Logistics)
	pg.Put("/:id/logistics", edit, ph.SaveLogistics)
	pg.Get("/:id/photos", view, ph.Photos)
	pg.Post("/:id/photos", edit, ph.AddPhoto)
	pg.Post("/:id/photos/import", edit, ih.ImportPhotos)
	pg.Post("/:id/emails/:kind", middleware.AuthorizePermission(constants.SendEmail), oh.Send)

	eg := app.Group("/api/v1/emails", middleware.RequireAuth(), view)
	eg.Get("/kinds", oh.Kinds)

	ig := app.Group("/api/v1/intake", middleware.RequireAuth(), edit)
	ig.Post("/extract", ih.Extract)
	ig.Post("/leads", ih.CreateLead)
	ig.Post("/scan-invoice", ih.ScanInvoice)

	as := &alertsvc.Service{DB: d.DB, Redis: rdb, TenantID: cfg.TenantID}
	alh := &alerthandler.Handlers{Service: as}
	ag := app.Group("/api/v1/alerts", middleware.RequireAuth())
	ag.Get("", view, alh.Dashboard)
	ag.Get("/nudges", view, alh.Bucket("Nudges fetched", as.Nudges))
	ag.Get("/victory-lap", view, alh.Bucket("Victory lap fetched", as.VictoryLap))
	ag.Get("/urgent", view, alh.Bucket("Urgent fetched", as.Urgent))
	ag.Get("/action-items", view, alh.Bucket("Action items fetched", as.ActionItems))
	ag.Get("/pulse-checks", view, alh.Bucket("Pulse checks fetched", as.PulseChecks))
	ag.Post("/:id/snooze", edit, alh.Snooze)

	ls := &ledgersvc.Service{DB: d.DB, TenantID: cfg.TenantID, Sender: d.Sender, Recipient: cfg.PricingEmail}
	leh := &ledgerhandler.Handlers{Service: ls}
	editLedger := middleware.AuthorizePermission(constants.EditLedger)
	leg := app.Group("/api/v1/ledger", middleware.RequireAuth(), middleware.AuthorizePermission(constants.ViewLedger))
	leg.Get("/events", leh.Events)
	leg.Get("/periods", leh.Periods)
	leg.Get("/report", leh.Report)
	leg.Post("/report/send", editLedger, leh.SendReport)
	leg.Put("/projects/:id/rate", editLedger, leh.SetRate)

	opg := app.Group("/api/v1/operators", middleware.RequireAuth(), middleware.AuthorizePermission(constants.ManageOperators))
	opg.Post("", (&authhandler.OperatorHandlers{Service: accounts}).Add)

	return app
}

func mountAuth(app *fiber.App, ah *authhandler.Handlers) {
	g := app.Group("/api/v1/auth")
	g.Post("/login", ah.Login)
	g.Get("/me", ah.Me)
	g.Delete("/logout", ah.Logout)
}
