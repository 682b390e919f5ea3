package config

import (
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// DefaultTenantID is the shop's tenant partition when TENANT_ID is not set.
const DefaultTenantID = "357145e4-b5a1-43e3-a9ba-f8e834b38034"

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	LogLevel            string
	SessionSecret       string
	DatabaseURL         string
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
	TenantID            uuid.UUID

	SMTPServer         string
	SMTPPort           int
	SMTPEmail          string
	SMTPPassword       string
	EmailTestMode      bool
	EmailTestRecipient string

	DesignerEmail string // design requests (Matt)
	PricingEmail  string // pricing, invoices and commission reports (Bruno)
	ReplyTo       string
	ReviewLink    string

	// Seed operator, upserted as owner at startup when both are set.
	OperatorEmail        string
	OperatorName         string
	OperatorPasswordHash string

	GoogleAPIKey       string
	GeminiModel        string
	GeminiVisionModel  string
	GoogleCredentials  string // path or inline JSON for the Drive service account
	LeadWebhookToken   string
	LeadWebhookBaseURL string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("EMAIL_TEST_MODE", true)
	viper.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	viper.SetDefault("GEMINI_VISION_MODEL", "gemini-2.5-flash")

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}

	tenant, err := uuid.Parse(firstNonEmpty(viper.GetString("TENANT_ID"), DefaultTenantID))
	if err != nil {
		return nil, err
	}

	creds := strings.TrimSpace(viper.GetString("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(viper.GetString("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	return &Config{
		Env:                 env,
		Port:                viper.GetString("PORT"),
		LogLevel:            strings.ToLower(viper.GetString("LOG_LEVEL")),
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		TenantID:            tenant,

		SMTPServer:         viper.GetString("SMTP_SERVER"),
		SMTPPort:           viper.GetInt("SMTP_PORT"),
		SMTPEmail:          viper.GetString("SMTP_EMAIL"),
		SMTPPassword:       viper.GetString("SMTP_PASSWORD"),
		EmailTestMode:      viper.GetBool("EMAIL_TEST_MODE"),
		EmailTestRecipient: viper.GetString("EMAIL_TEST_RECIPIENT"),

		DesignerEmail: viper.GetString("DESIGNER_EMAIL"),
		PricingEmail:  viper.GetString("PRICING_EMAIL"),
		ReplyTo:       firstNonEmpty(viper.GetString("REPLY_TO_EMAIL"), viper.GetString("SMTP_EMAIL")),
		ReviewLink:    viper.GetString("REVIEW_LINK"),

		OperatorEmail:        strings.ToLower(strings.TrimSpace(viper.GetString("OPERATOR_EMAIL"))),
		OperatorName:         firstNonEmpty(viper.GetString("OPERATOR_NAME"), "Owner"),
		OperatorPasswordHash: viper.GetString("OPERATOR_PASSWORD_HASH"),

		GoogleAPIKey:       viper.GetString("GOOGLE_API_KEY"),
		GeminiModel:        viper.GetString("GEMINI_MODEL"),
		GeminiVisionModel:  viper.GetString("GEMINI_VISION_MODEL"),
		GoogleCredentials:  creds,
		LeadWebhookToken:   viper.GetString("LEAD_WEBHOOK_TOKEN"),
		LeadWebhookBaseURL: strings.TrimRight(viper.GetString("LEAD_WEBHOOK_BASE_URL"), "/"),
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
