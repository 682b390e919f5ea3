// Command graycoctl runs shop chores against the CRM database without the HTTP server.
package main

import (
	"context"
	"os"
	"time"

	"grayco-suite/internal/application/emails"
	"grayco-suite/internal/config"
	"grayco-suite/internal/infrastructure/database"
	"grayco-suite/internal/infrastructure/mailer"
	"grayco-suite/internal/middleware"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	verbose bool
	timeout time.Duration
)

// env is what every subcommand runs on. Redis is optional.
type env struct {
	cfg    *config.Config
	db     *gorm.DB
	rdb    *redis.Client
	sender emails.Sender
	now    func() time.Time
}

// openEnv is swapped out in tests.
var openEnv = func(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, errNoDatabase
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, db: db, sender: mailer.New(cfg), now: time.Now}
	if cfg.RedisURL != "" {
		rdb, err := middleware.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("graycoctl: redis disabled")
		} else {
			e.rdb = rdb
		}
	}
	return e, nil
}

var rootCmd = &cobra.Command{
	Use:   "graycoctl",
	Short: "Operator tools for the Grayco/KB Signs CRM",
	Long: `graycoctl runs the shop's chores from a terminal or a cron job.

Available commands:
  migrate   - Create or update the database tables
  report    - Render (and optionally send) the commission report
  alerts    - Print the alert dashboard
  snooze    - Hide a project's nudges for a while
  operator  - Manage operator accounts`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		zerolog.SetGlobalLevel(level)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen})
		zerolog.DefaultContextLogger = &log.Logger
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Operation timeout")

	reportCmd.Flags().String("date", "", "Report due on this date (YYYY-MM-DD, default today)")
	reportCmd.Flags().Int("year", 0, "Year of an explicit period")
	reportCmd.Flags().Int("month", 0, "Month of an explicit period (1-12)")
	reportCmd.Flags().Int("period", 0, "Explicit pay period (1 or 2)")
	reportCmd.Flags().Bool("send", false, "Email the report to PRICING_EMAIL")

	snoozeCmd.Flags().Float64("hours", 24, "How long to hide the project's nudges")

	operatorAddCmd.Flags().String("email", "", "Operator email (required)")
	operatorAddCmd.Flags().String("name", "", "Full name")
	operatorAddCmd.Flags().String("password", "", "Password, at least 8 characters (required)")
	operatorAddCmd.Flags().String("role", "staff", "owner or staff")
	operatorAddCmd.Flags().Bool("replace", false, "Overwrite an existing operator with the same email")
	operatorCmd.AddCommand(operatorAddCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(alertsCmd)
	rootCmd.AddCommand(snoozeCmd)
	rootCmd.AddCommand(operatorCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
