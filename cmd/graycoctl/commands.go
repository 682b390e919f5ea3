package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	alertsvc "grayco-suite/internal/application/alerts"
	authsvc "grayco-suite/internal/application/auth"
	ledgersvc "grayco-suite/internal/application/ledger"
	"grayco-suite/internal/infrastructure/database"
	"grayco-suite/internal/pkg/calendar"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var errNoDatabase = errors.New("DATABASE_URL is not set")

// withEnv opens the environment under the --timeout deadline and runs fn.
func withEnv(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	if e.rdb != nil {
		defer e.rdb.Close()
	}
	return fn(ctx, e)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if err := database.AutoMigrate(e.db.WithContext(ctx)); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migration complete")
			return nil
		})
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the commission report for a pay period",
	Long: `Render the commission report. Without flags it covers the period due today:
the just-closed period on the 16th and the 1st, otherwise the one in progress.

Examples:
  graycoctl report --date 2026-03-16 --send
  graycoctl report --year 2026 --month 2 --period 2`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	return withEnv(cmd, func(ctx context.Context, e *env) error {
		svc := &ledgersvc.Service{DB: e.db, TenantID: e.cfg.TenantID, Now: e.now, Sender: e.sender, Recipient: e.cfg.PricingEmail}

		var (
			r   *ledgersvc.Report
			err error
		)
		period, _ := cmd.Flags().GetInt("period")
		if period != 0 {
			today := calendar.Today(e.now())
			year, _ := cmd.Flags().GetInt("year")
			month, _ := cmd.Flags().GetInt("month")
			if year == 0 {
				year = today.Year()
			}
			if month == 0 {
				month = int(today.Month())
			}
			if month < 1 || month > 12 {
				return errors.New("--month must be 1-12")
			}
			r, err = svc.ReportForPeriod(ctx, year, time.Month(month), calendar.Period(period))
		} else {
			day := calendar.Today(e.now())
			if raw, _ := cmd.Flags().GetString("date"); raw != "" {
				day, err = time.ParseInLocation("2006-01-02", raw, calendar.Location)
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
				}
			}
			r, err = svc.Report(ctx, day)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Subject: "+r.Subject)
		fmt.Fprintln(out)
		fmt.Fprintln(out, r.Body)

		if send, _ := cmd.Flags().GetBool("send"); !send {
			return nil
		}
		res, err := svc.SendReport(ctx, r)
		if err != nil {
			return err
		}
		if !res.Succeeded() {
			return errors.New(res.Message)
		}
		fmt.Fprintln(out, res.Message)
		return nil
	})
}

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Print the alert dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			svc := &alertsvc.Service{DB: e.db, Redis: e.rdb, TenantID: e.cfg.TenantID, Now: e.now}
			d, err := svc.Dashboard(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if d.Deadline != "" {
				fmt.Fprintln(out, d.Deadline)
				fmt.Fprintln(out)
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BUCKET\tCLIENT\tSTATUS\tMESSAGE")
			for _, b := range []struct {
				name string
				rows []alertsvc.Alert
			}{
				{"urgent", d.Urgent},
				{"nudge", d.Nudges},
				{"action", d.ActionItems},
				{"pulse", d.PulseChecks},
				{"victory_lap", d.VictoryLap},
			} {
				for _, a := range b.rows {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.name, a.ClientName, a.Status, a.Message)
				}
			}
			return w.Flush()
		})
	},
}

var snoozeCmd = &cobra.Command{
	Use:   "snooze <project-id>",
	Short: "Hide a project's nudges for a while",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid project id %q", args[0])
		}
		hours, _ := cmd.Flags().GetFloat64("hours")
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			svc := &alertsvc.Service{DB: e.db, Redis: e.rdb, TenantID: e.cfg.TenantID, Now: e.now}
			until, err := svc.Snooze(ctx, id, time.Duration(hours*float64(time.Hour)))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Snoozed until %s\n", until.In(calendar.Location).Format("2006-01-02 15:04 MST"))
			return nil
		})
	},
}

var operatorCmd = &cobra.Command{
	Use:   "operator",
	Short: "Manage operator accounts",
}

var operatorAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an operator who can sign in to the CRM",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		password, _ := cmd.Flags().GetString("password")
		role, _ := cmd.Flags().GetString("role")
		replace, _ := cmd.Flags().GetBool("replace")
		if email == "" || password == "" {
			return authsvc.ErrEmailPasswordRequired
		}
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			svc := &authsvc.Service{DB: e.db, TenantID: e.cfg.TenantID}
			op, err := svc.AddOperator(ctx, authsvc.OperatorInput{Fullname: name, Email: email, Password: password, Role: role}, replace)
			if err != nil {
				return err
			}
			log.Info().Str("email", op.Email).Str("role", op.Role).Msg("graycoctl: operator saved")
			fmt.Fprintf(cmd.OutOrStdout(), "Operator %s (%s) saved\n", op.Email, op.Role)
			return nil
		})
	},
}
