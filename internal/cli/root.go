// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cohortlens/internal/config"
	"github.com/tomtom215/cohortlens/internal/database"
	"github.com/tomtom215/cohortlens/internal/detection"
	"github.com/tomtom215/cohortlens/internal/logging"
	"github.com/tomtom215/cohortlens/internal/metrics"
	"github.com/tomtom215/cohortlens/internal/report"
)

// app holds the state shared by one command tree.
type app struct {
	configPath string
	outputPath string
	cfg        *config.Config
}

// Execute runs the command line until it finishes or receives SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "cohortlens",
		Short: "User acquisition cohort reports from a DuckDB warehouse",
		Long: `cohortlens derives CPI, ROAS and retention from aggregated user
acquisition data, flags threshold breaches and attributes ROAS changes to
retention, monetization and cost.

Get started:
  cohortlens import --table ua_daily_summary spend.csv
  cohortlens daily                 # yesterday vs the day before
  cohortlens weekly                # last 7 days vs the 7 before`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.flushMetrics()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default: search config.yaml, then "+config.ConfigPathEnvVar+")")
	root.PersistentFlags().StringVarP(&a.outputPath, "output", "o", "", "write JSON output to this file instead of stdout")

	root.AddCommand(
		a.newDailyCommand(),
		a.newWeeklyCommand(),
		a.newSourceCommand(),
		a.newOfferwallCommand(),
		a.newImportCommand(),
		a.newStatusCommand(),
		a.newConfigCommand(),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.LoadWithKoanf(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    cmd.ErrOrStderr(),
	})
	logging.Debug().Str("command", cmd.Name()).Str("db_path", cfg.Database.Path).Msg("configuration loaded")
	return nil
}

func (a *app) flushMetrics() error {
	if a.cfg == nil || a.cfg.Metrics.TextfilePath == "" {
		return nil
	}
	return metrics.WriteTextfile(a.cfg.Metrics.TextfilePath)
}

// withDB opens the warehouse for the duration of fn.
func (a *app) withDB(fn func(db *database.DB) error) (err error) {
	db, err := database.New(&a.cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open warehouse: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close warehouse: %w", cerr)
		}
	}()
	return fn(db)
}

// service builds a report service over db from the loaded configuration.
// adjust may override individual settings from command flags.
func (a *app) service(db *database.DB, adjust ...func(*report.Settings)) (*report.Service, error) {
	th, err := a.cfg.Thresholds()
	if err != nil {
		return nil, err
	}
	settings := report.DefaultSettings()
	settings.DailyTolerance = a.cfg.Trend.DailyTolerance
	settings.WeeklyTolerance = a.cfg.Trend.WeeklyTolerance
	settings.WeeklyHorizon = a.cfg.WeeklyHorizon()
	settings.SourceLookbackWeeks = a.cfg.Report.SourceLookbackWeeks
	settings.OfferwallLookbackDays = a.cfg.Report.OfferwallLookbackDays
	for _, fn := range adjust {
		fn(&settings)
	}

	engine := detection.NewDefaultEngine(detection.WithWorkers(a.cfg.Report.Workers))
	return report.NewService(db, th, settings, engine), nil
}
