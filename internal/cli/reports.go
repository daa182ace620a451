// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cohortlens/internal/cohort"
	"github.com/tomtom215/cohortlens/internal/database"
	"github.com/tomtom215/cohortlens/internal/report"
)

func (a *app) newDailyCommand() *cobra.Command {
	var date, groupBy string
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Day-over-day health check with alerts",
		Long: `Compare one day with the day before: blended spend, installs and CPI,
threshold alerts, strong performers and new sources.

Examples:
  cohortlens daily                            # yesterday
  cohortlens daily --date 2024-03-09
  cohortlens daily --group-by source,platform`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDate(date)
			if err != nil {
				return err
			}
			dims, err := cohort.ParseDimensions(groupBy)
			if err != nil {
				return err
			}
			return a.withDB(func(db *database.DB) error {
				svc, err := a.service(db, func(s *report.Settings) { s.DailyGroupBy = dims })
				if err != nil {
					return err
				}
				out, err := svc.Daily(cmd.Context(), day)
				if err != nil {
					return err
				}
				return a.writeJSON(cmd, out)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to check (YYYY-MM-DD, default yesterday)")
	cmd.Flags().StringVar(&groupBy, "group-by", "source", "comma-separated dimensions: source, platform, country, campaign_type (not date)")
	return cmd
}

func (a *app) newWeeklyCommand() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Week-over-week cohort comparison with ROAS decomposition",
		Long: `Compare the seven days ending on --date with the seven days before,
pooled and per media source. Each source's ROAS change is split into
retention, monetization and cost contributions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			end, err := parseDate(date)
			if err != nil {
				return err
			}
			return a.withDB(func(db *database.DB) error {
				svc, err := a.service(db)
				if err != nil {
					return err
				}
				out, err := svc.Weekly(cmd.Context(), end)
				if err != nil {
					return err
				}
				return a.writeJSON(cmd, out)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "last day of the current week (YYYY-MM-DD, default yesterday)")
	return cmd
}

func (a *app) newSourceCommand() *cobra.Command {
	var (
		source, date string
		weeks        int
	)
	cmd := &cobra.Command{
		Use:   "source",
		Short: "Weekly history and trends of one media source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if source == "" {
				return errors.New("--source is required")
			}
			asOf, err := parseDate(date)
			if err != nil {
				return err
			}
			return a.withDB(func(db *database.DB) error {
				svc, err := a.service(db)
				if err != nil {
					return err
				}
				out, err := svc.Source(cmd.Context(), source, weeks, asOf)
				if err != nil {
					return err
				}
				return a.writeJSON(cmd, out)
			})
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "media source name")
	cmd.Flags().IntVar(&weeks, "weeks", 0, "weeks of history (default report.source_lookback_weeks)")
	cmd.Flags().StringVar(&date, "date", "", "last day of the latest week (YYYY-MM-DD, default yesterday)")
	return cmd
}

func (a *app) newOfferwallCommand() *cobra.Command {
	var (
		date string
		days int
	)
	cmd := &cobra.Command{
		Use:   "offerwall",
		Short: "Offerwall chapter conversion per source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asOf, err := parseDate(date)
			if err != nil {
				return err
			}
			return a.withDB(func(db *database.DB) error {
				svc, err := a.service(db)
				if err != nil {
					return err
				}
				out, err := svc.Offerwall(cmd.Context(), days, asOf)
				if err != nil {
					return err
				}
				return a.writeJSON(cmd, out)
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "lookback in days (default report.offerwall_lookback_days)")
	cmd.Flags().StringVar(&date, "date", "", "last day of the window (YYYY-MM-DD, default yesterday)")
	return cmd
}
