// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

// Package main is the entry point for the cohortlens command line.
//
// cohortlens reads aggregated user acquisition data (daily spend and installs,
// cohort revenue and retention by cohort day, offerwall chapter funnels) from
// a local DuckDB warehouse and produces JSON reports:
//
//   - daily: blended day-over-day overview with threshold alerts
//   - weekly: week-over-week cohort comparison with ROAS decomposition
//   - source: weekly history and trends of one media source
//   - offerwall: chapter conversion per source against target
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (DUCKDB_PATH, ALERT_CPI_SPIKE, LOG_LEVEL, ...)
//   - Config file (--config, CONFIG_PATH, or config.yaml in the working directory)
//   - Built-in defaults
//
// # Example Usage
//
//	cohortlens import --table ua_daily_summary daily_summary.csv
//	cohortlens import --table cohort_revenue revenue.csv
//	ALERT_CPI_SPIKE=0.25 cohortlens daily --date 2024-03-09
//	cohortlens weekly --output weekly.json
package main

import (
	"fmt"
	"os"

	"github.com/tomtom215/cohortlens/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
