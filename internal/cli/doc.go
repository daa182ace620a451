// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

// Package cli implements the cohortlens command line.
//
// Every command loads configuration through internal/config (defaults, then
// the YAML file, then environment variables), initializes logging, and opens
// the DuckDB warehouse when it needs data:
//
//	cohortlens import --table ua_daily_summary spend.csv
//	cohortlens daily --date 2024-03-09
//	cohortlens weekly --date 2024-03-10 --output weekly.json
//	cohortlens source --source unity --weeks 8
//	cohortlens offerwall --days 30
//	cohortlens status
//	cohortlens config
//
// Reports are written as indented JSON to stdout or to --output. When
// metrics.textfile_path is configured, the Prometheus registry is written there
// after each command.
package cli
