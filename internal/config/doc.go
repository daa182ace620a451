// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

/*
Package config loads Cohortlens configuration with Koanf v2.

Sources are layered, later layers winning:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: the --config flag, then CONFIG_PATH, then
    ./config.yaml, ./config.yml, /etc/cohortlens/config.yaml
 3. Environment variables

# Environment Variables

Warehouse:
  - DUCKDB_PATH: database file (default: cohortlens.duckdb)
  - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 1GB)
  - DUCKDB_THREADS: worker threads, 0 for NumCPU

Alerting thresholds (fractions, 0.20 = 20%):
  - ALERT_CPI_SPIKE (0.20), ALERT_VOLUME_DROP (0.30)
  - ALERT_RETENTION_DROP (0.10), ALERT_ROAS_DROP (0.15)
  - ALERT_RETENTION_HORIZON (7), ALERT_STRONG_VOLUME_GAIN (0)
  - TARGET_OFFERWALL_ROAS_D90, TARGET_OFFERWALL_CHAPTER3_CVR
  - TARGET_ROAS_D180, TARGET_ROAS_D365
  - TARGET_MIN_D7_RETENTION, TARGET_D7_RETENTION

Reports:
  - TREND_DAILY_TOLERANCE, TREND_WEEKLY_TOLERANCE
  - REPORT_WEEKLY_HORIZON, REPORT_SOURCE_WEEKS, REPORT_OFFERWALL_DAYS
  - REPORT_WORKERS
  - METRICS_TEXTFILE: write Prometheus metrics here after each run

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Thresholds builds the immutable thresholds.Config used by the alert engine.
*/
package config
