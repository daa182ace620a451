// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

/*
Package metrics provides Prometheus instrumentation for report runs.

Collectors are registered on the default registry with promauto and updated
through the Record* helpers so call sites never touch label vectors directly.

# Available Metrics

Warehouse:
  - cohortlens_duckdb_query_duration_seconds{operation, table}
  - cohortlens_duckdb_query_errors_total{operation, table, error_type}
  - cohortlens_rows_imported_total{table}

Reports:
  - cohortlens_reports_generated_total{kind, status}
  - cohortlens_report_duration_seconds{kind}

Alerting:
  - cohortlens_alert_keys_scanned_total{comparison}
  - cohortlens_alerts_emitted_total{severity, metric}
  - cohortlens_strong_performers_total
  - cohortlens_rows_rejected_total{stage}

# Export

The CLI is short-lived, so instead of an HTTP endpoint the registry is written
to a node_exporter textfile after each run when metrics.textfile_path is set:

	if err := metrics.WriteTextfile("/var/lib/node_exporter/cohortlens.prom"); err != nil {
	    logging.Warn().Err(err).Msg("metrics export failed")
	}
*/
package metrics
