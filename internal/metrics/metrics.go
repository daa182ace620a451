// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Warehouse Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cohortlens_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cohortlens_duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	RowsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cohortlens_rows_imported_total",
			Help: "Rows loaded into the warehouse by table",
		},
		[]string{"table"},
	)

	// Report Metrics
	ReportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cohortlens_reports_generated_total",
			Help: "Reports assembled by kind and outcome",
		},
		[]string{"kind", "status"}, // status: "success", "error"
	)

	ReportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cohortlens_report_duration_seconds",
			Help:    "End-to-end report generation time including warehouse fetches",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)

	// Alerting Metrics
	KeysScanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cohortlens_alert_keys_scanned_total",
			Help: "Grouping keys evaluated by the alert engine",
		},
		[]string{"comparison"},
	)

	AlertsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cohortlens_alerts_emitted_total",
			Help: "Threshold breaches by severity and metric",
		},
		[]string{"severity", "metric"},
	)

	StrongPerformers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cohortlens_strong_performers_total",
			Help: "Keys that grew installs while holding CPI inside the spike threshold",
		},
	)

	RowsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cohortlens_rows_rejected_total",
			Help: "Aggregate rows skipped for data quality violations",
		},
		[]string{"stage"}, // "scan", "report", "import"
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordImport counts rows loaded into a table.
func RecordImport(table string, rows int64) {
	RowsImported.WithLabelValues(table).Add(float64(rows))
}

// RecordReport records one report generation.
func RecordReport(kind string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ReportsGenerated.WithLabelValues(kind, status).Inc()
	ReportDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordKeysScanned counts keys evaluated for one comparison.
func RecordKeysScanned(comparison string, n int) {
	KeysScanned.WithLabelValues(comparison).Add(float64(n))
}

// RecordAlert counts one emitted alert.
func RecordAlert(severity, metric string) {
	AlertsEmitted.WithLabelValues(severity, metric).Inc()
}

// RecordStrongPerformers counts informational performer entries.
func RecordStrongPerformers(n int) {
	StrongPerformers.Add(float64(n))
}

// RecordRejection counts one rejected row at the given stage.
func RecordRejection(stage string) {
	RowsRejected.WithLabelValues(stage).Inc()
}

// WriteTextfile dumps the default registry in the node_exporter textfile format.
// Short-lived CLI runs use this instead of serving /metrics.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}
