// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package database

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tomtom215/cohortlens/internal/cohort"
	"github.com/tomtom215/cohortlens/internal/logging"
	"github.com/tomtom215/cohortlens/internal/metrics"
)

// DailySummary is one ua_daily_summary record.
type DailySummary struct {
	Key      cohort.Key
	Installs int64
	Spend    float64
}

// CohortValue is one cohort_revenue or cohort_retention record.
type CohortValue struct {
	Key       cohort.Key
	CohortDay cohort.Horizon
	Value     float64
}

// ChapterRecord is one offerwall_chapters record. Key.CampaignType is ignored.
type ChapterRecord struct {
	Key     cohort.Key
	Chapter int
	Stats   cohort.ChapterStats
}

// InsertDailySummaries loads records into ua_daily_summary in one transaction.
func (db *DB) InsertDailySummaries(ctx context.Context, records []DailySummary) (int, error) {
	const q = `INSERT INTO ua_daily_summary (` + grainColumns + `, installs, spend) VALUES (?, ?, ?, ?, ?, ?, ?)`
	return insertBatch(ctx, db, TableDailySummary, q, records, func(r DailySummary) []interface{} {
		return append(grainArgs(r.Key), r.Installs, r.Spend)
	})
}

// InsertCohortRevenue loads cumulative revenue records.
func (db *DB) InsertCohortRevenue(ctx context.Context, records []CohortValue) (int, error) {
	const q = `INSERT INTO cohort_revenue (` + grainColumns + `, cohort_day, revenue) VALUES (?, ?, ?, ?, ?, ?, ?)`
	return insertBatch(ctx, db, TableCohortRevenue, q, records, func(r CohortValue) []interface{} {
		return append(grainArgs(r.Key), int(r.CohortDay), r.Value)
	})
}

// InsertCohortRetention loads retention rate records.
func (db *DB) InsertCohortRetention(ctx context.Context, records []CohortValue) (int, error) {
	const q = `INSERT INTO cohort_retention (` + grainColumns + `, cohort_day, retention_rate) VALUES (?, ?, ?, ?, ?, ?, ?)`
	return insertBatch(ctx, db, TableCohortRetention, q, records, func(r CohortValue) []interface{} {
		return append(grainArgs(r.Key), int(r.CohortDay), r.Value)
	})
}

// InsertChapters loads offerwall chapter records.
func (db *DB) InsertChapters(ctx context.Context, records []ChapterRecord) (int, error) {
	const q = `INSERT INTO offerwall_chapters (install_date, source, platform, country, chapter,
		users_started, users_completed, avg_days_to_complete, revenue_generated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	return insertBatch(ctx, db, TableOfferwallChapter, q, records, func(r ChapterRecord) []interface{} {
		return []interface{}{r.Key.Date, r.Key.Source, r.Key.Platform, r.Key.Country, r.Chapter,
			r.Stats.UsersStarted, r.Stats.UsersCompleted, r.Stats.AvgDaysToComplete, r.Stats.RevenueGenerated}
	})
}

func grainArgs(k cohort.Key) []interface{} {
	return []interface{}{cohort.Day(k.Date), k.Source, k.Platform, k.Country, string(k.CampaignType)}
}

// insertBatch runs one prepared insert per record inside a transaction.
func insertBatch[T any](ctx context.Context, db *DB, table, query string, records []T, args func(T) []interface{}) (n int, err error) {
	if len(records) == 0 {
		return 0, nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("insert", table, time.Since(start), err)
	}()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().Err(rbErr).AnErr("original_error", err).Msg("Transaction rollback failed")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert into %s: %w", table, err)
	}
	defer closeWithLog(stmt, "prepared statement")

	for i, r := range records {
		if _, err = stmt.ExecContext(ctx, args(r)...); err != nil {
			return 0, fmt.Errorf("failed to insert record %d into %s: %w", i, table, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit %s insert: %w", table, err)
	}

	metrics.RecordImport(table, int64(len(records)))
	return len(records), nil
}

// ImportCSV appends a CSV file with a header row to table. Columns are matched
// by name; columns missing from the file take their defaults.
func (db *DB) ImportCSV(ctx context.Context, table, path string) (int64, error) {
	if !validTable(table) {
		return 0, fmt.Errorf("unknown table %q (want one of %s)", table, strings.Join(Tables, ", "))
	}
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("cannot read %s: %w", path, err)
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	// read_csv_auto takes a literal path; single quotes are doubled.
	query := fmt.Sprintf("INSERT INTO %s BY NAME SELECT * FROM read_csv_auto('%s', header = true)",
		table, strings.ReplaceAll(path, "'", "''"))

	start := time.Now()
	res, err := db.conn.ExecContext(ctx, query)
	metrics.RecordDBQuery("import", table, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to import %s into %s: %w", path, table, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count imported rows: %w", err)
	}
	metrics.RecordImport(table, n)
	logging.Info().Str("table", table).Str("file", path).Int64("rows", n).Msg("CSV imported")
	return n, nil
}
