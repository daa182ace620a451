// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package database

import (
	"context"
	"fmt"
	"time"
)

// Table names. Only these may be named in dynamic SQL.
const (
	TableDailySummary     = "ua_daily_summary"
	TableCohortRevenue    = "cohort_revenue"
	TableCohortRetention  = "cohort_retention"
	TableOfferwallChapter = "offerwall_chapters"
)

// Tables lists every warehouse table in load order.
var Tables = []string{TableDailySummary, TableCohortRevenue, TableCohortRetention, TableOfferwallChapter}

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS ua_daily_summary (
			install_date  DATE    NOT NULL,
			source        VARCHAR NOT NULL,
			platform      VARCHAR NOT NULL DEFAULT '',
			country       VARCHAR NOT NULL DEFAULT '',
			campaign_type VARCHAR NOT NULL DEFAULT '',
			installs      BIGINT  NOT NULL DEFAULT 0,
			spend         DOUBLE  NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS cohort_revenue (
			install_date  DATE    NOT NULL,
			source        VARCHAR NOT NULL,
			platform      VARCHAR NOT NULL DEFAULT '',
			country       VARCHAR NOT NULL DEFAULT '',
			campaign_type VARCHAR NOT NULL DEFAULT '',
			cohort_day    INTEGER NOT NULL,
			revenue       DOUBLE  NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS cohort_retention (
			install_date   DATE    NOT NULL,
			source         VARCHAR NOT NULL,
			platform       VARCHAR NOT NULL DEFAULT '',
			country        VARCHAR NOT NULL DEFAULT '',
			campaign_type  VARCHAR NOT NULL DEFAULT '',
			cohort_day     INTEGER NOT NULL,
			retention_rate DOUBLE  NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS offerwall_chapters (
			install_date         DATE    NOT NULL,
			source               VARCHAR NOT NULL,
			platform             VARCHAR NOT NULL DEFAULT '',
			country              VARCHAR NOT NULL DEFAULT '',
			chapter              INTEGER NOT NULL,
			users_started        BIGINT  NOT NULL DEFAULT 0,
			users_completed      BIGINT  NOT NULL DEFAULT 0,
			avg_days_to_complete DOUBLE  NOT NULL DEFAULT 0,
			revenue_generated    DOUBLE  NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ua_daily_summary_date ON ua_daily_summary(install_date)`,
		`CREATE INDEX IF NOT EXISTS idx_cohort_revenue_date ON cohort_revenue(install_date)`,
		`CREATE INDEX IF NOT EXISTS idx_cohort_retention_date ON cohort_retention(install_date)`,
		`CREATE INDEX IF NOT EXISTS idx_offerwall_chapters_date ON offerwall_chapters(install_date)`,
	}

	for _, q := range queries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func validTable(name string) bool {
	for _, t := range Tables {
		if t == name {
			return true
		}
	}
	return false
}
