// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/cohortlens/internal/cohort"
	"github.com/tomtom215/cohortlens/internal/metrics"
)

const grainColumns = "install_date, source, platform, country, campaign_type"

const (
	summaryQuery = `SELECT ` + grainColumns + `, SUM(installs)::BIGINT, SUM(spend)
		FROM ua_daily_summary
		WHERE install_date BETWEEN ? AND ?
		GROUP BY ALL`

	revenueQuery = `SELECT ` + grainColumns + `, cohort_day, SUM(revenue)::DOUBLE
		FROM cohort_revenue
		WHERE install_date BETWEEN ? AND ?
		GROUP BY ALL`

	retentionQuery = `SELECT ` + grainColumns + `, cohort_day, AVG(retention_rate)
		FROM cohort_retention
		WHERE install_date BETWEEN ? AND ?
		GROUP BY ALL`

	chapterQuery = `SELECT install_date, source, platform, country, chapter,
			SUM(users_started)::BIGINT, SUM(users_completed)::BIGINT,
			AVG(avg_days_to_complete), SUM(revenue_generated)
		FROM offerwall_chapters
		WHERE install_date BETWEEN ? AND ?
		GROUP BY ALL`
)

type horizonValue struct {
	key   cohort.Key
	day   int
	value float64
}

// FetchAggregates returns the window's rows rolled up onto groupBy. Revenue
// and retention for grain keys with no spend row are ignored.
func (db *DB) FetchAggregates(ctx context.Context, window cohort.DateRange, groupBy cohort.Dimensions) ([]cohort.AggregateRow, error) {
	if err := groupBy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grouping: %w", err)
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	args := []interface{}{window.Start, window.End}

	base, err := timedQuery(ctx, db, TableDailySummary, summaryQuery, args, scanSummary)
	if err != nil {
		return nil, fmt.Errorf("failed to read daily summary for %s: %w", window, err)
	}
	revenue, err := timedQuery(ctx, db, TableCohortRevenue, revenueQuery, args, scanHorizonValue)
	if err != nil {
		return nil, fmt.Errorf("failed to read cohort revenue for %s: %w", window, err)
	}
	retention, err := timedQuery(ctx, db, TableCohortRetention, retentionQuery, args, scanHorizonValue)
	if err != nil {
		return nil, fmt.Errorf("failed to read cohort retention for %s: %w", window, err)
	}

	byKey := make(map[string]*cohort.AggregateRow, len(base))
	for i := range base {
		byKey[base[i].Key.String()] = &base[i]
	}
	for _, v := range revenue {
		if row, ok := byKey[v.key.String()]; ok {
			if row.Revenue == nil {
				row.Revenue = make(map[cohort.Horizon]float64)
			}
			row.Revenue[cohort.Horizon(v.day)] = v.value
		}
	}
	for _, v := range retention {
		if row, ok := byKey[v.key.String()]; ok {
			if row.Retention == nil {
				row.Retention = make(map[cohort.Horizon]float64)
			}
			row.Retention[cohort.Horizon(v.day)] = v.value
		}
	}

	return cohort.RollupChecked(base, groupBy)
}

// FetchChapterFunnel returns offerwall chapter statistics for the window at
// the grain. Rows carry the offerwall campaign class and no spend.
func (db *DB) FetchChapterFunnel(ctx context.Context, window cohort.DateRange) ([]cohort.AggregateRow, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	type chapterRow struct {
		key     cohort.Key
		chapter int
		stats   cohort.ChapterStats
	}
	scan := func(rows *sql.Rows) (chapterRow, error) {
		var r chapterRow
		var d time.Time
		err := rows.Scan(&d, &r.key.Source, &r.key.Platform, &r.key.Country, &r.chapter,
			&r.stats.UsersStarted, &r.stats.UsersCompleted, &r.stats.AvgDaysToComplete, &r.stats.RevenueGenerated)
		r.key.Date = cohort.Day(d)
		r.key.CampaignType = cohort.CampaignOfferwall
		return r, err
	}

	found, err := timedQuery(ctx, db, TableOfferwallChapter, chapterQuery, []interface{}{window.Start, window.End}, scan)
	if err != nil {
		return nil, fmt.Errorf("failed to read offerwall chapters for %s: %w", window, err)
	}

	byKey := make(map[string]*cohort.AggregateRow)
	var order []string
	for _, c := range found {
		id := c.key.String()
		row, ok := byKey[id]
		if !ok {
			row = &cohort.AggregateRow{Key: c.key, Chapters: make(map[int]cohort.ChapterStats)}
			byKey[id] = row
			order = append(order, id)
		}
		row.Chapters[c.chapter] = c.stats
	}

	out := make([]cohort.AggregateRow, 0, len(order))
	for _, id := range order {
		out = append(out, *byKey[id])
	}
	return cohort.RollupChecked(out, cohort.AllDimensions)
}

func timedQuery[T any](ctx context.Context, db *DB, table, query string, args []interface{}, scan scanFunc[T]) ([]T, error) {
	start := time.Now()
	out, err := queryAndScan(ctx, db.conn, query, args, scan)
	metrics.RecordDBQuery("select", table, time.Since(start), err)
	return out, err
}

func scanGrain(dst []interface{}, key *cohort.Key, date *time.Time, campaign *string) []interface{} {
	return append([]interface{}{date, &key.Source, &key.Platform, &key.Country, campaign}, dst...)
}

func scanSummary(rows *sql.Rows) (cohort.AggregateRow, error) {
	var r cohort.AggregateRow
	var d time.Time
	var campaign string
	if err := rows.Scan(scanGrain([]interface{}{&r.Installs, &r.Spend}, &r.Key, &d, &campaign)...); err != nil {
		return r, err
	}
	r.Key.Date = cohort.Day(d)
	r.Key.CampaignType = cohort.CampaignType(campaign)
	return r, nil
}

func scanHorizonValue(rows *sql.Rows) (horizonValue, error) {
	var v horizonValue
	var d time.Time
	var campaign string
	if err := rows.Scan(scanGrain([]interface{}{&v.day, &v.value}, &v.key, &d, &campaign)...); err != nil {
		return v, err
	}
	v.key.Date = cohort.Day(d)
	v.key.CampaignType = cohort.CampaignType(campaign)
	return v, nil
}
