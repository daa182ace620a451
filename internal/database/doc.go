// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

/*
Package database is the DuckDB warehouse behind Cohortlens reports.

# Tables

	ua_daily_summary    install_date, source, platform, country, campaign_type,
	                    installs, spend
	cohort_revenue      grain + cohort_day, revenue (cumulative to that day)
	cohort_retention    grain + cohort_day, retention_rate
	offerwall_chapters  install_date, source, platform, country, chapter,
	                    users_started, users_completed, avg_days_to_complete,
	                    revenue_generated

The grain is (install_date, source, platform, country, campaign_type). Rows
loaded twice for the same grain are summed (revenue, spend, installs) or
averaged (retention_rate, avg_days_to_complete).

# Reads

FetchAggregates reads one window at the grain and rolls it up onto the
requested dimensions with cohort.RollupChecked, so a horizon is reported for a
group only when every member has reached it. FetchChapterFunnel does the same
for the offerwall chapter table. Both satisfy the report.Fetcher interface.

# Loads

ImportCSV loads a CSV file into one of the tables with DuckDB's
read_csv_auto, matching columns by name. The Insert* methods load typed
records in one transaction and are used by tests and seeding.

Every call takes a context; calls without a deadline get a 30 second one.
*/
package database
