// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

/*
Package report assembles the structured reports produced by cohortlens.

Four report shapes are available:

	daily      blended day-over-day overview, critical alerts, strong
	           performers, new sources and per-source detail
	weekly     blended week-over-week metrics at the report horizon and a
	           ROAS decomposition per media source with KPI target checks
	source     weekly history of one source with recent-vs-previous trends
	offerwall  chapter 1/3/5 conversion per source against the chapter-3 target

The assembly functions (DailyHealth, WeeklyCohort, SourceDeepDive,
OfferwallChapters) are pure: they take rows that have already been fetched and
apply no thresholds of their own beyond grouping. Service wires them to a
Fetcher, which is the only blocking call:

	svc := report.NewService(db, cfg, report.DefaultSettings(), engine)
	daily, err := svc.Daily(ctx, time.Now().AddDate(0, 0, -1))

Every numeric field is a raw value or a fraction. Formatting is left to the
caller.
*/
package report
