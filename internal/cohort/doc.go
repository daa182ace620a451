// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

/*
Package cohort defines the aggregate data model shared by every reporting stage.

An AggregateRow is one grouped slice of user-acquisition performance for one
time window: spend, installs, cumulative revenue by cohort day, retention by
cohort day and an optional chapter funnel. Rows are built fresh for each report
from warehouse query results and discarded afterwards.

# Keys and Dimensions

Rows are identified by a Key whose populated fields depend on the Dimensions the
query grouped by. Dimensions.Project blanks the fields a coarser grouping does
not carry, and Rollup re-aggregates rows onto that coarser grouping:

	bySource, err := cohort.Rollup(rows, cohort.Dimensions{cohort.DimSource})

Rollup sums spend, installs, revenue and chapter counts. Retention is
install-weighted. A horizon survives a rollup only when every input row in the
group tracks it, so immature cohorts never dilute a pooled ratio.

# Comparisons

A Comparison pairs a baseline window with a current window. Pairs returns one
Pair per key present in the current window, ordered by Key.String(). Keys with
no baseline carry a nil Baseline and are treated as new.

# Data Quality

Validate reports the first invariant a row breaks as a *DataQualityError naming
the key and field. Callers reject only that key and keep processing the rest:

	valid, rejected := cohort.SplitValid(rows)
*/
package cohort
