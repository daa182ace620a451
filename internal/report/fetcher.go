// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package report

import (
	"context"

	"github.com/tomtom215/cohortlens/internal/cohort"
	"github.com/tomtom215/cohortlens/internal/detection"
)

// Fetcher supplies aggregated rows for a window. *database.DB implements it.
type Fetcher interface {
	FetchAggregates(ctx context.Context, window cohort.DateRange, groupBy cohort.Dimensions) ([]cohort.AggregateRow, error)
	FetchChapterFunnel(ctx context.Context, window cohort.DateRange) ([]cohort.AggregateRow, error)
}

// rejectionsOf converts row violations found during assembly.
func rejectionsOf(comparison string, dqs []*cohort.DataQualityError) []detection.Rejection {
	out := make([]detection.Rejection, 0, len(dqs))
	for _, dq := range dqs {
		out = append(out, detection.NewRejection(comparison, dq))
	}
	return out
}

// totals sums spend and installs of valid rows with distinct keys.
func totals(rows []cohort.AggregateRow) (spend float64, installs int64) {
	for i := range rows {
		spend += rows[i].Spend
		installs += rows[i].Installs
	}
	return spend, installs
}

// distinctKeys drops every row whose key appears more than once in rows.
// Such keys are rejected by Comparison.Pairs and must not reach the totals.
func distinctKeys(rows []cohort.AggregateRow) []cohort.AggregateRow {
	seen := make(map[string]int, len(rows))
	for i := range rows {
		seen[rows[i].Key.String()]++
	}
	out := make([]cohort.AggregateRow, 0, len(rows))
	for i := range rows {
		if seen[rows[i].Key.String()] == 1 {
			out = append(out, rows[i])
		}
	}
	return out
}
