// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package report

import (
	"errors"
	"fmt"

	"github.com/tomtom215/cohortlens/internal/cohort"
	"github.com/tomtom215/cohortlens/internal/detection"
	"github.com/tomtom215/cohortlens/internal/kpi"
	"github.com/tomtom215/cohortlens/internal/trend"
)

// ComparisonSourceHistory labels rejections raised by the source deep dive.
const ComparisonSourceHistory = "source_history"

// TrendWeeks is the number of recent weeks compared with the weeks before them.
const TrendWeeks = 4

// SourceInput is the fetched data for one source deep dive. Weeks are ordered
// most recent first. Rows must be grouped by date; rows of other sources and
// rows outside every week are ignored.
type SourceInput struct {
	Source    string
	Weeks     []cohort.DateRange
	Rows      []cohort.AggregateRow
	Horizon   cohort.Horizon
	Tolerance float64
}

// WeekSummary is one week of a source's history.
type WeekSummary struct {
	Week           cohort.DateRange `json:"week"`
	Spend          float64          `json:"spend"`
	Installs       int64            `json:"installs"`
	InstallsPerDay kpi.Value        `json:"installs_per_day"`
	CPI            kpi.Value        `json:"cpi"`
	Retention      kpi.Value        `json:"retention"`
	ROAS           kpi.Value        `json:"roas"`
	Rejected       bool             `json:"rejected,omitempty"`
}

// SourceTrends labels the recent weeks against the weeks before them.
type SourceTrends struct {
	CPI       trend.Label `json:"cpi"`
	Retention trend.Label `json:"retention"`
	ROAS      trend.Label `json:"roas"`
}

// SummaryStats are means over every week with a defined value.
type SummaryStats struct {
	Weeks        int       `json:"weeks"`
	AvgCPI       kpi.Value `json:"avg_cpi"`
	AvgRetention kpi.Value `json:"avg_retention"`
	AvgROAS      kpi.Value `json:"avg_roas"`
}

// SourceReport is the deep dive for one source.
type SourceReport struct {
	Source      string                `json:"source"`
	Horizon     cohort.Horizon        `json:"horizon"`
	CurrentWeek WeekSummary           `json:"current_week"`
	Trends      SourceTrends          `json:"trends"`
	Summary     SummaryStats          `json:"summary_stats"`
	History     []WeekSummary         `json:"history"`
	Rejections  []detection.Rejection `json:"rejections"`
}

// SourceDeepDive buckets a source's daily rows into weeks and compares the
// latest TrendWeeks weeks with the TrendWeeks weeks before them. A week with
// an invalid row is listed as rejected and contributes no metrics.
func SourceDeepDive(in SourceInput) (*SourceReport, error) {
	if len(in.Weeks) == 0 {
		return nil, errors.New("source deep dive needs at least one week")
	}

	var bucketed []cohort.AggregateRow
	for i := range in.Rows {
		r := in.Rows[i]
		if r.Key.Source != in.Source {
			continue
		}
		for _, w := range in.Weeks {
			if w.Contains(r.Key.Date) {
				r.Key = cohort.Key{Date: w.Start, Source: in.Source}
				bucketed = append(bucketed, r)
				break
			}
		}
	}
	weekly, err := cohort.RollupChecked(bucketed, cohort.Dimensions{cohort.DimDate, cohort.DimSource})
	if err != nil {
		return nil, fmt.Errorf("source rollup: %w", err)
	}
	byStart := make(map[string]*cohort.AggregateRow, len(weekly))
	for i := range weekly {
		byStart[weekly[i].Key.Date.Format(cohort.DateLayout)] = &weekly[i]
	}

	report := &SourceReport{
		Source:     in.Source,
		Horizon:    in.Horizon,
		History:    make([]WeekSummary, 0, len(in.Weeks)),
		Rejections: []detection.Rejection{},
	}
	for _, w := range in.Weeks {
		ws := WeekSummary{Week: w}
		row, ok := byStart[w.Start.Format(cohort.DateLayout)]
		if !ok {
			report.History = append(report.History, ws)
			continue
		}
		var dq *cohort.DataQualityError
		if err := row.Validate(); errors.As(err, &dq) {
			ws.Rejected = true
			report.Rejections = append(report.Rejections, detection.NewRejection(ComparisonSourceHistory, dq))
			report.History = append(report.History, ws)
			continue
		}
		ws.Spend = row.Spend
		ws.Installs = row.Installs
		ws.InstallsPerDay = kpi.Ratio(float64(row.Installs), float64(w.Days()))
		ws.CPI = kpi.CPI(row)
		ws.Retention, _ = kpi.Retention(row, in.Horizon)
		ws.ROAS = kpi.ROAS(row, in.Horizon)
		report.History = append(report.History, ws)
	}

	report.CurrentWeek = report.History[0]
	recent, previous := splitTrendWindows(report.History)
	report.Trends = SourceTrends{
		CPI:       trend.ClassifyCostSeries(field(recent, cpiOf), field(previous, cpiOf), in.Tolerance),
		Retention: trend.ClassifySeries(field(recent, retentionOf), field(previous, retentionOf), in.Tolerance),
		ROAS:      trend.ClassifySeries(field(recent, roasOf), field(previous, roasOf), in.Tolerance),
	}
	report.Summary = SummaryStats{
		Weeks:        len(report.History),
		AvgCPI:       kpi.Mean(field(report.History, cpiOf)...),
		AvgRetention: kpi.Mean(field(report.History, retentionOf)...),
		AvgROAS:      kpi.Mean(field(report.History, roasOf)...),
	}
	return report, nil
}

// splitTrendWindows returns the latest TrendWeeks weeks and up to TrendWeeks
// weeks before them.
func splitTrendWindows(history []WeekSummary) (recent, previous []WeekSummary) {
	n := min(TrendWeeks, len(history))
	recent = history[:n]
	previous = history[n:min(2*TrendWeeks, len(history))]
	return recent, previous
}

func cpiOf(w WeekSummary) kpi.Value       { return w.CPI }
func retentionOf(w WeekSummary) kpi.Value { return w.Retention }
func roasOf(w WeekSummary) kpi.Value      { return w.ROAS }

func field(weeks []WeekSummary, get func(WeekSummary) kpi.Value) []kpi.Value {
	out := make([]kpi.Value, len(weeks))
	for i, w := range weeks {
		out[i] = get(w)
	}
	return out
}
