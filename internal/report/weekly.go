// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package report

import (
	"fmt"
	"sort"

	"github.com/tomtom215/cohortlens/internal/cohort"
	"github.com/tomtom215/cohortlens/internal/decompose"
	"github.com/tomtom215/cohortlens/internal/detection"
	"github.com/tomtom215/cohortlens/internal/kpi"
	"github.com/tomtom215/cohortlens/internal/thresholds"
	"github.com/tomtom215/cohortlens/internal/trend"
)

// ComparisonWeekOverWeek labels the weekly report's comparison.
const ComparisonWeekOverWeek = "week_over_week"

// WeeklyInput is the fetched data for one weekly cohort report. Week1 is the
// earlier window.
type WeeklyInput struct {
	Week1     cohort.DateRange
	Week2     cohort.DateRange
	Previous  []cohort.AggregateRow
	Current   []cohort.AggregateRow
	Horizon   cohort.Horizon
	Tolerance float64
}

// Period names the two compared windows.
type Period struct {
	Week1 cohort.DateRange `json:"week1"`
	Week2 cohort.DateRange `json:"week2"`
}

// WindowMetrics are the blended metrics of one window.
type WindowMetrics struct {
	Spend     float64   `json:"spend"`
	Installs  int64     `json:"installs"`
	ROAS      kpi.Value `json:"roas"`
	Retention kpi.Value `json:"retention"`
	CPI       kpi.Value `json:"cpi"`
}

// OverallMetrics compares the two windows pooled across every key. Retention
// is install-weighted and read at RetentionHorizon, the nearest horizon at or
// below Horizon tracked in both windows. RetentionTracked is false, and
// RetentionHorizon zero, when no such horizon exists.
type OverallMetrics struct {
	Horizon          cohort.Horizon `json:"horizon"`
	RetentionHorizon cohort.Horizon `json:"retention_horizon"`
	RetentionTracked bool           `json:"retention_tracked"`
	Week1            WindowMetrics  `json:"week1"`
	Week2            WindowMetrics  `json:"week2"`
}

// SourceComparison is one media source's week-over-week attribution.
type SourceComparison struct {
	DimensionKey  cohort.Key              `json:"dimension_key"`
	New           bool                    `json:"new"`
	Week1Spend    float64                 `json:"week1_spend"`
	Week2Spend    float64                 `json:"week2_spend"`
	Week1Installs int64                   `json:"week1_installs"`
	Week2Installs int64                   `json:"week2_installs"`
	Decomposition *decompose.Result       `json:"decomposition,omitempty"`
	ROASTrend     trend.Label             `json:"roas_trend"`
	Targets       []detection.TargetCheck `json:"targets"`
}

// WeeklyReport is the weekly cohort report.
type WeeklyReport struct {
	Period            Period                `json:"period"`
	OverallMetrics    OverallMetrics        `json:"overall_metrics"`
	ROASTrend         trend.Label           `json:"roas_trend"`
	RetentionTrend    trend.Label           `json:"retention_trend"`
	CPITrend          trend.Label           `json:"cpi_trend"`
	SourceComparisons []SourceComparison    `json:"source_comparisons"`
	Rejections        []detection.Rejection `json:"rejections"`
}

// WeeklyCohort compares two adjacent windows. Blended metrics pool every
// valid row whose key is listed once per window; each source is decomposed with the ROAS decomposer and checked
// against its campaign-class targets for the current week.
func WeeklyCohort(in WeeklyInput, cfg thresholds.Config) (*WeeklyReport, error) {
	current, rejCur := cohort.SplitValid(distinctKeys(in.Current))
	previous, rejPrev := cohort.SplitValid(distinctKeys(in.Previous))

	w1, err := blended(previous)
	if err != nil {
		return nil, fmt.Errorf("weekly baseline: %w", err)
	}
	w2, err := blended(current)
	if err != nil {
		return nil, fmt.Errorf("weekly current: %w", err)
	}

	overall := OverallMetrics{Horizon: in.Horizon}
	if rh, ok := cohort.NearestAtOrBelow(in.Horizon, w1.Retention, w2.Retention); ok {
		overall.RetentionHorizon = rh
		overall.RetentionTracked = true
	}
	overall.Week1 = windowMetrics(w1, in.Horizon, overall.RetentionHorizon, overall.RetentionTracked)
	overall.Week2 = windowMetrics(w2, in.Horizon, overall.RetentionHorizon, overall.RetentionTracked)

	comparison := cohort.Comparison{Name: ComparisonWeekOverWeek, Baseline: in.Previous, Current: in.Current}
	pairs, dups := comparison.Pairs()

	report := &WeeklyReport{
		Period:            Period{Week1: in.Week1, Week2: in.Week2},
		OverallMetrics:    overall,
		ROASTrend:         trend.Classify(overall.Week2.ROAS, overall.Week1.ROAS, in.Tolerance),
		RetentionTrend:    trend.Classify(overall.Week2.Retention, overall.Week1.Retention, in.Tolerance),
		CPITrend:          trend.ClassifyCost(overall.Week2.CPI, overall.Week1.CPI, in.Tolerance),
		SourceComparisons: make([]SourceComparison, 0, len(pairs)),
	}

	rejected := append(append(rejCur, rejPrev...), dups...)
	for _, p := range pairs {
		if invalid(p.Current) || (p.Baseline != nil && invalid(p.Baseline)) {
			continue
		}
		sc := SourceComparison{
			DimensionKey:  p.Key,
			New:           p.IsNew(),
			Week2Spend:    p.Current.Spend,
			Week2Installs: p.Current.Installs,
			ROASTrend:     trend.Undefined,
			Targets:       detection.EvaluateTargets(p.Current, cfg),
		}
		if !p.IsNew() {
			res, err := decompose.Decompose(p.Baseline, p.Current, in.Horizon)
			if err != nil {
				return nil, fmt.Errorf("decompose %s: %w", p.Key.Label(), err)
			}
			sc.Week1Spend = p.Baseline.Spend
			sc.Week1Installs = p.Baseline.Installs
			sc.Decomposition = &res
			sc.ROASTrend = trend.Classify(res.NewROAS, res.OldROAS, in.Tolerance)
		}
		report.SourceComparisons = append(report.SourceComparisons, sc)
	}

	report.Rejections = rejectionsOf(ComparisonWeekOverWeek, rejected)
	sortRejections(report.Rejections)
	return report, nil
}

// blended pools rows into a single row with an empty key. No rows yield an
// empty row.
func blended(rows []cohort.AggregateRow) (*cohort.AggregateRow, error) {
	pooled, err := cohort.Rollup(rows, cohort.Dimensions{})
	if err != nil {
		return nil, err
	}
	if len(pooled) == 0 {
		return &cohort.AggregateRow{}, nil
	}
	return &pooled[0], nil
}

func windowMetrics(r *cohort.AggregateRow, h, retentionH cohort.Horizon, tracked bool) WindowMetrics {
	ret := kpi.Undefined
	if tracked {
		// Rows reaching here passed validation, so retention is in range.
		ret, _ = kpi.Retention(r, retentionH)
	}
	return WindowMetrics{
		Spend:     r.Spend,
		Installs:  r.Installs,
		ROAS:      kpi.ROAS(r, h),
		Retention: ret,
		CPI:       kpi.CPI(r),
	}
}

func sortRejections(rs []detection.Rejection) {
	sort.SliceStable(rs, func(i, j int) bool {
		if ki, kj := rs[i].DimensionKey.String(), rs[j].DimensionKey.String(); ki != kj {
			return ki < kj
		}
		return rs[i].Field < rs[j].Field
	})
}
