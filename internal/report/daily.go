// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/cohortlens/internal/cohort"
	"github.com/tomtom215/cohortlens/internal/detection"
	"github.com/tomtom215/cohortlens/internal/kpi"
	"github.com/tomtom215/cohortlens/internal/thresholds"
	"github.com/tomtom215/cohortlens/internal/trend"
)

// ComparisonDayOverDay labels the daily report's comparison.
const ComparisonDayOverDay = "day_over_day"

// DailyInput is the fetched data for one daily health report.
type DailyInput struct {
	Date      time.Time
	Previous  []cohort.AggregateRow
	Current   []cohort.AggregateRow
	Tolerance float64
}

// Overview holds the blended day-over-day totals.
type Overview struct {
	TotalSpend          float64   `json:"total_spend"`
	PrevSpend           float64   `json:"prev_spend"`
	SpendChangePct      kpi.Value `json:"spend_change_pct"`
	TotalInstalls       int64     `json:"total_installs"`
	PrevInstalls        int64     `json:"prev_installs"`
	InstallsChangePct   kpi.Value `json:"installs_change_pct"`
	BlendedCPI          kpi.Value `json:"blended_cpi"`
	PrevBlendedCPI      kpi.Value `json:"prev_blended_cpi"`
	BlendedCPIChangePct kpi.Value `json:"blended_cpi_change_pct"`
}

// SourceDetail is one key's day-over-day movement.
type SourceDetail struct {
	DimensionKey   cohort.Key  `json:"dimension_key"`
	New            bool        `json:"new"`
	Spend          float64     `json:"spend"`
	PrevSpend      float64     `json:"prev_spend"`
	Installs       int64       `json:"installs"`
	PrevInstalls   int64       `json:"prev_installs"`
	InstallsChange kpi.Value   `json:"installs_change"`
	CPI            kpi.Value   `json:"cpi"`
	PrevCPI        kpi.Value   `json:"prev_cpi"`
	CPIChange      kpi.Value   `json:"cpi_change"`
	CPITrend       trend.Label `json:"cpi_trend"`
}

// DailyReport is the daily health report.
type DailyReport struct {
	Date             string                `json:"date"`
	Overview         Overview              `json:"overview"`
	CriticalAlerts   []detection.Alert     `json:"critical_alerts"`
	StrongPerformers []detection.Performer `json:"strong_performers"`
	NewSources       []detection.NewKey    `json:"new_sources"`
	Rejections       []detection.Rejection `json:"rejections"`
	SourceDetails    []SourceDetail        `json:"source_details"`
}

// DailyHealth assembles the daily report from the day and the day before.
// Alerts come from engine. Rows that fail validation and keys listed twice in
// a window are excluded from the totals and listed as rejections.
func DailyHealth(ctx context.Context, in DailyInput, cfg thresholds.Config, engine *detection.Engine) (*DailyReport, error) {
	comparison := cohort.Comparison{Name: ComparisonDayOverDay, Baseline: in.Previous, Current: in.Current}
	scan, err := engine.Scan(ctx, []cohort.Comparison{comparison}, cfg)
	if err != nil {
		return nil, fmt.Errorf("daily scan: %w", err)
	}

	current, _ := cohort.SplitValid(distinctKeys(in.Current))
	previous, _ := cohort.SplitValid(distinctKeys(in.Previous))
	spend, installs := totals(current)
	prevSpend, prevInstalls := totals(previous)
	cpi := kpi.Ratio(spend, float64(installs))
	prevCPI := kpi.Ratio(prevSpend, float64(prevInstalls))

	report := &DailyReport{
		Date: cohort.Day(in.Date).Format(cohort.DateLayout),
		Overview: Overview{
			TotalSpend:          spend,
			PrevSpend:           prevSpend,
			SpendChangePct:      kpi.RelativeChange(kpi.Of(prevSpend), kpi.Of(spend)),
			TotalInstalls:       installs,
			PrevInstalls:        prevInstalls,
			InstallsChangePct:   kpi.RelativeChange(kpi.Of(float64(prevInstalls)), kpi.Of(float64(installs))),
			BlendedCPI:          cpi,
			PrevBlendedCPI:      prevCPI,
			BlendedCPIChangePct: kpi.RelativeChange(prevCPI, cpi),
		},
		CriticalAlerts:   scan.Alerts,
		StrongPerformers: scan.StrongPerformers,
		NewSources:       scan.NewKeys,
		Rejections:       scan.Rejections,
		SourceDetails:    sourceDetails(comparison, in.Tolerance),
	}
	return report, nil
}

// sourceDetails lists every valid pair in key order.
func sourceDetails(c cohort.Comparison, tolerance float64) []SourceDetail {
	pairs, _ := c.Pairs()
	out := make([]SourceDetail, 0, len(pairs))
	for _, p := range pairs {
		if invalid(p.Current) || (p.Baseline != nil && invalid(p.Baseline)) {
			continue
		}
		d := SourceDetail{
			DimensionKey: p.Key,
			New:          p.IsNew(),
			Spend:        p.Current.Spend,
			Installs:     p.Current.Installs,
			CPI:          kpi.CPI(p.Current),
			PrevCPI:      kpi.Undefined,
		}
		if !p.IsNew() {
			d.PrevSpend = p.Baseline.Spend
			d.PrevInstalls = p.Baseline.Installs
			d.PrevCPI = kpi.CPI(p.Baseline)
			d.InstallsChange = kpi.RelativeChange(kpi.Of(float64(d.PrevInstalls)), kpi.Of(float64(d.Installs)))
		}
		d.CPIChange = kpi.RelativeChange(d.PrevCPI, d.CPI)
		d.CPITrend = trend.ClassifyCost(d.CPI, d.PrevCPI, tolerance)
		out = append(out, d)
	}
	return out
}

func invalid(r *cohort.AggregateRow) bool {
	var dq *cohort.DataQualityError
	return errors.As(r.Validate(), &dq)
}
