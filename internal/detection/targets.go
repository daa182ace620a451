// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package detection

import (
	"github.com/tomtom215/cohortlens/internal/cohort"
	"github.com/tomtom215/cohortlens/internal/kpi"
	"github.com/tomtom215/cohortlens/internal/thresholds"
)

// TargetStatus is the outcome of comparing a KPI with its campaign-class target.
type TargetStatus string

const (
	TargetMet       TargetStatus = "met"
	TargetBelow     TargetStatus = "below"
	TargetHealthy   TargetStatus = "healthy" // at or above the aspirational target
	TargetUndefined TargetStatus = "undefined"
)

// TargetCheck is one KPI compared with its target.
type TargetCheck struct {
	DimensionKey cohort.Key     `json:"dimension_key"`
	KPI          string         `json:"kpi"`
	Horizon      cohort.Horizon `json:"horizon"`
	Observed     kpi.Value      `json:"observed"`
	Target       float64        `json:"target"`
	Status       TargetStatus   `json:"status"`
}

// EvaluateTargets compares a row with the targets of its campaign class.
// Rows with no campaign class produce no checks.
func EvaluateTargets(row *cohort.AggregateRow, cfg thresholds.Config) []TargetCheck {
	switch row.Key.CampaignType {
	case cohort.CampaignOfferwall:
		return []TargetCheck{
			minimum(row.Key, "roas", cohort.D90, kpi.ROAS(row, cohort.D90), cfg.Offerwall.ROASD90),
			minimum(row.Key, "chapter3_cvr", 0, kpi.ChapterCVR(row, 3), cfg.Offerwall.MinChapter3CVR),
		}
	case cohort.CampaignNonOfferwall:
		ret, err := kpi.Retention(row, cohort.D7)
		if err != nil {
			ret = kpi.Undefined
		}
		return []TargetCheck{
			minimum(row.Key, "roas", cohort.D180, kpi.ROAS(row, cohort.D180), cfg.NonOfferwall.ROASD180),
			minimum(row.Key, "roas", cohort.D365, kpi.ROAS(row, cohort.D365), cfg.NonOfferwall.ROASD365),
			retentionBand(row.Key, ret, cfg.NonOfferwall.MinD7Retention, cfg.NonOfferwall.TargetD7Retention),
		}
	default:
		return nil
	}
}

func minimum(key cohort.Key, name string, h cohort.Horizon, observed kpi.Value, target float64) TargetCheck {
	tc := TargetCheck{DimensionKey: key, KPI: name, Horizon: h, Observed: observed, Target: target, Status: TargetUndefined}
	if v, ok := observed.Get(); ok {
		tc.Status = TargetBelow
		if v >= target {
			tc.Status = TargetMet
		}
	}
	return tc
}

// retentionBand reports below under min, met between min and target, and
// healthy at or above target.
func retentionBand(key cohort.Key, observed kpi.Value, minRate, target float64) TargetCheck {
	tc := TargetCheck{DimensionKey: key, KPI: "retention", Horizon: cohort.D7, Observed: observed, Target: minRate, Status: TargetUndefined}
	v, ok := observed.Get()
	switch {
	case !ok:
	case v >= target:
		tc.Status = TargetHealthy
		tc.Target = target
	case v >= minRate:
		tc.Status = TargetMet
	default:
		tc.Status = TargetBelow
	}
	return tc
}
