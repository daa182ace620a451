// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package detection

import (
	"fmt"
	"strings"

	"github.com/tomtom215/cohortlens/internal/cohort"
	"github.com/tomtom215/cohortlens/internal/kpi"
	"github.com/tomtom215/cohortlens/internal/thresholds"
)

// ROASDropDetector raises a medium alert when ROAS at the shortest horizon
// tracked in both windows falls by more than roas_drop.
type ROASDropDetector struct{}

// NewROASDropDetector creates a new ROAS detector.
func NewROASDropDetector() *ROASDropDetector {
	return &ROASDropDetector{}
}

// Metric returns the watched metric.
func (d *ROASDropDetector) Metric() Metric {
	return MetricROAS
}

// Check compares ROAS across the pair.
func (d *ROASDropDetector) Check(comparison string, pair cohort.Pair, cfg thresholds.Config) (*Alert, error) {
	if pair.IsNew() {
		return nil, nil
	}
	h, ok := cohort.ShortestCommon(pair.Baseline.Revenue, pair.Current.Revenue)
	if !ok {
		return nil, nil
	}
	oldROAS := kpi.ROAS(pair.Baseline, h)
	newROAS := kpi.ROAS(pair.Current, h)
	drop, ok := kpi.Drop(oldROAS, newROAS).Get()
	if !ok || drop <= cfg.ROASDrop {
		return nil, nil
	}

	observed, _ := newROAS.Get()
	baseline, _ := oldROAS.Get()
	return &Alert{
		Severity:       SeverityMedium,
		Comparison:     comparison,
		DimensionKey:   pair.Key,
		Metric:         MetricROAS,
		Horizon:        &h,
		ObservedValue:  observed,
		BaselineValue:  baseline,
		Threshold:      cfg.ROASDrop,
		Deviation:      drop,
		Message:        fmt.Sprintf("%s ROAS dropped %.1f%% to %.2f", strings.ToUpper(h.String()), drop*100, observed),
		Recommendation: "Review monetization and bid levels for this source",
	}, nil
}
