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

// RetentionDropDetector raises a medium alert when retention at the configured
// horizon, or the nearest horizon below it tracked in both windows, falls by
// more than retention_drop.
type RetentionDropDetector struct{}

// NewRetentionDropDetector creates a new retention detector.
func NewRetentionDropDetector() *RetentionDropDetector {
	return &RetentionDropDetector{}
}

// Metric returns the watched metric.
func (d *RetentionDropDetector) Metric() Metric {
	return MetricRetention
}

// Check compares retention across the pair.
func (d *RetentionDropDetector) Check(comparison string, pair cohort.Pair, cfg thresholds.Config) (*Alert, error) {
	if pair.IsNew() {
		return nil, nil
	}
	h, ok := cohort.NearestAtOrBelow(cfg.RetentionHorizon, pair.Baseline.Retention, pair.Current.Retention)
	if !ok {
		return nil, nil
	}
	oldRet, err := kpi.Retention(pair.Baseline, h)
	if err != nil {
		return nil, err
	}
	newRet, err := kpi.Retention(pair.Current, h)
	if err != nil {
		return nil, err
	}
	drop, ok := kpi.Drop(oldRet, newRet).Get()
	if !ok || drop <= cfg.RetentionDrop {
		return nil, nil
	}

	observed, _ := newRet.Get()
	baseline, _ := oldRet.Get()
	return &Alert{
		Severity:       SeverityMedium,
		Comparison:     comparison,
		DimensionKey:   pair.Key,
		Metric:         MetricRetention,
		Horizon:        &h,
		ObservedValue:  observed,
		BaselineValue:  baseline,
		Threshold:      cfg.RetentionDrop,
		Deviation:      drop,
		Message:        fmt.Sprintf("%s retention dropped %.1f%% to %.3f", strings.ToUpper(h.String()), drop*100, observed),
		Recommendation: "Review creative and audience quality for this source",
	}, nil
}
