// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package detection

import (
	"fmt"

	"github.com/tomtom215/cohortlens/internal/cohort"
	"github.com/tomtom215/cohortlens/internal/kpi"
	"github.com/tomtom215/cohortlens/internal/thresholds"
)

// CPISpikeDetector raises a high alert when CPI grows by more than cpi_spike.
type CPISpikeDetector struct{}

// NewCPISpikeDetector creates a new CPI spike detector.
func NewCPISpikeDetector() *CPISpikeDetector {
	return &CPISpikeDetector{}
}

// Metric returns the watched metric.
func (d *CPISpikeDetector) Metric() Metric {
	return MetricCPI
}

// Check compares CPI across the pair.
func (d *CPISpikeDetector) Check(comparison string, pair cohort.Pair, cfg thresholds.Config) (*Alert, error) {
	if pair.IsNew() {
		return nil, nil
	}
	oldCPI := kpi.CPI(pair.Baseline)
	newCPI := kpi.CPI(pair.Current)
	change, ok := kpi.RelativeChange(oldCPI, newCPI).Get()
	if !ok || change <= cfg.CPISpike {
		return nil, nil
	}

	observed, _ := newCPI.Get()
	baseline, _ := oldCPI.Get()
	return &Alert{
		Severity:       SeverityHigh,
		Comparison:     comparison,
		DimensionKey:   pair.Key,
		Metric:         MetricCPI,
		ObservedValue:  observed,
		BaselineValue:  baseline,
		Threshold:      cfg.CPISpike,
		Deviation:      change,
		Message:        fmt.Sprintf("CPI spiked %.1f%% to %.2f", change*100, observed),
		Recommendation: "Review bid strategy and audience targeting",
	}, nil
}
