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

// VolumeDropDetector raises a high alert when installs fall by more than
// volume_drop.
type VolumeDropDetector struct{}

// NewVolumeDropDetector creates a new install volume detector.
func NewVolumeDropDetector() *VolumeDropDetector {
	return &VolumeDropDetector{}
}

// Metric returns the watched metric.
func (d *VolumeDropDetector) Metric() Metric {
	return MetricInstalls
}

// Check compares install counts across the pair. A zero baseline has no
// defined drop.
func (d *VolumeDropDetector) Check(comparison string, pair cohort.Pair, cfg thresholds.Config) (*Alert, error) {
	if pair.IsNew() {
		return nil, nil
	}
	baseline := float64(pair.Baseline.Installs)
	observed := float64(pair.Current.Installs)
	drop, ok := kpi.Drop(kpi.Of(baseline), kpi.Of(observed)).Get()
	if !ok || drop <= cfg.VolumeDrop {
		return nil, nil
	}

	return &Alert{
		Severity:       SeverityHigh,
		Comparison:     comparison,
		DimensionKey:   pair.Key,
		Metric:         MetricInstalls,
		ObservedValue:  observed,
		BaselineValue:  baseline,
		Threshold:      cfg.VolumeDrop,
		Deviation:      drop,
		Message:        fmt.Sprintf("Install volume dropped %.1f%% to %d", drop*100, pair.Current.Installs),
		Recommendation: "Check for technical issues or paused campaigns",
	}, nil
}
