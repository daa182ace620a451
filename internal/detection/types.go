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

// Metric identifies the derived metric a detector watches.
type Metric string

const (
	// MetricCPI flags cost-per-install spikes.
	MetricCPI Metric = "cpi"

	// MetricInstalls flags install volume drops.
	MetricInstalls Metric = "installs"

	// MetricRetention flags retention drops at the configured horizon.
	MetricRetention Metric = "retention"

	// MetricROAS flags ROAS drops at the shortest common horizon.
	MetricROAS Metric = "roas"
)

// Severity indicates the severity level of an alert.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Rank orders severities: high > medium > low > unknown.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Alert is one threshold breach. Numeric fields are raw values and fractions;
// only Message and Recommendation are prose.
type Alert struct {
	Severity       Severity        `json:"severity"`
	Comparison     string          `json:"comparison"`
	DimensionKey   cohort.Key      `json:"dimension_key"`
	Metric         Metric          `json:"metric"`
	Horizon        *cohort.Horizon `json:"horizon,omitempty"`
	ObservedValue  float64         `json:"observed_value"`
	BaselineValue  float64         `json:"baseline_value"`
	Threshold      float64         `json:"threshold"`
	Deviation      float64         `json:"deviation"`
	Message        string          `json:"message"`
	Recommendation string          `json:"recommendation,omitempty"`
}

// Performer is an informational entry for a key that grew installs while
// holding CPI inside the spike threshold.
type Performer struct {
	Comparison     string     `json:"comparison"`
	DimensionKey   cohort.Key `json:"dimension_key"`
	Installs       int64      `json:"installs"`
	InstallsChange kpi.Value  `json:"installs_change"`
	CPI            kpi.Value  `json:"cpi"`
	CPIChange      kpi.Value  `json:"cpi_change"`
}

// NewKey is a key present in the current window with no baseline.
type NewKey struct {
	Comparison   string     `json:"comparison"`
	DimensionKey cohort.Key `json:"dimension_key"`
	Spend        float64    `json:"spend"`
	Installs     int64      `json:"installs"`
	CPI          kpi.Value  `json:"cpi"`
}

// Rejection is a key skipped because one of its rows broke a data-quality
// invariant. The rest of the scan continues.
type Rejection struct {
	Comparison   string     `json:"comparison"`
	DimensionKey cohort.Key `json:"dimension_key"`
	Field        string     `json:"field"`
	Value        float64    `json:"value"`
	Reason       string     `json:"reason"`
}

// NewRejection converts a data-quality error into a Rejection.
func NewRejection(comparison string, dq *cohort.DataQualityError) Rejection {
	return Rejection{
		Comparison:   comparison,
		DimensionKey: dq.Key,
		Field:        dq.Field,
		Value:        dq.Value,
		Reason:       dq.Reason,
	}
}

// Detector evaluates one metric for one key pair. Implementations must be
// stateless: the engine may call Check from several goroutines at once.
// A nil alert means no breach.
type Detector interface {
	Metric() Metric
	Check(comparison string, pair cohort.Pair, cfg thresholds.Config) (*Alert, error)
}
