// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

// Package trend labels a recent metric against a historical baseline using a
// symmetric tolerance band.
package trend

import "github.com/tomtom215/cohortlens/internal/kpi"

// Label is a qualitative trend.
type Label string

const (
	Improving Label = "improving"
	Declining Label = "declining"
	Stable    Label = "stable"
	Undefined Label = "undefined"
)

// DefaultTolerance is the 5% band used when a call site does not configure one.
const DefaultTolerance = 0.05

// Classify compares a higher-is-better metric. A zero baseline labels any
// positive recent value as improving and anything else as stable.
func Classify(recent, historical kpi.Value, tolerance float64) Label {
	r, okR := recent.Get()
	h, okH := historical.Get()
	if !okR || !okH {
		return Undefined
	}
	if h == 0 {
		if r > 0 {
			return Improving
		}
		return Stable
	}
	switch {
	case r > h*(1+tolerance):
		return Improving
	case r < h*(1-tolerance):
		return Declining
	default:
		return Stable
	}
}

// ClassifyCost compares a lower-is-better metric such as CPI: a rise is
// declining and a fall is improving.
func ClassifyCost(recent, historical kpi.Value, tolerance float64) Label {
	switch Classify(recent, historical, tolerance) {
	case Improving:
		return Declining
	case Declining:
		return Improving
	default:
		return Classify(recent, historical, tolerance)
	}
}

// ClassifySeries compares the means of the defined points of two series.
func ClassifySeries(recent, historical []kpi.Value, tolerance float64) Label {
	return Classify(kpi.Mean(recent...), kpi.Mean(historical...), tolerance)
}

// ClassifyCostSeries is ClassifySeries for lower-is-better metrics.
func ClassifyCostSeries(recent, historical []kpi.Value, tolerance float64) Label {
	return ClassifyCost(kpi.Mean(recent...), kpi.Mean(historical...), tolerance)
}
