// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

/*
Package detection turns period-over-period comparisons into severity-ranked
alerts.

# Detectors

Each detector watches one derived metric for one key pair:

	cpi        CPI rose by more than cpi_spike                      high
	installs   installs fell by more than volume_drop               high
	retention  retention at the configured horizon (or the nearest
	           tracked horizon below it) fell by more than
	           retention_drop                                       medium
	roas       ROAS at the shortest horizon tracked in both windows
	           fell by more than roas_drop                          medium

An undefined value on either side skips the check. Two undefined values are
never compared as if both were zero.

# Engine

	engine := detection.NewDefaultEngine(detection.WithWorkers(4))
	result, err := engine.Scan(ctx, []cohort.Comparison{dayOverDay}, cfg)

Scan returns alerts ordered by severity rank, breach magnitude and grouping key.
Keys absent from the baseline are returned as NewKeys and never alerted. Keys
whose rows break a data-quality invariant are returned as Rejections while the
rest of the scan continues. Keys that grew installs with CPI inside the spike
threshold are returned as StrongPerformers. Worker count never changes the
output.

# Targets

EvaluateTargets compares a single row with the KPI targets of its campaign
class (offerwall or non-offerwall) and reports met, below, healthy or
undefined per KPI.
*/
package detection
