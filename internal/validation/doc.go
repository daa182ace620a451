// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built once and shared. Fields are reported by
// their koanf or json tag so a failure reads like the config key the operator
// typed:
//
//	type Alerting struct {
//	    CPISpike float64 `koanf:"cpi_spike" validate:"gt=0"`
//	}
//
//	if err := validation.ValidateStruct(&cfg); err != nil {
//	    // err.Error() == "alerting.cpi_spike must be greater than 0"
//	}
//
// # Custom Tags
//
//   - cohortday: integer must be one of the canonical cohort horizons
//
// The built-in gt, gte, lte, gtefield and oneof tags cover the remaining
// threshold rules.
package validation
