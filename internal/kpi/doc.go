// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

// Package kpi derives CPI, ROAS, retention and funnel conversion from aggregate
// rows. Every division is guarded: a zero or missing denominator yields
// Undefined instead of zero, NaN or an error, and Undefined propagates through
// RelativeChange, Sum and the other combinators.
package kpi
