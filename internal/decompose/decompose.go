// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

// Package decompose attributes a change in ROAS to retention, monetization and
// cost using the identity
//
//	ROAS = Retention × ARPRU / CPI
//
// where ARPRU is revenue per retained user. Each lever contributes its own
// relative change, with the cost lever negated because a higher CPI lowers
// ROAS. Summing the three is a first-order approximation of the true
// multiplicative change; Result carries the exact change and the residual so
// callers can see how far apart they are.
package decompose

import (
	"fmt"

	"github.com/tomtom215/cohortlens/internal/cohort"
	"github.com/tomtom215/cohortlens/internal/kpi"
)

// Method records how TotalROASChange was obtained.
type Method string

const (
	// MethodAdditive sums the three lever contributions.
	MethodAdditive Method = "additive"
	// MethodDirect compares the two ROAS values because a lever was undefined.
	MethodDirect Method = "direct"
)

// Result is the attribution of one key's ROAS change between two windows.
// All contributions are fractional relative changes.
type Result struct {
	Horizon cohort.Horizon `json:"horizon"`
	// RetentionHorizon is meaningful only when RetentionTracked is set.
	RetentionHorizon     cohort.Horizon `json:"retention_horizon"`
	RetentionTracked     bool           `json:"retention_tracked"`
	RetentionSubstituted bool           `json:"retention_substituted"`

	OldROAS kpi.Value `json:"old_roas"`
	NewROAS kpi.Value `json:"new_roas"`

	OldRetention kpi.Value `json:"old_retention"`
	NewRetention kpi.Value `json:"new_retention"`
	OldARPRU     kpi.Value `json:"old_arpru"`
	NewARPRU     kpi.Value `json:"new_arpru"`
	OldCPI       kpi.Value `json:"old_cpi"`
	NewCPI       kpi.Value `json:"new_cpi"`

	RetentionContribution    kpi.Value `json:"retention_contribution"`
	MonetizationContribution kpi.Value `json:"monetization_contribution"`
	CostContribution         kpi.Value `json:"cost_contribution"`

	TotalROASChange kpi.Value `json:"total_roas_change"`
	ExactROASChange kpi.Value `json:"exact_roas_change"`
	Residual        kpi.Value `json:"residual"`
	Method          Method    `json:"method"`
}

// Decompose attributes the ROAS change at h between prev and cur. Missing
// horizons and zero denominators produce undefined fields, not errors; only a
// row that fails validation is reported as an error.
//
// When retention is not tracked at h in both rows, the nearest horizon below h
// tracked in both is used and RetentionSubstituted is set. When no such
// horizon exists RetentionTracked is false and RetentionHorizon stays zero.
func Decompose(prev, cur *cohort.AggregateRow, h cohort.Horizon) (Result, error) {
	if err := prev.Validate(); err != nil {
		return Result{}, fmt.Errorf("decompose baseline: %w", err)
	}
	if err := cur.Validate(); err != nil {
		return Result{}, fmt.Errorf("decompose current: %w", err)
	}

	res := Result{
		Horizon: h,
		OldROAS: kpi.ROAS(prev, h),
		NewROAS: kpi.ROAS(cur, h),
		OldCPI:  kpi.CPI(prev),
		NewCPI:  kpi.CPI(cur),
	}

	if rh, ok := cohort.NearestAtOrBelow(h, prev.Retention, cur.Retention); ok {
		res.RetentionHorizon = rh
		res.RetentionTracked = true
		res.RetentionSubstituted = rh != h
		// Validate already range-checked retention, so these cannot fail.
		res.OldRetention, _ = kpi.Retention(prev, rh)
		res.NewRetention, _ = kpi.Retention(cur, rh)
		res.OldARPRU, _ = kpi.ARPRU(prev, h, rh)
		res.NewARPRU, _ = kpi.ARPRU(cur, h, rh)
	}

	res.RetentionContribution = kpi.RelativeChange(res.OldRetention, res.NewRetention)
	res.MonetizationContribution = kpi.RelativeChange(res.OldARPRU, res.NewARPRU)
	res.CostContribution = kpi.RelativeChange(res.OldCPI, res.NewCPI).Neg()
	res.ExactROASChange = kpi.RelativeChange(res.OldROAS, res.NewROAS)

	additive := kpi.Sum(res.RetentionContribution, res.MonetizationContribution, res.CostContribution)
	if additive.Defined() {
		res.TotalROASChange = additive
		res.Method = MethodAdditive
		res.Residual = additive.Sub(res.ExactROASChange)
	} else {
		res.TotalROASChange = res.ExactROASChange
		res.Method = MethodDirect
	}
	return res, nil
}
