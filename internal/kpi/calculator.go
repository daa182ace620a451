// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package kpi

import (
	"fmt"
	"math"

	"github.com/tomtom215/cohortlens/internal/cohort"
)

// Ratio returns num/den, undefined when den is zero.
func Ratio(num, den float64) Value {
	if den == 0 {
		return Undefined
	}
	return Of(num / den)
}

// CPI is spend per install, undefined when there are no installs.
func CPI(row *cohort.AggregateRow) Value {
	if row.Installs <= 0 {
		return Undefined
	}
	return Of(row.Spend / float64(row.Installs))
}

// ROAS is cumulative revenue at h over spend, undefined when nothing was spent
// or the horizon is not tracked.
func ROAS(row *cohort.AggregateRow, h cohort.Horizon) Value {
	rev, ok := row.RevenueAt(h)
	if !ok || row.Spend <= 0 {
		return Undefined
	}
	return Of(rev / row.Spend)
}

// Retention returns the retention rate at h. An untracked horizon is Undefined;
// a rate outside [0, 1] is a *cohort.DataQualityError and is never clamped.
func Retention(row *cohort.AggregateRow, h cohort.Horizon) (Value, error) {
	rate, ok := row.RetentionAt(h)
	if !ok {
		return Undefined, nil
	}
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return Undefined, &cohort.DataQualityError{
			Key:    row.Key,
			Field:  "retention_" + h.String(),
			Value:  rate,
			Reason: "must be within [0, 1]",
		}
	}
	return Of(rate), nil
}

// ChapterCVR is completions over starts for one chapter.
func ChapterCVR(row *cohort.AggregateRow, chapter int) Value {
	st, ok := row.Chapters[chapter]
	if !ok || st.UsersStarted <= 0 {
		return Undefined
	}
	return Of(float64(st.UsersCompleted) / float64(st.UsersStarted))
}

// ARPU is cumulative revenue at h per install.
func ARPU(row *cohort.AggregateRow, h cohort.Horizon) Value {
	rev, ok := row.RevenueAt(h)
	if !ok || row.Installs <= 0 {
		return Undefined
	}
	return Of(rev / float64(row.Installs))
}

// ARPRU is cumulative revenue at revenueH per user retained at retentionH.
func ARPRU(row *cohort.AggregateRow, revenueH, retentionH cohort.Horizon) (Value, error) {
	ret, err := Retention(row, retentionH)
	if err != nil {
		return Undefined, fmt.Errorf("arpru: %w", err)
	}
	rate, ok := ret.Get()
	rev, tracked := row.RevenueAt(revenueH)
	if !ok || !tracked || row.Installs <= 0 {
		return Undefined, nil
	}
	return Ratio(rev, float64(row.Installs)*rate), nil
}

// RelativeChange is (cur-prev)/prev, undefined when prev is undefined or zero.
func RelativeChange(prev, cur Value) Value {
	p, okPrev := prev.Get()
	c, okCur := cur.Get()
	if !okPrev || !okCur || p == 0 {
		return Undefined
	}
	return Of((c - p) / p)
}

// Drop is (prev-cur)/prev: positive when the metric fell.
func Drop(prev, cur Value) Value {
	return RelativeChange(prev, cur).Neg()
}
