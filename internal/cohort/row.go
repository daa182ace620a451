// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package cohort

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDataQuality matches every *DataQualityError via errors.Is.
var ErrDataQuality = errors.New("data quality violation")

// DataQualityError reports the key and field of a row that broke an invariant.
type DataQualityError struct {
	Key    Key
	Field  string
	Value  float64
	Reason string
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("data quality violation for %s: %s=%g %s", e.Key.Label(), e.Field, e.Value, e.Reason)
}

// Is lets errors.Is(err, ErrDataQuality) match.
func (e *DataQualityError) Is(target error) bool {
	return target == ErrDataQuality
}

// ChapterStats is the funnel for one chapter of one slice.
type ChapterStats struct {
	UsersStarted      int64   `json:"users_started"`
	UsersCompleted    int64   `json:"users_completed"`
	AvgDaysToComplete float64 `json:"avg_days_to_complete"`
	RevenueGenerated  float64 `json:"revenue_generated"`
}

// AggregateRow is one key's metrics for one time window. Revenue is cumulative
// by horizon; Retention holds rates in [0, 1].
type AggregateRow struct {
	Key       Key                  `json:"key"`
	Spend     float64              `json:"spend"`
	Installs  int64                `json:"installs"`
	Revenue   map[Horizon]float64  `json:"revenue,omitempty"`
	Retention map[Horizon]float64  `json:"retention,omitempty"`
	Chapters  map[int]ChapterStats `json:"chapters,omitempty"`
}

// RevenueAt returns cumulative revenue at h.
func (r *AggregateRow) RevenueAt(h Horizon) (float64, bool) {
	v, ok := r.Revenue[h]
	return v, ok
}

// RetentionAt returns the raw retention rate at h without range checking.
func (r *AggregateRow) RetentionAt(h Horizon) (float64, bool) {
	v, ok := r.Retention[h]
	return v, ok
}

// Clone returns a deep copy.
func (r *AggregateRow) Clone() AggregateRow {
	out := *r
	if r.Revenue != nil {
		out.Revenue = make(map[Horizon]float64, len(r.Revenue))
		for h, v := range r.Revenue {
			out.Revenue[h] = v
		}
	}
	if r.Retention != nil {
		out.Retention = make(map[Horizon]float64, len(r.Retention))
		for h, v := range r.Retention {
			out.Retention[h] = v
		}
	}
	if r.Chapters != nil {
		out.Chapters = make(map[int]ChapterStats, len(r.Chapters))
		for c, v := range r.Chapters {
			out.Chapters[c] = v
		}
	}
	return out
}

// Validate returns a *DataQualityError for the first broken invariant, or nil.
// Checks run in a fixed order so the reported field is deterministic.
func (r *AggregateRow) Validate() error {
	if math.IsNaN(r.Spend) || math.IsInf(r.Spend, 0) || r.Spend < 0 {
		return r.violation("spend", r.Spend, "must be a finite non-negative amount")
	}
	if r.Installs < 0 {
		return r.violation("installs", float64(r.Installs), "must not be negative")
	}
	if !r.Key.CampaignType.Valid() {
		return r.violation("campaign_type", 0, fmt.Sprintf("unknown campaign class %q", r.Key.CampaignType))
	}
	for _, h := range SortedHorizons(r.Revenue) {
		v := r.Revenue[h]
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return r.violation("revenue_"+h.String(), v, "must be a finite non-negative amount")
		}
	}
	for _, h := range SortedHorizons(r.Retention) {
		v := r.Retention[h]
		if math.IsNaN(v) || v < 0 || v > 1 {
			return r.violation("retention_"+h.String(), v, "must be within [0, 1]")
		}
	}
	chapters := make([]int, 0, len(r.Chapters))
	for c := range r.Chapters {
		chapters = append(chapters, c)
	}
	sort.Ints(chapters)
	for _, c := range chapters {
		st := r.Chapters[c]
		field := fmt.Sprintf("chapter_%d", c)
		switch {
		case st.UsersStarted < 0:
			return r.violation(field+"_users_started", float64(st.UsersStarted), "must not be negative")
		case st.UsersCompleted < 0:
			return r.violation(field+"_users_completed", float64(st.UsersCompleted), "must not be negative")
		case st.UsersCompleted > st.UsersStarted:
			return r.violation(field+"_users_completed", float64(st.UsersCompleted), "exceeds users started")
		case st.RevenueGenerated < 0:
			return r.violation(field+"_revenue_generated", st.RevenueGenerated, "must not be negative")
		}
	}
	return nil
}

func (r *AggregateRow) violation(field string, value float64, reason string) *DataQualityError {
	return &DataQualityError{Key: r.Key, Field: field, Value: value, Reason: reason}
}

// RevenueMonotonicityIssues returns the horizons whose cumulative revenue is
// lower than at the previous tracked horizon. The invariant is reported, not
// enforced.
func (r *AggregateRow) RevenueMonotonicityIssues() []Horizon {
	var issues []Horizon
	prev, havePrev := 0.0, false
	for _, h := range SortedHorizons(r.Revenue) {
		v := r.Revenue[h]
		if havePrev && v < prev {
			issues = append(issues, h)
		}
		prev, havePrev = v, true
	}
	return issues
}

// SplitValid partitions rows into valid rows and the violations of the rest.
func SplitValid(rows []AggregateRow) ([]AggregateRow, []*DataQualityError) {
	valid := make([]AggregateRow, 0, len(rows))
	var rejected []*DataQualityError
	for i := range rows {
		if err := rows[i].Validate(); err != nil {
			var dq *DataQualityError
			if errors.As(err, &dq) {
				rejected = append(rejected, dq)
			}
			continue
		}
		valid = append(valid, rows[i])
	}
	return valid, rejected
}
