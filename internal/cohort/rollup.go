// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package cohort

import (
	"fmt"
	"sort"
)

type rollupAcc struct {
	row          AggregateRow
	members      int
	revenueSeen  map[Horizon]int
	retention    map[Horizon]float64 // install-weighted sum
	retentionN   map[Horizon]int
	retentionW   map[Horizon]int64
	chapterDaysW map[int]float64
}

// Rollup re-groups rows onto dims. Rows are expected to be valid; use SplitValid
// first. The result is ordered by Key.String().
func Rollup(rows []AggregateRow, dims Dimensions) ([]AggregateRow, error) {
	if err := dims.Validate(); err != nil {
		return nil, fmt.Errorf("rollup: %w", err)
	}

	groups := make(map[string]*rollupAcc)
	for i := range rows {
		r := &rows[i]
		key := dims.Project(r.Key)
		id := key.String()
		acc, ok := groups[id]
		if !ok {
			acc = &rollupAcc{
				row:          AggregateRow{Key: key},
				revenueSeen:  make(map[Horizon]int),
				retention:    make(map[Horizon]float64),
				retentionN:   make(map[Horizon]int),
				retentionW:   make(map[Horizon]int64),
				chapterDaysW: make(map[int]float64),
			}
			groups[id] = acc
		}
		acc.add(r)
	}

	out := make([]AggregateRow, 0, len(groups))
	for _, acc := range groups {
		out = append(out, acc.finish())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.String() < out[j].Key.String() })
	return out, nil
}

func (a *rollupAcc) add(r *AggregateRow) {
	a.members++
	a.row.Spend += r.Spend
	a.row.Installs += r.Installs

	for h, v := range r.Revenue {
		if a.row.Revenue == nil {
			a.row.Revenue = make(map[Horizon]float64)
		}
		a.row.Revenue[h] += v
		a.revenueSeen[h]++
	}
	for h, v := range r.Retention {
		a.retention[h] += v * float64(r.Installs)
		a.retentionW[h] += r.Installs
		a.retentionN[h]++
	}
	for c, st := range r.Chapters {
		if a.row.Chapters == nil {
			a.row.Chapters = make(map[int]ChapterStats)
		}
		cur := a.row.Chapters[c]
		cur.UsersStarted += st.UsersStarted
		cur.UsersCompleted += st.UsersCompleted
		cur.RevenueGenerated += st.RevenueGenerated
		a.row.Chapters[c] = cur
		a.chapterDaysW[c] += st.AvgDaysToComplete * float64(st.UsersCompleted)
	}
}

func (a *rollupAcc) finish() AggregateRow {
	// Horizons not tracked by every member are immature for the group.
	for h, n := range a.revenueSeen {
		if n != a.members {
			delete(a.row.Revenue, h)
		}
	}
	for h, n := range a.retentionN {
		if n != a.members || a.retentionW[h] == 0 {
			continue
		}
		if a.row.Retention == nil {
			a.row.Retention = make(map[Horizon]float64)
		}
		a.row.Retention[h] = a.retention[h] / float64(a.retentionW[h])
	}
	for c, st := range a.row.Chapters {
		if st.UsersCompleted > 0 {
			st.AvgDaysToComplete = a.chapterDaysW[c] / float64(st.UsersCompleted)
		}
		a.row.Chapters[c] = st
	}
	return a.row
}

// RollupChecked is Rollup for rows that have not been validated. A group with
// an invalid member is not merged: its first invalid row, re-keyed onto dims,
// stands in for the group so that downstream validation rejects that key with
// the original violation. Valid groups are rolled up as usual.
func RollupChecked(rows []AggregateRow, dims Dimensions) ([]AggregateRow, error) {
	if err := dims.Validate(); err != nil {
		return nil, fmt.Errorf("rollup: %w", err)
	}

	poisoned := make(map[string]AggregateRow)
	for i := range rows {
		if rows[i].Validate() == nil {
			continue
		}
		key := dims.Project(rows[i].Key)
		if _, seen := poisoned[key.String()]; !seen {
			bad := rows[i].Clone()
			bad.Key = key
			poisoned[key.String()] = bad
		}
	}

	valid := make([]AggregateRow, 0, len(rows))
	for i := range rows {
		if _, bad := poisoned[dims.Project(rows[i].Key).String()]; !bad {
			valid = append(valid, rows[i])
		}
	}
	out, err := Rollup(valid, dims)
	if err != nil {
		return nil, err
	}
	for _, bad := range poisoned {
		out = append(out, bad)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.String() < out[j].Key.String() })
	return out, nil
}
