// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package cohort

import "sort"

// Comparison pairs a baseline window with a current window over the same
// grouping. Name labels the comparison in alerts, e.g. "day_over_day".
type Comparison struct {
	Name     string
	Baseline []AggregateRow
	Current  []AggregateRow
}

// Pair is one key's rows in both windows. Baseline is nil for a new key.
type Pair struct {
	Key      Key
	Baseline *AggregateRow
	Current  *AggregateRow
}

// IsNew reports whether the key has no baseline.
func (p Pair) IsNew() bool {
	return p.Baseline == nil
}

// Pairs matches current rows to baseline rows by key, ordered by Key.String().
// A key listed twice in either window is returned as a violation and dropped.
func (c Comparison) Pairs() ([]Pair, []*DataQualityError) {
	baseline, baseDup := index(c.Baseline)
	current, curDup := index(c.Current)

	var rejected []*DataQualityError
	for _, id := range sortedIDs(curDup) {
		rejected = append(rejected, duplicateKey(curDup[id], "current"))
	}
	for _, id := range sortedIDs(baseDup) {
		if _, dup := curDup[id]; dup {
			continue
		}
		if _, inCurrent := current[id]; !inCurrent {
			continue
		}
		rejected = append(rejected, duplicateKey(baseDup[id], "baseline"))
	}

	pairs := make([]Pair, 0, len(current))
	for _, id := range sortedIDs(current) {
		if _, dup := baseDup[id]; dup {
			continue
		}
		p := Pair{Key: current[id].Key, Current: current[id]}
		if b, ok := baseline[id]; ok {
			p.Baseline = b
		}
		pairs = append(pairs, p)
	}
	return pairs, rejected
}

func index(rows []AggregateRow) (map[string]*AggregateRow, map[string]*AggregateRow) {
	byID := make(map[string]*AggregateRow, len(rows))
	dups := make(map[string]*AggregateRow)
	for i := range rows {
		id := rows[i].Key.String()
		if _, seen := byID[id]; seen {
			dups[id] = &rows[i]
			continue
		}
		byID[id] = &rows[i]
	}
	for id := range dups {
		delete(byID, id)
	}
	return byID, dups
}

func sortedIDs(m map[string]*AggregateRow) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func duplicateKey(r *AggregateRow, window string) *DataQualityError {
	return &DataQualityError{Key: r.Key, Field: "key", Reason: "appears more than once in the " + window + " window"}
}
