// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package cohort

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Horizon is a cohort day: the number of days since install at which a
// cumulative metric is measured.
type Horizon int

// Canonical horizons tracked by the warehouse.
const (
	D0   Horizon = 0
	D1   Horizon = 1
	D3   Horizon = 3
	D7   Horizon = 7
	D14  Horizon = 14
	D30  Horizon = 30
	D90  Horizon = 90
	D180 Horizon = 180
	D365 Horizon = 365
)

// CanonicalHorizons lists the horizons in ascending order.
var CanonicalHorizons = []Horizon{D0, D1, D3, D7, D14, D30, D90, D180, D365}

// String renders the horizon as "d7".
func (h Horizon) String() string {
	return "d" + strconv.Itoa(int(h))
}

// ParseHorizon accepts "d7", "D7" or "7".
func ParseHorizon(s string) (Horizon, error) {
	trimmed := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "d")
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid horizon %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid horizon %q: must not be negative", s)
	}
	return Horizon(n), nil
}

// SortedHorizons returns the keys of m in ascending order.
func SortedHorizons(m map[Horizon]float64) []Horizon {
	out := make([]Horizon, 0, len(m))
	for h := range m {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NearestAtOrBelow returns the largest horizon <= h tracked in both a and b.
func NearestAtOrBelow(h Horizon, a, b map[Horizon]float64) (Horizon, bool) {
	best, found := Horizon(0), false
	for candidate := range a {
		if candidate > h {
			continue
		}
		if _, ok := b[candidate]; !ok {
			continue
		}
		if !found || candidate > best {
			best, found = candidate, true
		}
	}
	return best, found
}

// ShortestCommon returns the smallest horizon tracked in both a and b.
func ShortestCommon(a, b map[Horizon]float64) (Horizon, bool) {
	best, found := Horizon(0), false
	for candidate := range a {
		if _, ok := b[candidate]; !ok {
			continue
		}
		if !found || candidate < best {
			best, found = candidate, true
		}
	}
	return best, found
}
