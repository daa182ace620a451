// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package report

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/cohortlens/internal/cohort"
	"github.com/tomtom215/cohortlens/internal/kpi"
)

const epsilon = 1e-9

func day(s string) time.Time {
	t, err := time.Parse(cohort.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func row(source string, campaign cohort.CampaignType, spend float64, installs int64) cohort.AggregateRow {
	return cohort.AggregateRow{
		Key:      cohort.Key{Source: source, CampaignType: campaign},
		Spend:    spend,
		Installs: installs,
	}
}

func withD7(r cohort.AggregateRow, revenue, retention float64) cohort.AggregateRow {
	r.Revenue = map[cohort.Horizon]float64{cohort.D7: revenue}
	r.Retention = map[cohort.Horizon]float64{cohort.D7: retention}
	return r
}

func assertValue(t *testing.T, name string, got kpi.Value, want float64) {
	t.Helper()
	v, ok := got.Get()
	if !ok {
		t.Errorf("%s is undefined, want %v", name, want)
		return
	}
	if math.Abs(v-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, v, want)
	}
}

func assertUndefined(t *testing.T, name string, got kpi.Value) {
	t.Helper()
	if got.Defined() {
		t.Errorf("%s = %v, want undefined", name, got)
	}
}

type fetchCall struct {
	window  cohort.DateRange
	groupBy cohort.Dimensions
}

// fakeFetcher serves rows by window and records every call.
type fakeFetcher struct {
	mu       sync.Mutex
	byWindow map[string][]cohort.AggregateRow
	chapters []cohort.AggregateRow
	err      error
	calls    []fetchCall
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{byWindow: make(map[string][]cohort.AggregateRow)}
}

func (f *fakeFetcher) set(window cohort.DateRange, rows ...cohort.AggregateRow) {
	f.byWindow[window.String()] = rows
}

func (f *fakeFetcher) FetchAggregates(_ context.Context, window cohort.DateRange, groupBy cohort.Dimensions) ([]cohort.AggregateRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fetchCall{window: window, groupBy: groupBy})
	if f.err != nil {
		return nil, f.err
	}
	return f.byWindow[window.String()], nil
}

func (f *fakeFetcher) FetchChapterFunnel(_ context.Context, window cohort.DateRange) ([]cohort.AggregateRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fetchCall{window: window})
	if f.err != nil {
		return nil, f.err
	}
	return f.chapters, nil
}
