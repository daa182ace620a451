// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package report

import (
	"context"
	"testing"

	"github.com/tomtom215/cohortlens/internal/cohort"
	"github.com/tomtom215/cohortlens/internal/detection"
	"github.com/tomtom215/cohortlens/internal/thresholds"
	"github.com/tomtom215/cohortlens/internal/trend"
)

func dailyFixture() DailyInput {
	return DailyInput{
		Date: day("2024-03-09"),
		Previous: []cohort.AggregateRow{
			row("unity", "", 1000, 100),
			row("applovin", "", 500, 100),
		},
		Current: []cohort.AggregateRow{
			row("unity", "", 1000, 100),
			row("applovin", "", 650, 100),
			row("ironsource", "", 200, 20),
		},
		Tolerance: trend.DefaultTolerance,
	}
}

func TestDailyHealthOverview(t *testing.T) {
	t.Parallel()

	report, err := DailyHealth(context.Background(), dailyFixture(), thresholds.Default(), detection.NewDefaultEngine())
	if err != nil {
		t.Fatalf("DailyHealth() error = %v", err)
	}

	if report.Date != "2024-03-09" {
		t.Errorf("Date = %q", report.Date)
	}
	ov := report.Overview
	if ov.TotalSpend != 1850 || ov.PrevSpend != 1500 {
		t.Errorf("spend = %v / %v, want 1850 / 1500", ov.TotalSpend, ov.PrevSpend)
	}
	if ov.TotalInstalls != 220 || ov.PrevInstalls != 200 {
		t.Errorf("installs = %d / %d, want 220 / 200", ov.TotalInstalls, ov.PrevInstalls)
	}
	assertValue(t, "SpendChangePct", ov.SpendChangePct, 350.0/1500)
	assertValue(t, "InstallsChangePct", ov.InstallsChangePct, 0.10)
	assertValue(t, "BlendedCPI", ov.BlendedCPI, 1850.0/220)
	assertValue(t, "PrevBlendedCPI", ov.PrevBlendedCPI, 7.5)
	assertValue(t, "BlendedCPIChangePct", ov.BlendedCPIChangePct, (1850.0/220-7.5)/7.5)
}

func TestDailyHealthAlertsAndSources(t *testing.T) {
	t.Parallel()

	report, err := DailyHealth(context.Background(), dailyFixture(), thresholds.Default(), detection.NewDefaultEngine())
	if err != nil {
		t.Fatalf("DailyHealth() error = %v", err)
	}

	if len(report.CriticalAlerts) != 1 {
		t.Fatalf("CriticalAlerts = %+v, want one", report.CriticalAlerts)
	}
	alert := report.CriticalAlerts[0]
	if alert.Metric != detection.MetricCPI || alert.DimensionKey.Source != "applovin" {
		t.Errorf("alert = %s on %s, want cpi on applovin", alert.Metric, alert.DimensionKey.Label())
	}
	if alert.Comparison != ComparisonDayOverDay {
		t.Errorf("Comparison = %q", alert.Comparison)
	}

	if len(report.NewSources) != 1 || report.NewSources[0].DimensionKey.Source != "ironsource" {
		t.Errorf("NewSources = %+v, want ironsource", report.NewSources)
	}
	if len(report.StrongPerformers) != 0 {
		t.Errorf("StrongPerformers = %+v, want none", report.StrongPerformers)
	}

	wantOrder := []string{"applovin", "ironsource", "unity"}
	if len(report.SourceDetails) != len(wantOrder) {
		t.Fatalf("SourceDetails has %d entries, want %d", len(report.SourceDetails), len(wantOrder))
	}
	for i, src := range wantOrder {
		if got := report.SourceDetails[i].DimensionKey.Source; got != src {
			t.Errorf("SourceDetails[%d] = %s, want %s", i, got, src)
		}
	}

	applovin := report.SourceDetails[0]
	assertValue(t, "applovin CPIChange", applovin.CPIChange, 0.30)
	if applovin.CPITrend != trend.Declining {
		t.Errorf("applovin CPITrend = %s, want declining", applovin.CPITrend)
	}

	newcomer := report.SourceDetails[1]
	if !newcomer.New {
		t.Error("ironsource not marked new")
	}
	assertUndefined(t, "ironsource PrevCPI", newcomer.PrevCPI)
	assertUndefined(t, "ironsource CPIChange", newcomer.CPIChange)
	if newcomer.CPITrend != trend.Undefined {
		t.Errorf("ironsource CPITrend = %s, want undefined", newcomer.CPITrend)
	}

	if report.SourceDetails[2].CPITrend != trend.Stable {
		t.Errorf("unity CPITrend = %s, want stable", report.SourceDetails[2].CPITrend)
	}
}

func TestDailyHealthExcludesRejectedRows(t *testing.T) {
	t.Parallel()

	in := dailyFixture()
	bad := row("vungle", "", 300, 30)
	bad.Retention = map[cohort.Horizon]float64{cohort.D1: 1.5}
	in.Current = append(in.Current, bad)
	in.Previous = append(in.Previous, row("vungle", "", 300, 30))

	report, err := DailyHealth(context.Background(), in, thresholds.Default(), detection.NewDefaultEngine())
	if err != nil {
		t.Fatalf("DailyHealth() error = %v", err)
	}

	if report.Overview.TotalSpend != 1850 {
		t.Errorf("TotalSpend = %v, want the rejected row excluded", report.Overview.TotalSpend)
	}
	if report.Overview.PrevSpend != 1800 {
		t.Errorf("PrevSpend = %v, want 1800", report.Overview.PrevSpend)
	}
	if len(report.Rejections) != 1 || report.Rejections[0].Field != "retention_d1" {
		t.Fatalf("Rejections = %+v, want retention_d1 on vungle", report.Rejections)
	}
	for _, d := range report.SourceDetails {
		if d.DimensionKey.Source == "vungle" {
			t.Error("rejected key listed in source details")
		}
	}
}

func TestDailyHealthExcludesDuplicateKeys(t *testing.T) {
	t.Parallel()

	in := dailyFixture()
	in.Current = append(in.Current, row("unity", "", 1000, 100))

	report, err := DailyHealth(context.Background(), in, thresholds.Default(), detection.NewDefaultEngine())
	if err != nil {
		t.Fatalf("DailyHealth() error = %v", err)
	}

	ov := report.Overview
	if ov.TotalSpend != 850 || ov.TotalInstalls != 120 {
		t.Errorf("totals = %v / %d, want 850 / 120 without the duplicated key", ov.TotalSpend, ov.TotalInstalls)
	}
	if ov.PrevSpend != 1500 {
		t.Errorf("PrevSpend = %v, want 1500", ov.PrevSpend)
	}
	assertValue(t, "BlendedCPI", ov.BlendedCPI, 850.0/120)
	if len(report.Rejections) != 1 {
		t.Fatalf("Rejections = %+v, want one", report.Rejections)
	}
	if rej := report.Rejections[0]; rej.Field != "key" || rej.DimensionKey.Source != "unity" {
		t.Errorf("rejection = %+v, want duplicate key on unity", rej)
	}
	for _, d := range report.SourceDetails {
		if d.DimensionKey.Source == "unity" {
			t.Error("duplicated key listed in source details")
		}
	}
}

func TestDailyHealthNoInstalls(t *testing.T) {
	t.Parallel()

	in := DailyInput{
		Date:     day("2024-03-09"),
		Previous: []cohort.AggregateRow{row("unity", "", 0, 0)},
		Current:  []cohort.AggregateRow{row("unity", "", 0, 0)},
	}
	report, err := DailyHealth(context.Background(), in, thresholds.Default(), detection.NewDefaultEngine())
	if err != nil {
		t.Fatalf("DailyHealth() error = %v", err)
	}

	assertUndefined(t, "BlendedCPI", report.Overview.BlendedCPI)
	assertUndefined(t, "SpendChangePct", report.Overview.SpendChangePct)
	assertUndefined(t, "InstallsChangePct", report.Overview.InstallsChangePct)
	if len(report.CriticalAlerts) != 0 {
		t.Errorf("CriticalAlerts = %+v, want none", report.CriticalAlerts)
	}
}

func TestDailyHealthCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := DailyHealth(ctx, dailyFixture(), thresholds.Default(), detection.NewDefaultEngine()); err == nil {
		t.Fatal("DailyHealth() on a cancelled context succeeded")
	}
}
