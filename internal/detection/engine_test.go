// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package detection

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/tomtom215/cohortlens/internal/cohort"
	"github.com/tomtom215/cohortlens/internal/thresholds"
)

// mockDetector implements Detector for engine tests.
type mockDetector struct {
	metric Metric
	alert  *Alert
	err    error
}

func (m *mockDetector) Metric() Metric { return m.metric }

func (m *mockDetector) Check(comparison string, pair cohort.Pair, _ thresholds.Config) (*Alert, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.alert == nil {
		return nil, nil
	}
	a := *m.alert
	a.Comparison = comparison
	a.DimensionKey = pair.Key
	return &a, nil
}

func src(name string) cohort.Key {
	return cohort.Key{Source: name}
}

func dayOverDay(baseline, current []cohort.AggregateRow) []cohort.Comparison {
	return []cohort.Comparison{{Name: "day_over_day", Baseline: baseline, Current: current}}
}

func scan(t *testing.T, e *Engine, comps []cohort.Comparison) *ScanResult {
	t.Helper()
	res, err := e.Scan(context.Background(), comps, thresholds.Default())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return res
}

func TestScenarioA_ROASRiseRaisesNothing(t *testing.T) {
	old := cohort.AggregateRow{Key: src("unity"), Spend: 1000, Installs: 100, Revenue: map[cohort.Horizon]float64{cohort.D1: 800}}
	cur := cohort.AggregateRow{Key: src("unity"), Spend: 1000, Installs: 100, Revenue: map[cohort.Horizon]float64{cohort.D1: 1200}}

	res := scan(t, NewDefaultEngine(), dayOverDay([]cohort.AggregateRow{old}, []cohort.AggregateRow{cur}))
	if len(res.Alerts) != 0 {
		t.Errorf("got %d alerts, want none: %+v", len(res.Alerts), res.Alerts)
	}
	if len(res.StrongPerformers) != 0 {
		t.Error("flat installs are not a strong performer")
	}
}

func TestScenarioB_VolumeDrop(t *testing.T) {
	old := cohort.AggregateRow{Key: src("applovin"), Spend: 5000, Installs: 1000}
	cur := cohort.AggregateRow{Key: src("applovin"), Spend: 3250, Installs: 650}

	res := scan(t, NewDefaultEngine(), dayOverDay([]cohort.AggregateRow{old}, []cohort.AggregateRow{cur}))
	if len(res.Alerts) != 1 {
		t.Fatalf("got %d alerts, want 1: %+v", len(res.Alerts), res.Alerts)
	}
	a := res.Alerts[0]
	if a.Severity != SeverityHigh || a.Metric != MetricInstalls {
		t.Errorf("alert = %s/%s, want high/installs", a.Severity, a.Metric)
	}
	if math.Abs(a.Deviation-0.35) > 1e-9 {
		t.Errorf("Deviation = %v, want 0.35", a.Deviation)
	}
	if a.ObservedValue != 650 || a.BaselineValue != 1000 || a.Threshold != 0.30 {
		t.Errorf("alert values = %v/%v/%v", a.ObservedValue, a.BaselineValue, a.Threshold)
	}
	if a.DimensionKey != src("applovin") || a.Comparison != "day_over_day" {
		t.Errorf("alert key/comparison = %+v/%s", a.DimensionKey, a.Comparison)
	}
}

func TestScenarioC_CPISpike(t *testing.T) {
	old := cohort.AggregateRow{Key: src("ironsource"), Spend: 500, Installs: 100} // CPI 5.00
	cur := cohort.AggregateRow{Key: src("ironsource"), Spend: 650, Installs: 100} // CPI 6.50

	res := scan(t, NewDefaultEngine(), dayOverDay([]cohort.AggregateRow{old}, []cohort.AggregateRow{cur}))
	if len(res.Alerts) != 1 {
		t.Fatalf("got %d alerts, want 1: %+v", len(res.Alerts), res.Alerts)
	}
	a := res.Alerts[0]
	if a.Severity != SeverityHigh || a.Metric != MetricCPI {
		t.Errorf("alert = %s/%s, want high/cpi", a.Severity, a.Metric)
	}
	if math.Abs(a.Deviation-0.30) > 1e-9 {
		t.Errorf("Deviation = %v, want 0.30", a.Deviation)
	}
	if math.Abs(a.ObservedValue-6.50) > 1e-9 {
		t.Errorf("ObservedValue = %v, want 6.50", a.ObservedValue)
	}
	if !strings.Contains(a.Message, "6.50") || !strings.Contains(a.Message, "30.0%") {
		t.Errorf("Message = %q, want observed CPI 6.50 and 30.0%%", a.Message)
	}
	if a.Recommendation == "" {
		t.Error("CPI alert should carry a recommendation")
	}
}

func TestScenarioD_ZeroInstallsBothSides(t *testing.T) {
	old := cohort.AggregateRow{Key: src("organic_test"), Spend: 100, Installs: 0}
	cur := cohort.AggregateRow{Key: src("organic_test"), Spend: 300, Installs: 0}

	res := scan(t, NewDefaultEngine(), dayOverDay([]cohort.AggregateRow{old}, []cohort.AggregateRow{cur}))
	for _, a := range res.Alerts {
		if a.Metric == MetricCPI || a.Metric == MetricInstalls {
			t.Errorf("unexpected %s alert on undefined values: %+v", a.Metric, a)
		}
	}
}

func TestNewKeysNeverAlerted(t *testing.T) {
	baseline := []cohort.AggregateRow{{Key: src("a"), Spend: 100, Installs: 10}}
	current := []cohort.AggregateRow{
		{Key: src("a"), Spend: 100, Installs: 10},
		{Key: src("brand_new"), Spend: 900, Installs: 1},
	}
	res := scan(t, NewDefaultEngine(), dayOverDay(baseline, current))
	for _, a := range res.Alerts {
		if a.DimensionKey == src("brand_new") {
			t.Errorf("new key alerted: %+v", a)
		}
	}
	if len(res.NewKeys) != 1 || res.NewKeys[0].DimensionKey != src("brand_new") {
		t.Fatalf("NewKeys = %+v", res.NewKeys)
	}
	if cpi, _ := res.NewKeys[0].CPI.Get(); cpi != 900 {
		t.Errorf("new key CPI = %v, want 900", cpi)
	}
}

func TestRetentionAndROASDrops(t *testing.T) {
	old := cohort.AggregateRow{
		Key: src("mintegral"), Spend: 1000, Installs: 100,
		Revenue:   map[cohort.Horizon]float64{cohort.D1: 400, cohort.D7: 900},
		Retention: map[cohort.Horizon]float64{cohort.D1: 0.40, cohort.D3: 0.30},
	}
	cur := cohort.AggregateRow{
		Key: src("mintegral"), Spend: 1000, Installs: 100,
		Revenue:   map[cohort.Horizon]float64{cohort.D1: 300},
		Retention: map[cohort.Horizon]float64{cohort.D1: 0.38, cohort.D3: 0.24, cohort.D7: 0.1},
	}
	res := scan(t, NewDefaultEngine(), dayOverDay([]cohort.AggregateRow{old}, []cohort.AggregateRow{cur}))
	if len(res.Alerts) != 2 {
		t.Fatalf("got %d alerts, want 2: %+v", len(res.Alerts), res.Alerts)
	}

	// Both medium: ROAS d1 dropped 25%, retention d3 (nearest to d7) dropped 20%.
	roas, ret := res.Alerts[0], res.Alerts[1]
	if roas.Metric != MetricROAS || *roas.Horizon != cohort.D1 {
		t.Errorf("first alert = %s at %v, want roas at d1", roas.Metric, roas.Horizon)
	}
	if math.Abs(roas.Deviation-0.25) > 1e-9 {
		t.Errorf("roas deviation = %v, want 0.25", roas.Deviation)
	}
	if ret.Metric != MetricRetention || *ret.Horizon != cohort.D3 {
		t.Errorf("second alert = %s at %v, want retention at d3", ret.Metric, ret.Horizon)
	}
	if ret.Severity != SeverityMedium || roas.Severity != SeverityMedium {
		t.Error("retention and ROAS alerts must be medium")
	}
	if !strings.HasPrefix(ret.Message, "D3 retention dropped 20.0%") {
		t.Errorf("retention message = %q", ret.Message)
	}
}

func TestAlertOrdering(t *testing.T) {
	alerts := []Alert{
		{Severity: SeverityMedium, Deviation: 0.9, DimensionKey: src("a"), Metric: MetricROAS},
		{Severity: SeverityHigh, Deviation: 0.3, DimensionKey: src("b"), Metric: MetricCPI},
		{Severity: SeverityHigh, Deviation: 0.5, DimensionKey: src("c"), Metric: MetricInstalls},
		{Severity: SeverityHigh, Deviation: 0.3, DimensionKey: src("a"), Metric: MetricCPI},
		{Severity: SeverityLow, Deviation: 2, DimensionKey: src("a"), Metric: MetricROAS},
		{Severity: SeverityHigh, Deviation: 0.3, DimensionKey: src("a"), Metric: MetricInstalls},
	}
	SortAlerts(alerts)

	want := []string{
		"high c installs",
		"high a cpi",
		"high a installs",
		"high b cpi",
		"medium a roas",
		"low a roas",
	}
	for i, a := range alerts {
		got := fmt.Sprintf("%s %s %s", a.Severity, a.DimensionKey.Source, a.Metric)
		if got != want[i] {
			t.Errorf("alerts[%d] = %q, want %q", i, got, want[i])
		}
	}
}

func buildFixture(n int) ([]cohort.AggregateRow, []cohort.AggregateRow) {
	var baseline, current []cohort.AggregateRow
	for i := 0; i < n; i++ {
		key := src(fmt.Sprintf("src_%02d", i))
		baseline = append(baseline, cohort.AggregateRow{
			Key: key, Spend: 1000, Installs: 200,
			Revenue:   map[cohort.Horizon]float64{cohort.D1: 300},
			Retention: map[cohort.Horizon]float64{cohort.D7: 0.2},
		})
		current = append(current, cohort.AggregateRow{
			Key:       key,
			Spend:     1000 + float64(i*37%300),
			Installs:  int64(200 - i*13%120),
			Revenue:   map[cohort.Horizon]float64{cohort.D1: 300 - float64(i*7%90)},
			Retention: map[cohort.Horizon]float64{cohort.D7: 0.2 - float64(i%5)*0.01},
		})
	}
	return baseline, current
}

func TestScanDeterministic(t *testing.T) {
	baseline, current := buildFixture(40)
	comps := dayOverDay(baseline, current)

	first := scan(t, NewDefaultEngine(), comps)
	if len(first.Alerts) == 0 {
		t.Fatal("fixture should produce alerts")
	}
	for run := 0; run < 5; run++ {
		again := scan(t, NewDefaultEngine(), comps)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs from the first run", run)
		}
	}

	parallel := scan(t, NewDefaultEngine(WithWorkers(8)), comps)
	if !reflect.DeepEqual(first, parallel) {
		t.Error("parallel scan differs from sequential scan")
	}
}

func TestScanRejectsBadKeyOnly(t *testing.T) {
	baseline := []cohort.AggregateRow{
		{Key: src("good"), Spend: 100, Installs: 100},
		{Key: src("bad"), Spend: 100, Installs: 100, Retention: map[cohort.Horizon]float64{cohort.D7: 0.2}},
	}
	current := []cohort.AggregateRow{
		{Key: src("good"), Spend: 50, Installs: 50},
		{Key: src("bad"), Spend: 100, Installs: 10, Retention: map[cohort.Horizon]float64{cohort.D7: 1.7}},
	}
	res := scan(t, NewDefaultEngine(), dayOverDay(baseline, current))

	if len(res.Rejections) != 1 {
		t.Fatalf("Rejections = %+v, want 1", res.Rejections)
	}
	r := res.Rejections[0]
	if r.DimensionKey != src("bad") || r.Field != "retention_d7" {
		t.Errorf("rejection = %+v", r)
	}
	if len(res.Alerts) != 1 || res.Alerts[0].DimensionKey != src("good") {
		t.Errorf("alerts = %+v, want the volume drop on good only", res.Alerts)
	}
}

func TestStrongPerformers(t *testing.T) {
	baseline := []cohort.AggregateRow{
		{Key: src("grower"), Spend: 1000, Installs: 100},
		{Key: src("pricey"), Spend: 1000, Installs: 100},
		{Key: src("flat"), Spend: 1000, Installs: 100},
	}
	current := []cohort.AggregateRow{
		{Key: src("grower"), Spend: 1300, Installs: 120}, // CPI +8.3%
		{Key: src("pricey"), Spend: 1800, Installs: 120}, // CPI +50%
		{Key: src("flat"), Spend: 1000, Installs: 100},
	}
	res := scan(t, NewDefaultEngine(), dayOverDay(baseline, current))
	if len(res.StrongPerformers) != 1 || res.StrongPerformers[0].DimensionKey != src("grower") {
		t.Fatalf("StrongPerformers = %+v, want grower only", res.StrongPerformers)
	}
	p := res.StrongPerformers[0]
	if v, _ := p.InstallsChange.Get(); math.Abs(v-0.2) > 1e-9 {
		t.Errorf("InstallsChange = %v, want 0.2", v)
	}
}

func TestRegisterDetectorReplacesMetric(t *testing.T) {
	e := NewEngine()
	e.RegisterDetector(&mockDetector{metric: MetricCPI})
	e.RegisterDetector(&mockDetector{metric: MetricCPI, alert: &Alert{Severity: SeverityLow, Metric: MetricCPI}})
	e.RegisterDetector(&mockDetector{metric: MetricROAS})

	if got := len(e.Detectors()); got != 2 {
		t.Fatalf("Detectors() = %d, want 2", got)
	}

	rows := []cohort.AggregateRow{{Key: src("x"), Spend: 1, Installs: 1}}
	res := scan(t, e, dayOverDay(rows, rows))
	if len(res.Alerts) != 1 || res.Alerts[0].Severity != SeverityLow {
		t.Errorf("alerts = %+v, want the replacement detector's alert", res.Alerts)
	}

	m := e.Metrics()
	if m.ScansRun != 1 || m.KeysScanned != 1 || m.AlertsGenerated != 1 {
		t.Errorf("metrics = %+v", &m)
	}
	if dm := m.DetectorMetrics[MetricCPI]; dm == nil || dm.PairsChecked != 1 || dm.AlertsGenerated != 1 {
		t.Errorf("cpi detector metrics = %+v", dm)
	}
}

func TestDetectorErrorIsolatesKey(t *testing.T) {
	e := NewEngine()
	e.RegisterDetector(&mockDetector{metric: MetricCPI, err: errors.New("boom")})

	rows := []cohort.AggregateRow{{Key: src("x"), Spend: 1, Installs: 1}}
	res := scan(t, e, dayOverDay(rows, rows))
	if len(res.Alerts) != 0 {
		t.Errorf("alerts = %+v, want none", res.Alerts)
	}
	if dm := e.Metrics().DetectorMetrics[MetricCPI]; dm.Errors != 1 {
		t.Errorf("detector errors = %d, want 1", dm.Errors)
	}
}

func TestScanHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	baseline, current := buildFixture(3)
	if _, err := NewDefaultEngine().Scan(ctx, dayOverDay(baseline, current), thresholds.Default()); !errors.Is(err, context.Canceled) {
		t.Errorf("Scan() error = %v, want context.Canceled", err)
	}
}

func TestScanEmptyInput(t *testing.T) {
	res := scan(t, NewDefaultEngine(), nil)
	if res.Alerts == nil || res.StrongPerformers == nil || res.NewKeys == nil || res.Rejections == nil {
		t.Error("empty scan should return empty, non-nil slices")
	}
}
