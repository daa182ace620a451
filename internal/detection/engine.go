// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package detection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cohortlens/internal/cohort"
	"github.com/tomtom215/cohortlens/internal/kpi"
	"github.com/tomtom215/cohortlens/internal/logging"
	"github.com/tomtom215/cohortlens/internal/metrics"
	"github.com/tomtom215/cohortlens/internal/thresholds"
)

// Engine runs registered detectors over comparisons and ranks the results.
type Engine struct {
	mu        sync.RWMutex
	detectors []Detector
	workers   int

	metricsStore *EngineMetrics
}

// EngineMetrics tracks alert engine activity across scans.
type EngineMetrics struct {
	ScansRun        int64
	KeysScanned     int64
	AlertsGenerated int64
	Rejections      int64
	DetectorMetrics map[Metric]*DetectorMetrics
	mu              sync.RWMutex
}

// DetectorMetrics tracks individual detector activity.
type DetectorMetrics struct {
	PairsChecked    int64
	AlertsGenerated int64
	Errors          int64
}

// ScanResult is the output of one scan. Every slice is deterministically ordered.
type ScanResult struct {
	Alerts           []Alert     `json:"alerts"`
	StrongPerformers []Performer `json:"strong_performers"`
	NewKeys          []NewKey    `json:"new_keys"`
	Rejections       []Rejection `json:"rejections"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers evaluates up to n keys concurrently. Values below 2 scan
// sequentially. Output order does not depend on n.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// NewEngine creates an engine with no detectors.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		workers: 1,
		metricsStore: &EngineMetrics{
			DetectorMetrics: make(map[Metric]*DetectorMetrics),
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewDefaultEngine creates an engine with the CPI, install, retention and ROAS
// detectors registered.
func NewDefaultEngine(opts ...Option) *Engine {
	e := NewEngine(opts...)
	e.RegisterDetector(NewCPISpikeDetector())
	e.RegisterDetector(NewVolumeDropDetector())
	e.RegisterDetector(NewRetentionDropDetector())
	e.RegisterDetector(NewROASDropDetector())
	return e
}

// RegisterDetector adds a detector, replacing any detector for the same metric.
func (e *Engine) RegisterDetector(detector Detector) {
	e.mu.Lock()
	defer e.mu.Unlock()

	metric := detector.Metric()
	for i, d := range e.detectors {
		if d.Metric() == metric {
			e.detectors[i] = detector
			return
		}
	}
	e.detectors = append(e.detectors, detector)

	e.metricsStore.mu.Lock()
	e.metricsStore.DetectorMetrics[metric] = &DetectorMetrics{}
	e.metricsStore.mu.Unlock()

	logging.Debug().Str("detector", string(metric)).Msg("registered detector")
}

// Detectors returns the registered detectors in registration order.
func (e *Engine) Detectors() []Detector {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Detector, len(e.detectors))
	copy(out, e.detectors)
	return out
}

type scanTask struct {
	comparison string
	pair       cohort.Pair
}

type taskResult struct {
	alerts    []Alert
	performer *Performer
	newKey    *NewKey
	rejection *Rejection
}

// Scan evaluates every key of every comparison. Keys absent from the baseline
// are listed as new and never alerted. A key whose rows fail validation is
// listed as a rejection and skipped. The only error is context cancellation.
func (e *Engine) Scan(ctx context.Context, comparisons []cohort.Comparison, cfg thresholds.Config) (*ScanResult, error) {
	detectors := e.Detectors()
	result := &ScanResult{
		Alerts:           []Alert{},
		StrongPerformers: []Performer{},
		NewKeys:          []NewKey{},
		Rejections:       []Rejection{},
	}

	var tasks []scanTask
	for _, c := range comparisons {
		pairs, dups := c.Pairs()
		for _, dq := range dups {
			result.Rejections = append(result.Rejections, NewRejection(c.Name, dq))
		}
		for _, p := range pairs {
			tasks = append(tasks, scanTask{comparison: c.Name, pair: p})
		}
		metrics.RecordKeysScanned(c.Name, len(pairs))
	}

	results := make([]taskResult, len(tasks))
	if e.workers < 2 {
		for i := range tasks {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("scan cancelled: %w", err)
			}
			results[i] = e.evaluate(detectors, tasks[i], cfg)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.workers)
		for i := range tasks {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = e.evaluate(detectors, tasks[i], cfg)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("scan cancelled: %w", err)
		}
	}

	for _, r := range results {
		result.Alerts = append(result.Alerts, r.alerts...)
		if r.performer != nil {
			result.StrongPerformers = append(result.StrongPerformers, *r.performer)
		}
		if r.newKey != nil {
			result.NewKeys = append(result.NewKeys, *r.newKey)
		}
		if r.rejection != nil {
			result.Rejections = append(result.Rejections, *r.rejection)
		}
	}

	SortAlerts(result.Alerts)
	sort.SliceStable(result.StrongPerformers, func(i, j int) bool {
		a, b := result.StrongPerformers[i], result.StrongPerformers[j]
		if a.Comparison != b.Comparison {
			return a.Comparison < b.Comparison
		}
		return a.DimensionKey.String() < b.DimensionKey.String()
	})
	sort.SliceStable(result.Rejections, func(i, j int) bool {
		a, b := result.Rejections[i], result.Rejections[j]
		if a.Comparison != b.Comparison {
			return a.Comparison < b.Comparison
		}
		return a.DimensionKey.String() < b.DimensionKey.String()
	})

	e.recordScan(len(tasks), result)
	return result, nil
}

// evaluate runs every detector for one key. It touches no shared state except
// the mutex-guarded counters.
func (e *Engine) evaluate(detectors []Detector, task scanTask, cfg thresholds.Config) taskResult {
	pair := task.pair
	var dq *cohort.DataQualityError

	if err := pair.Current.Validate(); err != nil && errors.As(err, &dq) {
		r := NewRejection(task.comparison, dq)
		return taskResult{rejection: &r}
	}
	if pair.IsNew() {
		return taskResult{newKey: &NewKey{
			Comparison:   task.comparison,
			DimensionKey: pair.Key,
			Spend:        pair.Current.Spend,
			Installs:     pair.Current.Installs,
			CPI:          kpi.CPI(pair.Current),
		}}
	}
	if err := pair.Baseline.Validate(); err != nil && errors.As(err, &dq) {
		r := NewRejection(task.comparison, dq)
		return taskResult{rejection: &r}
	}

	var out taskResult
	for _, d := range detectors {
		alert, err := d.Check(task.comparison, pair, cfg)
		e.recordDetector(d.Metric(), alert != nil, err)
		if err != nil {
			if errors.As(err, &dq) {
				r := NewRejection(task.comparison, dq)
				return taskResult{rejection: &r}
			}
			logging.Warn().Err(err).Str("detector", string(d.Metric())).Str("key", pair.Key.Label()).Msg("detector failed")
			continue
		}
		if alert != nil {
			out.alerts = append(out.alerts, *alert)
		}
	}
	out.performer = strongPerformer(task.comparison, pair, cfg)
	return out
}

// strongPerformer reports a key whose installs grew by more than
// StrongVolumeGain while CPI rose by no more than CPISpike.
func strongPerformer(comparison string, pair cohort.Pair, cfg thresholds.Config) *Performer {
	installsChange := kpi.RelativeChange(kpi.Of(float64(pair.Baseline.Installs)), kpi.Of(float64(pair.Current.Installs)))
	growth, ok := installsChange.Get()
	if !ok || growth <= cfg.StrongVolumeGain {
		return nil
	}
	cpi := kpi.CPI(pair.Current)
	cpiChange := kpi.RelativeChange(kpi.CPI(pair.Baseline), cpi)
	change, ok := cpiChange.Get()
	if !ok || change > cfg.CPISpike {
		return nil
	}
	return &Performer{
		Comparison:     comparison,
		DimensionKey:   pair.Key,
		Installs:       pair.Current.Installs,
		InstallsChange: installsChange,
		CPI:            cpi,
		CPIChange:      cpiChange,
	}
}

// SortAlerts orders alerts by severity rank, then breach magnitude, then key,
// then metric and comparison.
func SortAlerts(alerts []Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if ra, rb := a.Severity.Rank(), b.Severity.Rank(); ra != rb {
			return ra > rb
		}
		if a.Deviation != b.Deviation {
			return a.Deviation > b.Deviation
		}
		if ka, kb := a.DimensionKey.String(), b.DimensionKey.String(); ka != kb {
			return ka < kb
		}
		if a.Metric != b.Metric {
			return a.Metric < b.Metric
		}
		return a.Comparison < b.Comparison
	})
}

func (e *Engine) recordDetector(metric Metric, alerted bool, err error) {
	e.metricsStore.mu.Lock()
	defer e.metricsStore.mu.Unlock()
	dm, ok := e.metricsStore.DetectorMetrics[metric]
	if !ok {
		return
	}
	dm.PairsChecked++
	if alerted {
		dm.AlertsGenerated++
	}
	if err != nil {
		dm.Errors++
	}
}

func (e *Engine) recordScan(keys int, result *ScanResult) {
	e.metricsStore.mu.Lock()
	e.metricsStore.ScansRun++
	e.metricsStore.KeysScanned += int64(keys)
	e.metricsStore.AlertsGenerated += int64(len(result.Alerts))
	e.metricsStore.Rejections += int64(len(result.Rejections))
	e.metricsStore.mu.Unlock()

	for _, a := range result.Alerts {
		metrics.RecordAlert(string(a.Severity), string(a.Metric))
	}
	for _, r := range result.Rejections {
		metrics.RecordRejection("scan")
		logging.Warn().
			Str("comparison", r.Comparison).
			Str("key", r.DimensionKey.Label()).
			Str("field", r.Field).
			Str("reason", r.Reason).
			Msg("row rejected")
	}
	metrics.RecordStrongPerformers(len(result.StrongPerformers))
}

// Metrics returns a snapshot of the engine counters.
func (e *Engine) Metrics() EngineMetrics {
	e.metricsStore.mu.RLock()
	defer e.metricsStore.mu.RUnlock()

	detectorMetrics := make(map[Metric]*DetectorMetrics, len(e.metricsStore.DetectorMetrics))
	for k, v := range e.metricsStore.DetectorMetrics {
		dm := *v
		detectorMetrics[k] = &dm
	}

	return EngineMetrics{
		ScansRun:        e.metricsStore.ScansRun,
		KeysScanned:     e.metricsStore.KeysScanned,
		AlertsGenerated: e.metricsStore.AlertsGenerated,
		Rejections:      e.metricsStore.Rejections,
		DetectorMetrics: detectorMetrics,
	}
}
