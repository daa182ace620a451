// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/cohortlens/internal/cohort"
	"github.com/tomtom215/cohortlens/internal/thresholds"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Alerting AlertingConfig `koanf:"alerting"`
	Trend    TrendConfig    `koanf:"trend"`
	Report   ReportConfig   `koanf:"report"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path                   string `koanf:"path" validate:"required"`
	MaxMemory              string `koanf:"max_memory" validate:"required"`
	Threads                int    `koanf:"threads" validate:"gte=0"` // 0 = use NumCPU
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`
}

// AlertingConfig holds alert thresholds and KPI targets. Values are fractional.
type AlertingConfig struct {
	CPISpike         float64 `koanf:"cpi_spike"`
	VolumeDrop       float64 `koanf:"volume_drop"`
	RetentionDrop    float64 `koanf:"retention_drop"`
	ROASDrop         float64 `koanf:"roas_drop"`
	RetentionHorizon int     `koanf:"retention_horizon"`
	StrongVolumeGain float64 `koanf:"strong_volume_gain"`

	Offerwall    OfferwallTargetConfig    `koanf:"offerwall"`
	NonOfferwall NonOfferwallTargetConfig `koanf:"non_offerwall"`
}

// OfferwallTargetConfig holds offerwall campaign targets.
type OfferwallTargetConfig struct {
	ROASD90        float64 `koanf:"roas_d90"`
	MinChapter3CVR float64 `koanf:"min_chapter3_cvr"`
}

// NonOfferwallTargetConfig holds targets for every other campaign class.
type NonOfferwallTargetConfig struct {
	ROASD365          float64 `koanf:"roas_d365"`
	ROASD180          float64 `koanf:"roas_d180"`
	MinD7Retention    float64 `koanf:"min_d7_retention"`
	TargetD7Retention float64 `koanf:"target_d7_retention"`
}

// TrendConfig holds the stable-band tolerance per report cadence.
type TrendConfig struct {
	DailyTolerance  float64 `koanf:"daily_tolerance" validate:"gte=0,lt=1"`
	WeeklyTolerance float64 `koanf:"weekly_tolerance" validate:"gte=0,lt=1"`
}

// ReportConfig holds report generation settings.
type ReportConfig struct {
	// WeeklyHorizon is the cohort day the weekly report compares.
	WeeklyHorizon int `koanf:"weekly_horizon"`

	// SourceLookbackWeeks is the history length of the source deep dive.
	SourceLookbackWeeks int `koanf:"source_lookback_weeks" validate:"gte=1,lte=104"`

	// OfferwallLookbackDays is the window of the offerwall chapter report.
	OfferwallLookbackDays int `koanf:"offerwall_lookback_days" validate:"gte=1,lte=365"`

	// Workers bounds concurrent key evaluation in the alert engine. 1 scans
	// sequentially.
	Workers int `koanf:"workers" validate:"gte=1,lte=64"`
}

// MetricsConfig holds Prometheus export settings.
type MetricsConfig struct {
	// TextfilePath, when set, receives the metrics registry in text format
	// after every run (node_exporter textfile collector).
	TextfilePath string `koanf:"textfile_path"`
}

// LoggingConfig holds logging settings for zerolog.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Thresholds builds the immutable threshold set from the alerting section.
// It returns a *thresholds.ConfigurationError for out-of-range values.
func (c *Config) Thresholds() (thresholds.Config, error) {
	a := c.Alerting
	h := cohort.Horizon(a.RetentionHorizon)
	return thresholds.New(thresholds.Overrides{
		CPISpike:         &a.CPISpike,
		VolumeDrop:       &a.VolumeDrop,
		RetentionDrop:    &a.RetentionDrop,
		ROASDrop:         &a.ROASDrop,
		RetentionHorizon: &h,
		StrongVolumeGain: &a.StrongVolumeGain,

		OfferwallROASD90:        &a.Offerwall.ROASD90,
		OfferwallMinChapter3CVR: &a.Offerwall.MinChapter3CVR,

		NonOfferwallROASD365:          &a.NonOfferwall.ROASD365,
		NonOfferwallROASD180:          &a.NonOfferwall.ROASD180,
		NonOfferwallMinD7Retention:    &a.NonOfferwall.MinD7Retention,
		NonOfferwallTargetD7Retention: &a.NonOfferwall.TargetD7Retention,
	})
}

// WeeklyHorizon returns the report horizon as a cohort day.
func (c *Config) WeeklyHorizon() cohort.Horizon {
	return cohort.Horizon(c.Report.WeeklyHorizon)
}

// YAML renders the effective configuration in the config file format.
func (c *Config) YAML() ([]byte, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(c, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	out, err := k.Marshal(yaml.Parser())
	if err != nil {
		return nil, fmt.Errorf("failed to render configuration: %w", err)
	}
	return out, nil
}
