// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/cohortlens/internal/thresholds"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cohortlens/config.yaml",
	"/etc/cohortlens/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the defaults applied before the file and environment.
func defaultConfig() *Config {
	t := thresholds.Default()
	return &Config{
		Database: DatabaseConfig{
			Path:                   "cohortlens.duckdb",
			MaxMemory:              "1GB",
			Threads:                0,
			PreserveInsertionOrder: true,
		},
		Alerting: AlertingConfig{
			CPISpike:         t.CPISpike,
			VolumeDrop:       t.VolumeDrop,
			RetentionDrop:    t.RetentionDrop,
			ROASDrop:         t.ROASDrop,
			RetentionHorizon: int(t.RetentionHorizon),
			StrongVolumeGain: t.StrongVolumeGain,
			Offerwall: OfferwallTargetConfig{
				ROASD90:        t.Offerwall.ROASD90,
				MinChapter3CVR: t.Offerwall.MinChapter3CVR,
			},
			NonOfferwall: NonOfferwallTargetConfig{
				ROASD365:          t.NonOfferwall.ROASD365,
				ROASD180:          t.NonOfferwall.ROASD180,
				MinD7Retention:    t.NonOfferwall.MinD7Retention,
				TargetD7Retention: t.NonOfferwall.TargetD7Retention,
			},
		},
		Trend: TrendConfig{
			DailyTolerance:  0.05,
			WeeklyTolerance: 0.05,
		},
		Report: ReportConfig{
			WeeklyHorizon:         7,
			SourceLookbackWeeks:   8,
			OfferwallLookbackDays: 30,
			Workers:               4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration with layered sources:
//  1. Defaults
//  2. YAML file: configPath when non-empty, otherwise the first file found
//     by findConfigFile
//  3. Environment variables
//
// An explicit configPath that cannot be read is an error. The result is
// validated before it is returned.
func LoadWithKoanf(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// ALERT_CPI_SPIKE -> alerting.cpi_spike
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	"duckdb_path":                     "database.path",
	"duckdb_max_memory":               "database.max_memory",
	"duckdb_threads":                  "database.threads",
	"duckdb_preserve_insertion_order": "database.preserve_insertion_order",

	"alert_cpi_spike":          "alerting.cpi_spike",
	"alert_volume_drop":        "alerting.volume_drop",
	"alert_retention_drop":     "alerting.retention_drop",
	"alert_roas_drop":          "alerting.roas_drop",
	"alert_retention_horizon":  "alerting.retention_horizon",
	"alert_strong_volume_gain": "alerting.strong_volume_gain",

	"target_offerwall_roas_d90":     "alerting.offerwall.roas_d90",
	"target_offerwall_chapter3_cvr": "alerting.offerwall.min_chapter3_cvr",
	"target_roas_d365":              "alerting.non_offerwall.roas_d365",
	"target_roas_d180":              "alerting.non_offerwall.roas_d180",
	"target_min_d7_retention":       "alerting.non_offerwall.min_d7_retention",
	"target_d7_retention":           "alerting.non_offerwall.target_d7_retention",

	"trend_daily_tolerance":  "trend.daily_tolerance",
	"trend_weekly_tolerance": "trend.weekly_tolerance",

	"report_weekly_horizon": "report.weekly_horizon",
	"report_source_weeks":   "report.source_lookback_weeks",
	"report_offerwall_days": "report.offerwall_lookback_days",
	"report_workers":        "report.workers",

	"metrics_textfile": "metrics.textfile_path",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path, or ""
// to skip it.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
