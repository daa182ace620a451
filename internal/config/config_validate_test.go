// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty database path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"negative threads", func(c *Config) { c.Database.Threads = -1 }, "database.threads"},
		{"tolerance of one", func(c *Config) { c.Trend.WeeklyTolerance = 1 }, "trend.weekly_tolerance"},
		{"zero workers", func(c *Config) { c.Report.Workers = 0 }, "report.workers"},
		{"zero offerwall days", func(c *Config) { c.Report.OfferwallLookbackDays = 0 }, "report.offerwall_lookback_days"},
		{"untracked horizon", func(c *Config) { c.Report.WeeklyHorizon = 5 }, "weekly_horizon"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"zero cpi spike", func(c *Config) { c.Alerting.CPISpike = 0 }, "cpi_spike"},
		{"untracked retention horizon", func(c *Config) { c.Alerting.RetentionHorizon = 2 }, "retention_horizon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error mentioning %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}
