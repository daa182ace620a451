// Cohortlens - User Acquisition Cohort Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortlens

package thresholds

import (
	"errors"
	"strings"
	"testing"

	"github.com/tomtom215/cohortlens/internal/cohort"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"cpi_spike", cfg.CPISpike, 0.20},
		{"volume_drop", cfg.VolumeDrop, 0.30},
		{"retention_drop", cfg.RetentionDrop, 0.10},
		{"roas_drop", cfg.ROASDrop, 0.15},
		{"offerwall.roas_d90", cfg.Offerwall.ROASD90, 1.00},
		{"offerwall.min_chapter3_cvr", cfg.Offerwall.MinChapter3CVR, 0.08},
		{"non_offerwall.roas_d365", cfg.NonOfferwall.ROASD365, 1.00},
		{"non_offerwall.roas_d180", cfg.NonOfferwall.ROASD180, 0.90},
		{"non_offerwall.min_d7_retention", cfg.NonOfferwall.MinD7Retention, 0.15},
		{"non_offerwall.target_d7_retention", cfg.NonOfferwall.TargetD7Retention, 0.20},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if cfg.RetentionHorizon != cohort.D7 {
		t.Errorf("RetentionHorizon = %v, want d7", cfg.RetentionHorizon)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestNewMergesOverrides(t *testing.T) {
	h := cohort.D3
	cfg, err := New(Overrides{
		OfferwallMinChapter3CVR: Float(0.1),
		RetentionHorizon:        &h,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.CPISpike != 0.20 {
		t.Errorf("nil override changed CPISpike to %v", cfg.CPISpike)
	}
	if cfg.Offerwall.MinChapter3CVR != 0.1 {
		t.Errorf("MinChapter3CVR = %v, want 0.1", cfg.Offerwall.MinChapter3CVR)
	}
	if cfg.RetentionHorizon != cohort.D3 {
		t.Errorf("RetentionHorizon = %v, want d3", cfg.RetentionHorizon)
	}
}

func TestNewRejectsInvalid(t *testing.T) {
	badHorizon := cohort.Horizon(5)
	tests := []struct {
		name      string
		overrides Overrides
		wantField string
	}{
		{"zero cpi spike", Overrides{CPISpike: Float(0)}, "cpi_spike"},
		{"negative volume drop", Overrides{VolumeDrop: Float(-0.3)}, "volume_drop"},
		{"retention drop above one", Overrides{RetentionDrop: Float(1.5)}, "retention_drop"},
		{"zero roas target", Overrides{OfferwallROASD90: Float(0)}, "offerwall.roas_d90"},
		{"chapter cvr above one", Overrides{OfferwallMinChapter3CVR: Float(2)}, "offerwall.min_chapter3_cvr"},
		{
			"target below minimum",
			Overrides{NonOfferwallMinD7Retention: Float(0.25), NonOfferwallTargetD7Retention: Float(0.2)},
			"non_offerwall.target_d7_retention",
		},
		{"unknown retention horizon", Overrides{RetentionHorizon: &badHorizon}, "retention_horizon"},
		{"negative strong gain", Overrides{StrongVolumeGain: Float(-1)}, "strong_volume_gain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.overrides)
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("New() error = %v, want *ConfigurationError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.wantField)
			}
			if !strings.HasPrefix(cfgErr.Error(), "invalid threshold configuration: ") {
				t.Errorf("Error() = %q", cfgErr.Error())
			}
		})
	}
}

func TestConfigIsAValue(t *testing.T) {
	a, err := New(Overrides{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b := a
	b.CPISpike = 0.9
	if a.CPISpike != 0.20 {
		t.Error("copying a Config must not share state")
	}
}
